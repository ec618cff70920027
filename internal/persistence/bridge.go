package persistence

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

// Bridge keeps a profile's cart in a Slot. It is registered as a cart
// observer; write failures are logged and never reach the cart.
type Bridge struct {
	slot   Slot
	key    string
	logger *zap.Logger
}

func NewBridge(slot Slot, profile string, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		slot:   slot,
		key:    SlotKey(profile),
		logger: logger.With(zap.String("slot", SlotKey(profile))),
	}
}

func (b *Bridge) Key() string {
	return b.key
}

func (b *Bridge) Save(ctx context.Context, lines []domain.CartLine) error {
	data, err := EncodeFull(lines)
	if err != nil {
		return err
	}
	return b.slot.Set(ctx, b.key, data)
}

func (b *Bridge) SaveCheckout(ctx context.Context, lines []domain.CartLine) error {
	data, err := EncodeCheckout(lines)
	if err != nil {
		return err
	}
	return b.slot.Set(ctx, b.key, data)
}

func (b *Bridge) Clear(ctx context.Context) error {
	return b.slot.Delete(ctx, b.key)
}

// Load returns the saved cart. A missing or unreadable slot yields an
// empty cart.
func (b *Bridge) Load(ctx context.Context) domain.Cart {
	data, err := b.slot.Get(ctx, b.key)
	if errors.Is(err, ErrSlotEmpty) {
		return domain.Cart{}
	}
	if err != nil {
		b.logger.Warn("cart slot unreadable, starting empty", zap.Error(err))
		return domain.Cart{}
	}

	c, err := Decode(data)
	if err != nil {
		b.logger.Warn("saved cart is corrupt, starting empty", zap.Error(err))
		return domain.Cart{}
	}
	return c
}

func (b *Bridge) CartChanged(ctx context.Context, ev cart.Event) {
	var err error
	switch ev.Kind {
	case cart.EventCleared:
		err = b.Clear(ctx)
	case cart.EventCheckout:
		err = b.SaveCheckout(ctx, ev.Lines)
	default:
		err = b.Save(ctx, ev.Lines)
	}
	if err != nil {
		b.logger.Error("persist cart failed", zap.Stringer("event", ev.Kind), zap.Error(err))
	}
}
