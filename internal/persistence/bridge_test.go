package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingSlot struct {
	err error
}

func (f failingSlot) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingSlot) Set(context.Context, string, []byte) error   { return f.err }
func (f failingSlot) Delete(context.Context, string) error        { return f.err }

func TestSlotKey(t *testing.T) {
	assert.Equal(t, "cart:kitchen", SlotKey("kitchen"))
	assert.Equal(t, "cart:default", SlotKey(""))
}

func TestBridge_LoadEmptySlot(t *testing.T) {
	b := NewBridge(NewMemorySlot(), "default", nil)
	assert.True(t, b.Load(context.Background()).IsEmpty())
}

func TestBridge_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewBridge(NewMemorySlot(), "default", nil)
	lines := []domain.CartLine{lampLine(2)}

	require.NoError(t, b.Save(ctx, lines))
	assertLinesEqual(t, lines, b.Load(ctx).Lines)
}

func TestBridge_CorruptSlotLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	require.NoError(t, slot.Set(ctx, SlotKey("default"), []byte("{not json")))

	core, logs := observer.New(zap.WarnLevel)
	b := NewBridge(slot, "default", zap.New(core))

	assert.True(t, b.Load(ctx).IsEmpty())
	assert.Equal(t, 1, logs.FilterMessage("saved cart is corrupt, starting empty").Len())
}

func TestBridge_UnreadableSlotLoadsEmpty(t *testing.T) {
	b := NewBridge(failingSlot{err: errors.New("connection refused")}, "default", nil)
	assert.True(t, b.Load(context.Background()).IsEmpty())
}

func TestBridge_FollowsCartEvents(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	b := NewBridge(slot, "default", nil)
	store := cart.NewStore(b)

	require.NoError(t, store.AddOrIncrease(ctx, "1", "Lamp", decimal.NewFromInt(20), 3, 3))
	assertLinesEqual(t, store.Lines(), b.Load(ctx).Lines)

	require.NoError(t, store.Checkout(ctx))
	data, err := slot.Get(ctx, b.Key())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"kind":"checkout","lines":[{"title":"Lamp","quantity":3,"totalPrice":"60.00","checkedOut":true,"id":"1"}]}`,
		string(data))

	store.Clear(ctx)
	_, err = slot.Get(ctx, b.Key())
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestBridge_WriteFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	b := NewBridge(failingSlot{err: errors.New("disk full")}, "default", zap.New(core))
	store := cart.NewStore(b)

	err := store.AddOrIncrease(context.Background(), "1", "Lamp", decimal.NewFromInt(20), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, logs.FilterMessage("persist cart failed").Len())
}
