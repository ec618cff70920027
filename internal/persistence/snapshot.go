package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrCorruptSnapshot = errors.New("corrupt cart snapshot")

type SnapshotKind string

const (
	// SnapshotFull carries everything needed to rebuild the cart.
	SnapshotFull SnapshotKind = "full"
	// SnapshotCheckout is the display projection written after checkout.
	// It drops the unit price.
	SnapshotCheckout SnapshotKind = "checkout"
)

type envelope struct {
	Kind  SnapshotKind    `json:"kind"`
	Lines json.RawMessage `json:"lines"`
}

type FullLine struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	CheckedOut bool            `json:"checkedOut"`
}

type CheckoutLine struct {
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	TotalPrice string `json:"totalPrice"`
	CheckedOut bool   `json:"checkedOut"`
	ID         string `json:"id"`
}

// storedLine accepts both line shapes.
type storedLine struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Price      *decimal.Decimal `json:"price"`
	Quantity   int              `json:"quantity"`
	TotalPrice *decimal.Decimal `json:"totalPrice"`
	CheckedOut bool             `json:"checkedOut"`
}

func EncodeFull(lines []domain.CartLine) ([]byte, error) {
	out := make([]FullLine, len(lines))
	for i, l := range lines {
		out[i] = FullLine{
			ID:         l.ProductID,
			Title:      l.Title,
			Price:      l.Price,
			Quantity:   l.Quantity,
			CheckedOut: l.CheckedOut,
		}
	}
	return encode(SnapshotFull, out)
}

func EncodeCheckout(lines []domain.CartLine) ([]byte, error) {
	return encode(SnapshotCheckout, CheckoutLines(lines))
}

// CheckoutLines projects cart lines onto the reduced checkout shape.
func CheckoutLines(lines []domain.CartLine) []CheckoutLine {
	out := make([]CheckoutLine, len(lines))
	for i, l := range lines {
		out[i] = CheckoutLine{
			Title:      l.Title,
			Quantity:   l.Quantity,
			TotalPrice: domain.FormatMoney(l.LineTotal()),
			CheckedOut: l.CheckedOut,
			ID:         l.ProductID,
		}
	}
	return out
}

func encode(kind SnapshotKind, lines any) ([]byte, error) {
	raw, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("marshal cart lines failed: %w", err)
	}
	data, err := json.Marshal(envelope{Kind: kind, Lines: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal cart snapshot failed: %w", err)
	}
	return data, nil
}

// Decode reads either snapshot kind, or a bare JSON array of lines. Lines
// from a checkout snapshot get a unit price of totalPrice/quantity.
func Decode(data []byte) (domain.Cart, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return domain.Cart{}, ErrCorruptSnapshot
	}

	var (
		kind SnapshotKind
		raw  json.RawMessage
	)
	if trimmed[0] == '[' {
		raw = trimmed
	} else {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return domain.Cart{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
		if env.Kind != SnapshotFull && env.Kind != SnapshotCheckout {
			return domain.Cart{}, fmt.Errorf("%w: unknown kind %q", ErrCorruptSnapshot, env.Kind)
		}
		kind, raw = env.Kind, env.Lines
	}

	var stored []storedLine
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.Cart{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	c := domain.Cart{Lines: make([]domain.CartLine, 0, len(stored))}
	for i, s := range stored {
		if s.ID == "" || s.Quantity < 1 {
			return domain.Cart{}, fmt.Errorf("%w: line %d is invalid", ErrCorruptSnapshot, i)
		}
		line := domain.CartLine{
			ProductID:  s.ID,
			Title:      s.Title,
			Quantity:   s.Quantity,
			CheckedOut: s.CheckedOut,
		}
		switch {
		case s.Price != nil && kind != SnapshotCheckout:
			line.Price = *s.Price
		case s.TotalPrice != nil && kind != SnapshotFull:
			line.Price = s.TotalPrice.Div(decimal.NewFromInt(int64(s.Quantity)))
		default:
			return domain.Cart{}, fmt.Errorf("%w: line %d has no price", ErrCorruptSnapshot, i)
		}
		c.Lines = append(c.Lines, line)
	}
	return c, nil
}
