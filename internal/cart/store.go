package cart

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Store owns the cart lines. It is not safe for concurrent use; callers
// serialize access the way a single UI event loop would.
type Store struct {
	lines     []domain.CartLine
	observers []Observer
}

func NewStore(observers ...Observer) *Store {
	return &Store{observers: observers}
}

func (s *Store) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// Restore replaces the lines without notifying observers. Lines with a
// non-positive quantity or a duplicate product id are dropped.
func (s *Store) Restore(c domain.Cart) {
	s.lines = s.lines[:0]
	seen := make(map[string]struct{}, len(c.Lines))
	for _, l := range c.Lines {
		if l.Quantity < 1 {
			continue
		}
		if _, dup := seen[l.ProductID]; dup {
			continue
		}
		seen[l.ProductID] = struct{}{}
		s.lines = append(s.lines, l)
	}
}

func (s *Store) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) Cart() domain.Cart {
	return domain.Cart{Lines: s.Lines()}
}

func (s *Store) Line(productID string) (domain.CartLine, bool) {
	if i := s.indexOf(productID); i >= 0 {
		return s.lines[i], true
	}
	return domain.CartLine{}, false
}

func (s *Store) Len() int {
	return len(s.lines)
}

// Quantity returns how many units of the product are in the cart.
func (s *Store) Quantity(productID string) int {
	if i := s.indexOf(productID); i >= 0 {
		return s.lines[i].Quantity
	}
	return 0
}

// AddOrIncrease adds quantity units of the product, creating the line when
// needed. The resulting quantity may not exceed stock.
func (s *Store) AddOrIncrease(ctx context.Context, productID, title string, price decimal.Decimal, quantity, stock int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	if i := s.indexOf(productID); i >= 0 {
		line := &s.lines[i]
		if line.CheckedOut {
			return fmt.Errorf("product %s: %w", productID, ErrCheckedOut)
		}
		if line.Quantity+quantity > stock {
			return fmt.Errorf("product %s: %w", productID, ErrOutOfStock)
		}
		line.Quantity += quantity
		s.notify(ctx, EventIncreased, productID)
		return nil
	}

	if quantity > stock {
		return fmt.Errorf("product %s: %w", productID, ErrOutOfStock)
	}
	s.lines = append(s.lines, domain.CartLine{
		ProductID: productID,
		Title:     title,
		Price:     price,
		Quantity:  quantity,
	})
	s.notify(ctx, EventAdded, productID)
	return nil
}

// Increment adds one unit while the line is below stock.
func (s *Store) Increment(ctx context.Context, productID string, stock int) error {
	i := s.indexOf(productID)
	if i < 0 {
		return fmt.Errorf("product %s: %w", productID, ErrLineNotFound)
	}
	line := &s.lines[i]
	if line.CheckedOut {
		return fmt.Errorf("product %s: %w", productID, ErrCheckedOut)
	}
	if line.Quantity >= stock {
		return fmt.Errorf("product %s: %w", productID, ErrOutOfStock)
	}
	line.Quantity++
	s.notify(ctx, EventIncreased, productID)
	return nil
}

// DecreaseOrRemove takes one unit away and drops the line instead of
// letting it reach zero.
func (s *Store) DecreaseOrRemove(ctx context.Context, productID string) error {
	i := s.indexOf(productID)
	if i < 0 {
		return fmt.Errorf("product %s: %w", productID, ErrLineNotFound)
	}
	if s.lines[i].CheckedOut {
		return fmt.Errorf("product %s: %w", productID, ErrCheckedOut)
	}

	if s.lines[i].Quantity > 1 {
		s.lines[i].Quantity--
		s.notify(ctx, EventDecreased, productID)
		return nil
	}

	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.notify(ctx, EventRemoved, productID)
	return nil
}

func (s *Store) Clear(ctx context.Context) {
	s.lines = nil
	s.notify(ctx, EventCleared, "")
}

// Checkout marks every line as checked out. Checked out lines accept no
// further quantity changes.
func (s *Store) Checkout(ctx context.Context) error {
	if len(s.lines) == 0 {
		return ErrEmptyCart
	}
	for i := range s.lines {
		s.lines[i].CheckedOut = true
	}
	s.notify(ctx, EventCheckout, "")
	return nil
}

func (s *Store) indexOf(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) notify(ctx context.Context, kind EventKind, productID string) {
	if len(s.observers) == 0 {
		return
	}
	ev := Event{Kind: kind, ProductID: productID, Lines: s.Lines()}
	for _, o := range s.observers {
		o.CartChanged(ctx, ev)
	}
}
