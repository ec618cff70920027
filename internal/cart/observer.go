package cart

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type EventKind int

const (
	EventAdded EventKind = iota
	EventIncreased
	EventDecreased
	EventRemoved
	EventCleared
	EventCheckout
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventIncreased:
		return "increased"
	case EventDecreased:
		return "decreased"
	case EventRemoved:
		return "removed"
	case EventCleared:
		return "cleared"
	case EventCheckout:
		return "checkout"
	default:
		return "unknown"
	}
}

// Event describes a completed mutation. Lines is a copy of the cart after
// the mutation.
type Event struct {
	Kind      EventKind
	ProductID string
	Lines     []domain.CartLine
}

// Observer is notified synchronously after every successful mutation.
type Observer interface {
	CartChanged(ctx context.Context, ev Event)
}

type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) CartChanged(ctx context.Context, ev Event) {
	f(ctx, ev)
}
