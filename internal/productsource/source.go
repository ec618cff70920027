// Package productsource retrieves the product catalog.
package productsource

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Source returns the full catalog.
type Source interface {
	FetchAll(ctx context.Context) ([]domain.Product, error)
}

// FetchError reports a network or decoding failure while fetching.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch catalog: %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type SourceFunc func(ctx context.Context) ([]domain.Product, error)

func (f SourceFunc) FetchAll(ctx context.Context) ([]domain.Product, error) {
	return f(ctx)
}
