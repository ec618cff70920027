package storefront

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/persistence"
	"github.com/fjod/go_cart/storefront/internal/productsource"
	"github.com/fjod/go_cart/storefront/internal/view"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testCatalog() []domain.Product {
	return []domain.Product{
		{ID: "1", Title: "Desk Lamp", Price: decimal.NewFromInt(20), Stock: 3, Category: "lighting"},
		{ID: "2", Title: "Floor Lamp", Price: decimal.NewFromInt(80), Stock: 0, Category: "lighting"},
		{ID: "3", Title: "Oak Chair", Price: decimal.RequireFromString("45.50"), Stock: 10, Category: "furniture"},
	}
}

func staticSource(products []domain.Product) productsource.Source {
	return productsource.SourceFunc(func(context.Context) ([]domain.Product, error) {
		return products, nil
	})
}

type catalogSource struct {
	catalog productsource.Catalog
}

func (c catalogSource) FetchAll(context.Context) ([]domain.Product, error) {
	return c.catalog.Products, nil
}

func (c catalogSource) FetchCatalog(context.Context) (productsource.Catalog, error) {
	return c.catalog, nil
}

func newLoaded(t *testing.T, opts Options) *Storefront {
	t.Helper()
	if opts.Source == nil {
		opts.Source = staticSource(testCatalog())
	}
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	s := New(context.Background(), opts)
	require.NoError(t, s.Refresh(context.Background()))
	return s
}

func TestRefresh_LoadsCatalog(t *testing.T) {
	s := newLoaded(t, Options{ItemsPerPage: 2})

	v := s.CatalogView()
	assert.True(t, v.Available)
	assert.Equal(t, 3, v.TotalItems)
	assert.Equal(t, 2, v.TotalPages)
	assert.Len(t, v.Products, 2)
	assert.Equal(t, []string{"lighting", "furniture"}, v.Categories)
	assert.Equal(t, "20.00", v.MinPrice)
	assert.Equal(t, "80.00", v.MaxPrice)
	assert.False(t, v.Stale)
	require.NotNil(t, v.FetchedAt)
}

func TestRefresh_ReportsSnapshotProvenance(t *testing.T) {
	savedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := catalogSource{catalog: productsource.Catalog{
		Products:     testCatalog(),
		FetchedAt:    savedAt,
		FromSnapshot: true,
	}}
	s := newLoaded(t, Options{Source: src})

	v := s.CatalogView()
	assert.True(t, v.Available)
	assert.True(t, v.Stale)
	require.NotNil(t, v.FetchedAt)
	assert.Equal(t, savedAt, *v.FetchedAt)
}

func TestRefresh_EmptyCatalogHasZeroBounds(t *testing.T) {
	s := newLoaded(t, Options{Source: staticSource(nil)})

	v := s.CatalogView()
	assert.Equal(t, "0.00", v.MinPrice)
	assert.Equal(t, "0.00", v.MaxPrice)
	assert.Zero(t, v.TotalPages)
}

func TestNextPrevPage(t *testing.T) {
	s := newLoaded(t, Options{ItemsPerPage: 2})

	assert.Equal(t, 2, s.NextPage())
	assert.Equal(t, 2, s.NextPage())
	assert.Equal(t, 1, s.PrevPage())
	assert.Equal(t, 1, s.PrevPage())
}

func TestRefresh_FailureLeavesCatalogUnavailable(t *testing.T) {
	fail := true
	src := productsource.SourceFunc(func(context.Context) ([]domain.Product, error) {
		if fail {
			return nil, &productsource.FetchError{Op: "request", Err: errors.New("refused")}
		}
		return testCatalog(), nil
	})
	s := New(context.Background(), Options{Source: src, Logger: zaptest.NewLogger(t)})

	err := s.Refresh(context.Background())
	var fe *productsource.FetchError
	require.ErrorAs(t, err, &fe)
	assert.False(t, s.Available())
	assert.Empty(t, s.CatalogView().Products)

	fail = false
	require.NoError(t, s.Refresh(context.Background()))
	assert.True(t, s.Available())
}

func TestRefresh_StaleResponseIsDiscarded(t *testing.T) {
	older := make(chan struct{})
	olderStarted := make(chan struct{})
	var calls int
	var mu sync.Mutex
	src := productsource.SourceFunc(func(context.Context) ([]domain.Product, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(olderStarted)
			<-older
			return testCatalog()[:1], nil
		}
		return testCatalog(), nil
	})
	s := New(context.Background(), Options{Source: src, Logger: zaptest.NewLogger(t)})

	done := make(chan error)
	go func() { done <- s.Refresh(context.Background()) }()
	<-olderStarted

	require.NoError(t, s.Refresh(context.Background()))
	close(older)
	require.NoError(t, <-done)

	assert.Equal(t, 3, s.CatalogView().TotalItems)
}

func TestSetCriteria_ResetsPage(t *testing.T) {
	s := newLoaded(t, Options{ItemsPerPage: 1})
	assert.Equal(t, 3, s.GoToPage(3))

	s.SetCriteria(domain.FilterCriteria{Category: "lighting"})
	v := s.CatalogView()
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 2, v.TotalItems)
	assert.Equal(t, "Desk Lamp", v.Products[0].Title)
}

func TestGoToPage_Clamps(t *testing.T) {
	s := newLoaded(t, Options{ItemsPerPage: 2})

	assert.Equal(t, 2, s.GoToPage(9))
	assert.Equal(t, 1, s.GoToPage(-1))

	s.SetCriteria(domain.FilterCriteria{SearchTerm: "nothing matches"})
	assert.Equal(t, 1, s.GoToPage(4))
	assert.Zero(t, s.CatalogView().TotalPages)
}

func TestSetItemsPerPage_RejectsZero(t *testing.T) {
	s := newLoaded(t, Options{})
	require.Error(t, s.SetItemsPerPage(0))
	require.NoError(t, s.SetItemsPerPage(1))
	assert.Equal(t, 1, s.CatalogView().ItemsPerPage)
}

func TestCardFlow_AddsToCart(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, Options{})

	require.NoError(t, s.SelectProduct("1"))
	q, err := s.AdjustSelection("1", 5)
	require.NoError(t, err)
	assert.Equal(t, 3, q)
	q, err = s.AdjustSelection("1", -1)
	require.NoError(t, err)
	assert.Equal(t, 2, q)
	require.NoError(t, s.ConfirmSelection(ctx, "1"))

	c := s.CartView()
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, "40.00", c.GrandTotal)

	card := s.CatalogView().Products[0]
	assert.False(t, card.Selecting)
	assert.Equal(t, 2, card.InCart)
}

func TestCardFlow_OutOfStockAndUnknown(t *testing.T) {
	s := newLoaded(t, Options{})

	require.ErrorIs(t, s.SelectProduct("2"), cart.ErrOutOfStock)
	require.ErrorIs(t, s.SelectProduct("404"), ErrProductNotFound)
	_, err := s.AdjustSelection("3", 1)
	require.ErrorIs(t, err, view.ErrCardIdle)
}

func TestConfirmSelection_OverStockResetsCard(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, Options{})

	require.NoError(t, s.SelectProduct("1"))
	_, err := s.AdjustSelection("1", 2)
	require.NoError(t, err)
	require.NoError(t, s.ConfirmSelection(ctx, "1"))

	require.NoError(t, s.SelectProduct("1"))
	err = s.ConfirmSelection(ctx, "1")
	require.ErrorIs(t, err, cart.ErrOutOfStock)

	assert.False(t, s.CatalogView().Products[0].Selecting)
	assert.Equal(t, 3, s.CartView().Lines[0].Quantity)
}

func TestCartLineOperations(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, Options{})

	require.ErrorIs(t, s.IncreaseLine(ctx, "1"), cart.ErrLineNotFound)

	require.NoError(t, s.SelectProduct("1"))
	require.NoError(t, s.ConfirmSelection(ctx, "1"))
	require.NoError(t, s.IncreaseLine(ctx, "1"))
	require.NoError(t, s.IncreaseLine(ctx, "1"))
	require.ErrorIs(t, s.IncreaseLine(ctx, "1"), cart.ErrOutOfStock)
	assert.Equal(t, "60.00", s.CartView().GrandTotal)

	require.NoError(t, s.DecreaseLine(ctx, "1"))
	require.NoError(t, s.DecreaseLine(ctx, "1"))
	require.NoError(t, s.DecreaseLine(ctx, "1"))
	assert.True(t, s.CartView().Empty)
}

func TestCheckoutAndClear(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, Options{})

	require.ErrorIs(t, s.Checkout(ctx), cart.ErrEmptyCart)

	require.NoError(t, s.SelectProduct("3"))
	require.NoError(t, s.ConfirmSelection(ctx, "3"))
	require.NoError(t, s.Checkout(ctx))
	assert.True(t, s.CartView().Lines[0].CheckedOut)

	s.ClearCart(ctx)
	assert.True(t, s.CartView().Empty)
}

func TestToggleCart(t *testing.T) {
	s := newLoaded(t, Options{})

	assert.False(t, s.CartView().Visible)
	assert.True(t, s.ToggleCart())
	assert.True(t, s.CartView().Visible)
	assert.False(t, s.ToggleCart())
}

func TestCartPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	slot := persistence.NewMemorySlot()
	log := zaptest.NewLogger(t)

	first := newLoaded(t, Options{Bridge: persistence.NewBridge(slot, "default", log)})
	require.NoError(t, first.SelectProduct("3"))
	_, err := first.AdjustSelection("3", 1)
	require.NoError(t, err)
	require.NoError(t, first.ConfirmSelection(ctx, "3"))

	second := newLoaded(t, Options{Bridge: persistence.NewBridge(slot, "default", log)})
	c := second.CartView()
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "Oak Chair", c.Lines[0].Title)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, "91.00", c.GrandTotal)
}

func TestObserversAndRenderCallback(t *testing.T) {
	ctx := context.Background()
	var kinds []cart.EventKind
	var renders []view.CartView
	s := newLoaded(t, Options{
		Observers: []cart.Observer{cart.ObserverFunc(func(_ context.Context, ev cart.Event) {
			kinds = append(kinds, ev.Kind)
		})},
		OnCartRender: func(v view.CartView) { renders = append(renders, v) },
	})

	require.NoError(t, s.SelectProduct("1"))
	require.NoError(t, s.ConfirmSelection(ctx, "1"))
	require.NoError(t, s.IncreaseLine(ctx, "1"))
	s.ClearCart(ctx)

	assert.Equal(t, []cart.EventKind{cart.EventAdded, cart.EventIncreased, cart.EventCleared}, kinds)
	require.Len(t, renders, 3)
	assert.Equal(t, "40.00", renders[1].GrandTotal)
	assert.True(t, renders[2].Empty)
}

func TestRefresh_DropsCardsForVanishedProducts(t *testing.T) {
	products := testCatalog()
	src := productsource.SourceFunc(func(context.Context) ([]domain.Product, error) {
		return products, nil
	})
	s := newLoaded(t, Options{Source: src})
	require.NoError(t, s.SelectProduct("1"))

	products = testCatalog()[2:]
	require.NoError(t, s.Refresh(context.Background()))
	products = testCatalog()
	require.NoError(t, s.Refresh(context.Background()))

	assert.False(t, s.CatalogView().Products[0].Selecting)
}
