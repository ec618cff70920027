// Package storefront ties the catalog, the card controls and the cart of one
// profile together. Its exported methods are serialized, which gives HTTP
// handlers the same one-event-at-a-time model a page has.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/persistence"
	"github.com/fjod/go_cart/storefront/internal/productsource"
	"github.com/fjod/go_cart/storefront/internal/view"
	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found in catalog")

type Options struct {
	Source       productsource.Source
	Bridge       *persistence.Bridge
	Observers    []cart.Observer
	ItemsPerPage int
	Logger       *zap.Logger
	// OnCartRender receives the cart view after every cart mutation.
	OnCartRender func(view.CartView)
}

type Storefront struct {
	mu     sync.Mutex
	source productsource.Source
	logger *zap.Logger

	products  []domain.Product
	byID      map[string]domain.Product
	available bool
	stale     bool
	fetchedAt time.Time

	// requested is bumped before each fetch; applied is the newest fetch
	// whose result was installed.
	requested atomic.Uint64
	applied   uint64

	criteria    domain.FilterCriteria
	page        catalog.PageState
	cards       *view.Cards
	store       *cart.Store
	cartVisible bool
	onRender    func(view.CartView)
}

// New restores the saved cart, if any, and wires persistence and observers
// to the cart store. The catalog stays empty until Refresh is called.
func New(ctx context.Context, opts Options) *Storefront {
	l := opts.Logger
	if l == nil {
		l = zap.NewNop()
	}
	s := &Storefront{
		source:   opts.Source,
		logger:   l,
		byID:     make(map[string]domain.Product),
		page:     catalog.NewPageState(opts.ItemsPerPage),
		cards:    view.NewCards(),
		store:    cart.NewStore(),
		onRender: opts.OnCartRender,
	}

	if opts.Bridge != nil {
		restored := opts.Bridge.Load(ctx)
		s.store.Restore(restored)
		if !restored.IsEmpty() {
			l.Info("cart restored", zap.Int("lines", s.store.Len()))
		}
		s.store.Subscribe(opts.Bridge)
	}
	for _, o := range opts.Observers {
		s.store.Subscribe(o)
	}
	s.store.Subscribe(cart.ObserverFunc(s.cartChanged))
	return s
}

func (s *Storefront) cartChanged(ctx context.Context, ev cart.Event) {
	logger.WithTrace(ctx, s.logger).Debug("cart changed",
		zap.Stringer("event", ev.Kind),
		zap.String("product_id", ev.ProductID),
		zap.Int("lines", len(ev.Lines)))
	if s.onRender != nil {
		s.onRender(s.renderCart())
	}
}

// Refresh fetches the catalog. A failed fetch leaves the catalog empty and
// unavailable. A response that arrives after a newer one was installed is
// dropped.
func (s *Storefront) Refresh(ctx context.Context) error {
	gen := s.requested.Add(1)
	c, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.WithTrace(ctx, s.logger)
	if gen < s.applied {
		log.Info("discarding stale catalog response", zap.Uint64("generation", gen), zap.Uint64("current", s.applied))
		return nil
	}
	s.applied = gen

	if err != nil {
		log.Error("catalog fetch failed", zap.Error(err))
		s.installCatalog(nil)
		s.available = false
		s.stale = false
		s.fetchedAt = time.Time{}
		return fmt.Errorf("refresh catalog: %w", err)
	}

	s.installCatalog(c.Products)
	s.available = true
	s.stale = c.FromSnapshot
	s.fetchedAt = c.FetchedAt
	log.Info("catalog loaded", zap.Int("products", len(c.Products)), zap.Bool("from_snapshot", c.FromSnapshot))
	return nil
}

// fetch asks the source for provenance when it can report it.
func (s *Storefront) fetch(ctx context.Context) (productsource.Catalog, error) {
	if cs, ok := s.source.(productsource.CatalogSource); ok {
		return cs.FetchCatalog(ctx)
	}
	products, err := s.source.FetchAll(ctx)
	if err != nil {
		return productsource.Catalog{}, err
	}
	return productsource.Catalog{Products: products, FetchedAt: time.Now()}, nil
}

func (s *Storefront) installCatalog(products []domain.Product) {
	s.products = products
	s.byID = make(map[string]domain.Product, len(products))
	for _, p := range products {
		s.byID[p.ID] = p
	}
	s.cards.Retain(products)
	s.page.GoTo(s.page.CurrentPage, len(catalog.Apply(s.products, s.criteria)))
}

func (s *Storefront) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// SetCriteria replaces search and filter settings and returns to page one.
func (s *Storefront) SetCriteria(criteria domain.FilterCriteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = criteria
	s.page.CurrentPage = 1
}

func (s *Storefront) SetItemsPerPage(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page.SetItemsPerPage(n)
}

func (s *Storefront) NextPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page.Next(len(catalog.Apply(s.products, s.criteria)))
	return s.page.CurrentPage
}

func (s *Storefront) PrevPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page.Prev(len(catalog.Apply(s.products, s.criteria)))
	return s.page.CurrentPage
}

// GoToPage moves to page, clamped to the pages the current filter yields.
func (s *Storefront) GoToPage(page int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page.GoTo(page, len(catalog.Apply(s.products, s.criteria)))
	return s.page.CurrentPage
}

func (s *Storefront) CatalogView() view.CatalogView {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := catalog.Apply(s.products, s.criteria)
	lo, hi := catalog.PriceBounds(s.products)
	v := view.CatalogView{
		Products:     view.RenderCatalog(s.page.Page(filtered), s.cards, s.store.Quantity),
		Page:         s.page.CurrentPage,
		TotalPages:   s.page.TotalPages(len(filtered)),
		ItemsPerPage: s.page.ItemsPerPage,
		TotalItems:   len(filtered),
		Categories:   catalog.Categories(s.products),
		MinPrice:     domain.FormatMoney(lo),
		MaxPrice:     domain.FormatMoney(hi),
		Available:    s.available,
		Stale:        s.stale,
	}
	if !s.fetchedAt.IsZero() {
		fetchedAt := s.fetchedAt
		v.FetchedAt = &fetchedAt
	}
	return v
}

func (s *Storefront) SelectProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.lookup(id)
	if err != nil {
		return err
	}
	return s.cards.Select(p)
}

func (s *Storefront) AdjustSelection(id string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	return s.cards.Adjust(p, delta)
}

// ConfirmSelection adds the selected quantity to the cart. The card goes
// back to idle even when the cart rejects the quantity.
func (s *Storefront) ConfirmSelection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.lookup(id)
	if err != nil {
		s.cards.Reset(id)
		return err
	}
	return s.cards.Confirm(ctx, p, s.store)
}

// IncreaseLine adds one unit, bounded by the product's current stock.
func (s *Storefront) IncreaseLine(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.Line(id); !ok {
		return fmt.Errorf("product %s: %w", id, cart.ErrLineNotFound)
	}
	p, err := s.lookup(id)
	if err != nil {
		return err
	}
	return s.store.Increment(ctx, id, p.Stock)
}

func (s *Storefront) DecreaseLine(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DecreaseOrRemove(ctx, id)
}

func (s *Storefront) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Clear(ctx)
}

func (s *Storefront) Checkout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Checkout(ctx)
}

// ToggleCart flips the cart panel visibility and returns the new value.
func (s *Storefront) ToggleCart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartVisible = !s.cartVisible
	return s.cartVisible
}

func (s *Storefront) CartView() view.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderCart()
}

func (s *Storefront) renderCart() view.CartView {
	return view.RenderCart(s.store.Lines(), s.stockOf, s.cartVisible)
}

func (s *Storefront) stockOf(id string) (int, bool) {
	p, ok := s.byID[id]
	return p.Stock, ok
}

func (s *Storefront) lookup(id string) (domain.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	return p, nil
}
