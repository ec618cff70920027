package productsource

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultFlightTimeout bounds a shared upstream fetch. It is detached from
// the callers' contexts so one caller giving up does not fail the others.
const DefaultFlightTimeout = 30 * time.Second

// SnapshotStore persists the last good catalog.
type SnapshotStore interface {
	GetAllProducts(ctx context.Context) ([]domain.Product, error)
	ReplaceProducts(ctx context.Context, products []domain.Product) error
	FetchedAt(ctx context.Context) (time.Time, error)
}

// Catalog is a fetched product list together with its provenance.
type Catalog struct {
	Products  []domain.Product
	FetchedAt time.Time
	// FromSnapshot is set when the upstream failed and the stored catalog
	// was served instead.
	FromSnapshot bool
}

// CatalogSource is a Source that also reports where its products came from.
type CatalogSource interface {
	Source
	FetchCatalog(ctx context.Context) (Catalog, error)
}

// SnapshotSource wraps an upstream Source. Concurrent callers share one
// upstream request, each success is written to the store, and when the
// upstream fails the stored catalog is served instead.
type SnapshotSource struct {
	upstream      Source
	store         SnapshotStore
	logger        *zap.Logger
	sfg           singleflight.Group
	flightTimeout time.Duration
	now           func() time.Time
}

func NewSnapshotSource(upstream Source, store SnapshotStore, logger *zap.Logger) *SnapshotSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotSource{
		upstream:      upstream,
		store:         store,
		logger:        logger,
		flightTimeout: DefaultFlightTimeout,
		now:           time.Now,
	}
}

func (s *SnapshotSource) FetchAll(ctx context.Context) ([]domain.Product, error) {
	c, err := s.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return c.Products, nil
}

// FetchCatalog joins the in-flight fetch, if any. Each caller waits only
// as long as its own context allows.
func (s *SnapshotSource) FetchCatalog(ctx context.Context) (Catalog, error) {
	ch := s.sfg.DoChan("catalog", func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.flightTimeout)
		defer cancel()
		return s.fetch(flightCtx)
	})

	select {
	case <-ctx.Done():
		return Catalog{}, &FetchError{Op: "wait", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return Catalog{}, res.Err
		}
		if res.Shared {
			s.logger.Debug("catalog fetch shared with concurrent caller")
		}
		return res.Val.(Catalog), nil
	}
}

func (s *SnapshotSource) fetch(ctx context.Context) (Catalog, error) {
	// Try upstream first
	products, err := s.upstream.FetchAll(ctx)
	if err == nil {
		if s.store != nil {
			if errSave := s.store.ReplaceProducts(ctx, products); errSave != nil {
				s.logger.Warn("catalog snapshot save failed", zap.Error(errSave))
			}
		}
		return Catalog{Products: products, FetchedAt: s.now()}, nil
	}

	// Upstream failed, fall back to the stored snapshot
	if s.store == nil {
		return Catalog{}, err
	}
	cached, errGet := s.store.GetAllProducts(ctx)
	if errGet != nil {
		s.logger.Warn("catalog snapshot read failed", zap.Error(errGet))
		return Catalog{}, err
	}
	if len(cached) == 0 {
		return Catalog{}, err
	}

	fetchedAt, errAt := s.store.FetchedAt(ctx)
	if errAt != nil {
		s.logger.Warn("catalog snapshot age unknown", zap.Error(errAt))
	}
	s.logger.Warn("upstream catalog unavailable, serving snapshot",
		zap.Error(err),
		zap.Int("products", len(cached)),
		zap.Time("fetched_at", fetchedAt))
	return Catalog{Products: cached, FetchedAt: fetchedAt, FromSnapshot: true}, nil
}
