package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/persistence"
	"github.com/fjod/go_cart/storefront/internal/productsource"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/storefront"
	"github.com/fjod/go_cart/storefront/internal/view"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app is the fully wired storefront for one command invocation.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	shop    *storefront.Storefront
	closers []func() error
}

func newApp(ctx context.Context, opts *RootOptions, onRender func(view.CartView)) (*app, error) {
	// Load configuration
	cfg, err := config.Load(opts.envFiles()...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Profile != "" {
		cfg.CartProfile = opts.Profile
	}

	l, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build logger", err)
	}

	a := &app{cfg: cfg, logger: l}
	fail := func(message string, err error) (*app, error) {
		if closeErr := a.Close(); closeErr != nil {
			l.Warn("cleanup after failed start", zap.Error(closeErr))
		}
		return nil, WrapExitError(ExitCommandError, message, err)
	}

	// Cart storage backend
	slot, err := a.openSlot(ctx)
	if err != nil {
		return fail("failed to open cart storage", err)
	}

	// Catalog source with SQLite snapshot fallback
	source, err := a.openSource()
	if err != nil {
		return fail("failed to open catalog snapshot", err)
	}

	// Optional checkout notifications
	var observers []cart.Observer
	if len(cfg.KafkaBrokers) > 0 {
		notifier := events.NewCheckoutNotifier(events.NewKafkaWriter(cfg.CheckoutTopic, cfg.KafkaBrokers...), cfg.CartProfile, l)
		a.closers = append(a.closers, notifier.Close)
		observers = append(observers, notifier)
		l.Info("checkout notifications enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.CheckoutTopic))
	}

	// Restore the saved cart and wire observers
	a.shop = storefront.New(ctx, storefront.Options{
		Source:       source,
		Bridge:       persistence.NewBridge(slot, cfg.CartProfile, l),
		Observers:    observers,
		ItemsPerPage: cfg.ItemsPerPage,
		Logger:       l,
		OnCartRender: onRender,
	})
	return a, nil
}

func (a *app) openSlot(ctx context.Context) (persistence.Slot, error) {
	cfg := a.cfg
	a.logger.Info("opening cart storage", zap.String("backend", cfg.StorageBackend))

	switch cfg.StorageBackend {
	case "memory":
		return persistence.NewMemorySlot(), nil
	case "redis":
		// Set up Redis connection
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return persistence.NewRedisSlot(client, 0), nil
	case "mongo":
		// Set up MongoDB connection
		db, err := persistence.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			return db.Client().Disconnect(context.Background())
		})
		slot := persistence.NewMongoSlot(db)
		if err := slot.CreateIndexes(ctx); err != nil {
			return nil, err
		}
		return slot, nil
	default:
		return persistence.NewFileSlot(cfg.StorageDir)
	}
}

// openSource puts the SQLite snapshot behind the HTTP source. An empty
// SNAPSHOT_DB_PATH disables the snapshot.
func (a *app) openSource() (productsource.Source, error) {
	cfg := a.cfg
	upstream := productsource.NewHTTPSource(cfg.CatalogURL, cfg.CatalogTimeout, a.logger)
	if cfg.SnapshotDBPath == "" {
		return upstream, nil
	}

	repo, err := repository.NewRepository(cfg.SnapshotDBPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, repo.Close)
	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		return nil, err
	}
	return productsource.NewSnapshotSource(upstream, repo, a.logger), nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
