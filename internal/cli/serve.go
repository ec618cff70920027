package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	h "github.com/fjod/go_cart/storefront/internal/http"
)

type ServeOptions struct {
	*RootOptions
	Port string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront JSON API",
		Long: `Load the catalog and serve the catalog and cart API over HTTP.

Example:
  storefront serve
  storefront serve --port 9090 --profile alice`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "", "listen port (overrides HTTP_PORT)")

	return cmd
}

func runServe(parent context.Context, opts *ServeOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, opts.RootOptions, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	port := cfg.HTTPPort
	if opts.Port != "" {
		port = opts.Port
	}

	// Initial catalog load, a failure is not fatal
	if err := a.shop.Refresh(ctx); err != nil {
		a.logger.Warn("starting with an empty catalog", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      h.NewRouter(a.shop, cfg.RequestTimeout, a.logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("storefront starting", zap.String("addr", srv.Addr), zap.String("profile", cfg.CartProfile))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "server forced to shutdown", err)
	}
	a.logger.Info("server exited")
	return nil
}
