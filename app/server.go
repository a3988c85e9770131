package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	"golang.org/x/sync/errgroup"
)

// Run starts the notification workers and serves the API and metrics until
// ctx is canceled, then drains everything within the shutdown timeout.
func (app *App) Run(ctx context.Context) error {
	cfg := app.Config

	if err := app.Modules.Notification.Start(ctx); err != nil {
		return fmt.Errorf("failed to start notification workers: %w", err)
	}

	api := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metrics := &http.Server{
		Addr:              cfg.Observability.MetricsAddress,
		Handler:           app.Observability.MetricsHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	serve := func(name string, srv *http.Server) {
		g.Go(func() error {
			app.logger.InfoContext(gctx, "HTTP server listening", attr.String("server", name), attr.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", name, err)
			}
			return nil
		})
	}
	serve("api", api)
	if metrics.Addr != "" {
		serve("metrics", metrics)
	}

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := api.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api shutdown: %w", err))
		}
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
		}
		if err := app.Modules.Notification.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("notification shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
