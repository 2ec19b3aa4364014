package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/doc-lifecycle/internal/adapters/http"
	"github.com/kirillkom/doc-lifecycle/internal/bootstrap"
	"github.com/kirillkom/doc-lifecycle/internal/config"
	"github.com/kirillkom/doc-lifecycle/internal/observability/logging"
	"github.com/kirillkom/doc-lifecycle/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logging.Install("doc-lifecycle-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics("doc-lifecycle-api")
	app, err := bootstrap.New(ctx, cfg, httpMetrics)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, httpadapter.Services{
		Lifecycle: app.LifecycleUC,
		Locks:     app.LockUC,
		Reader:    app.ReaderUC,
		Favorites: app.FavoritesUC,
		History:   app.AuditUC,
	}, httpMetrics).Handler()

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: cfg.APIReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening",
			"port", cfg.APIPort,
			"store_backend", cfg.StoreBackend,
			"events_enabled", cfg.EventsEnabled,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
