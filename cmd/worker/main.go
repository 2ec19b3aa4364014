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

	"github.com/kirillkom/doc-lifecycle/internal/bootstrap"
	"github.com/kirillkom/doc-lifecycle/internal/config"
	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/observability/logging"
	"github.com/kirillkom/doc-lifecycle/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logging.Install("doc-lifecycle-worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.EventsEnabled {
		slog.Error("worker_requires_events", "detail", "set EVENTS_ENABLED=true")
		os.Exit(1)
	}

	app, err := bootstrap.New(ctx, cfg, nil)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("doc-lifecycle-worker")
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: cfg.APIReadHeaderTimeout,
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Events.SubscribeLifecycleEvents(ctx, func(handlerCtx context.Context, event domain.LifecycleEvent) error {
		recordCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		if !event.OccurredAt.IsZero() {
			workerMetrics.ObserveDeliveryLag(time.Since(event.OccurredAt))
		}
		workerMetrics.StartEvent()
		started := time.Now()
		err := app.AuditUC.Record(recordCtx, event)
		workerMetrics.FinishEvent(event, time.Since(started), err)
		if err != nil {
			return err
		}
		slog.Debug("audit_recorded", "event_id", event.ID, "document_id", event.DocumentID, "action", string(event.Action))
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
