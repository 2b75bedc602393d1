package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirillkom/job-search-assistant/internal/bootstrap"
	"github.com/kirillkom/job-search-assistant/internal/config"
	"github.com/kirillkom/job-search-assistant/internal/observability/logging"
	"github.com/kirillkom/job-search-assistant/internal/observability/metrics"
)

const (
	serviceName    = "worker"
	reindexTimeout = 30 * time.Minute
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	searchMetrics := metrics.NewSearchMetrics(serviceName, workerMetrics.Registry())

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Metrics:      searchMetrics,
		ConnectQueue: true,
	})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	// Reindex runs are serialized; overlapping events would race on the same ids.
	var runMu sync.Mutex

	slog.Info("worker_subscribed", "subject", cfg.NATSReindexSubject, "corpus", app.Corpus.Len())
	err = app.Queue.SubscribeReindex(ctx, func(handlerCtx context.Context, reason string) error {
		runMu.Lock()
		defer runMu.Unlock()

		runCtx, cancel := context.WithTimeout(handlerCtx, reindexTimeout)
		defer cancel()

		workerMetrics.StartReindex()
		start := time.Now()
		indexed, err := app.IndexUC.IndexCorpus(runCtx)
		workerMetrics.FinishReindex(serviceName, time.Since(start), indexed, err)
		if err != nil {
			return err
		}
		slog.Info("reindex_completed", "reason", reason, "records", indexed, "duration_ms", time.Since(start).Milliseconds())
		return nil
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
