package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/voicebill/internal/config"
	"github.com/kirillkom/voicebill/internal/core/domain"
	"github.com/kirillkom/voicebill/internal/infrastructure/queue/nats"
	"github.com/kirillkom/voicebill/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/voicebill/internal/observability/logging"
	"github.com/kirillkom/voicebill/internal/observability/metrics"
)

// The worker owns the bills table: it drains recorded-bill events from the
// queue and persists them, keeping archive writes off the request path.
func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	archive := postgres.NewBillRepository(db)

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		log.Fatalf("init event queue: %v", err)
	}
	defer queue.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = queue.SubscribeBillRecorded(ctx, func(handlerCtx context.Context, rec domain.BillRecord) error {
		workerMetrics.StartEvent()
		start := time.Now()

		writeCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()
		saveErr := archive.SaveBill(writeCtx, rec)

		workerMetrics.FinishEvent("worker", time.Since(start), saveErr)
		workerMetrics.ObserveQueueLag("worker", time.Since(rec.CreatedAt))
		return saveErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
