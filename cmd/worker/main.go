package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avoronov/risk-intel/internal/bootstrap"
	"github.com/avoronov/risk-intel/internal/config"
	"github.com/avoronov/risk-intel/internal/observability/logging"
	"github.com/avoronov/risk-intel/internal/observability/metrics"
)

const (
	serviceName = "risk-intel-worker"

	// Days of sentiment points rebuilt per company on each scheduled sweep.
	sentimentBackfillDays = 7
)

func main() {
	cfg := config.Load()
	log := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := startMetricsServer(cfg.WorkerMetricsPort, workerMetrics, log)
	defer shutdownMetricsServer(metricsServer, log)

	scheduler := startRescoreSchedule(ctx, cfg.RescoreCron, app, workerMetrics, log)
	if scheduler != nil {
		defer scheduler.Stop()
	}

	log.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentProcess(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()
		return handleDocument(processCtx, app, workerMetrics, documentID)
	})
	if err != nil {
		log.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}

// handleDocument runs the full per-document pipeline: annotate, refresh the
// sentiment point for the document's day, then rescore the company.
func handleDocument(ctx context.Context, app *bootstrap.App, workerMetrics *metrics.WorkerMetrics, documentID string) error {
	start := time.Now()
	workerMetrics.StartDocument()

	err := processDocument(ctx, app, workerMetrics, documentID)
	workerMetrics.FinishDocument(serviceName, time.Since(start), err)
	return err
}

func processDocument(ctx context.Context, app *bootstrap.App, workerMetrics *metrics.WorkerMetrics, documentID string) error {
	doc, err := app.Documents.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	workerMetrics.ObserveQueueLag(serviceName, time.Since(doc.IngestedAt))

	if err := app.ProcessUC.ProcessByID(ctx, documentID); err != nil {
		return err
	}

	day := doc.IngestedAt
	if doc.PublishedAt != nil {
		day = *doc.PublishedAt
	}
	if _, err := app.AggregateUC.AggregateDay(ctx, doc.CompanyID, day); err != nil {
		return err
	}

	_, err = app.ScoreUC.ComputeAndPersist(ctx, doc.CompanyID)
	return err
}

// startRescoreSchedule refreshes every company's score and recent sentiment on
// the configured cron expression so scores decay as documents age out of the
// scoring window.
func startRescoreSchedule(ctx context.Context, spec string, app *bootstrap.App, workerMetrics *metrics.WorkerMetrics, log *slog.Logger) *cron.Cron {
	if spec == "" {
		return nil
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
		defer cancel()

		start := time.Now()
		err := rescoreAll(runCtx, app, log)
		workerMetrics.FinishRescore(serviceName, time.Since(start), err)
		if err != nil {
			log.Error("rescore_run_failed", "error", err)
		}
	})
	if err != nil {
		log.Error("rescore_schedule_invalid", "spec", spec, "error", err)
		return nil
	}

	scheduler.Start()
	log.Info("rescore_scheduled", "spec", spec)
	return scheduler
}

func rescoreAll(ctx context.Context, app *bootstrap.App, log *slog.Logger) error {
	companies, err := app.Companies.List(ctx)
	if err != nil {
		return err
	}

	for _, company := range companies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := app.ScoreUC.ComputeAndPersist(ctx, company.ID); err != nil {
			log.Warn("rescore_company_failed", "company_id", company.ID, "error", err)
			continue
		}
		if err := app.AggregateUC.AggregateRecent(ctx, company.ID, sentimentBackfillDays); err != nil {
			log.Warn("aggregate_recent_failed", "company_id", company.ID, "error", err)
		}
	}
	return nil
}

func startMetricsServer(port string, workerMetrics *metrics.WorkerMetrics, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", workerMetrics.Handler())

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	go func() {
		log.Info("worker_metrics_listening", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("worker_metrics_failed", "error", err)
		}
	}()
	return server
}

func shutdownMetricsServer(server *http.Server, log *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("worker_metrics_shutdown_failed", "error", err)
	}
}
