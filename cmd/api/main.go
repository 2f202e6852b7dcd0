package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/avoronov/risk-intel/internal/adapters/http"
	"github.com/avoronov/risk-intel/internal/bootstrap"
	"github.com/avoronov/risk-intel/internal/config"
	"github.com/avoronov/risk-intel/internal/observability/logging"
	"github.com/avoronov/risk-intel/internal/observability/metrics"
)

const serviceName = "risk-intel-api"

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

	serverMetrics := metrics.NewHTTPServerMetrics(serviceName)
	router := httpadapter.NewRouter(httpadapter.RouterDeps{
		Service:    serviceName,
		Logger:     log,
		Companies:  app.Companies,
		Documents:  app.Documents,
		History:    app.History,
		Sentiment:  app.Sentiment,
		Registrar:  app.RegisterUC,
		Ingestor:   app.IngestUC,
		Processor:  app.ProcessUC,
		Scorer:     app.ScoreUC,
		Retriever:  app.RetrieveUC,
		Summarizer: app.SummaryUC,
		Metrics:    serverMetrics,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", serverMetrics.Handler())
	mux.Handle("/", router.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("api_shutdown_failed", "error", err)
	}
}
