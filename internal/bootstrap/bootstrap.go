package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avoronov/risk-intel/internal/config"
	"github.com/avoronov/risk-intel/internal/core/ports"
	"github.com/avoronov/risk-intel/internal/core/usecase"
	"github.com/avoronov/risk-intel/internal/infrastructure/cache"
	"github.com/avoronov/risk-intel/internal/infrastructure/llm/ollama"
	"github.com/avoronov/risk-intel/internal/infrastructure/llm/openai"
	"github.com/avoronov/risk-intel/internal/infrastructure/nlp/httpinfer"
	natsqueue "github.com/avoronov/risk-intel/internal/infrastructure/queue/nats"
	"github.com/avoronov/risk-intel/internal/infrastructure/repository/postgres"
	"github.com/avoronov/risk-intel/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Companies ports.CompanyRepository
	Documents ports.DocumentRepository
	History   ports.RiskScoreRepository
	Sentiment ports.SentimentRepository
	Queue     ports.MessageQueue

	RegisterUC  ports.CompanyRegistrar
	IngestUC    ports.DocumentIngestor
	ProcessUC   ports.DocumentProcessor
	AggregateUC ports.SentimentAggregator
	ScoreUC     ports.RiskScorer
	RetrieveUC  ports.EvidenceRetriever
	SummaryUC   ports.SummaryService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	companies := postgres.NewCompanyRepository(db)
	documents := postgres.NewDocumentRepository(db)
	history := postgres.NewRiskScoreRepository(db)
	sentiment := postgres.NewSentimentRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	inference := httpinfer.New(cfg.InferenceURL, cfg.InferenceRPS, executor)
	classifier := httpinfer.NewClassifier(inference)
	recognizer := httpinfer.NewRecognizer(inference)

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)

	var generator ports.SummaryGenerator
	switch cfg.LLMProvider {
	case "openai":
		generator = openai.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	default:
		generator = ollama.NewGenerator(ollamaClient)
	}

	vectors, err := cache.NewVectorCache(cfg.EmbedCacheSize)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init vector cache: %w", err)
	}

	policy, err := config.LoadScoringPolicy(cfg.ScoringPolicyPath)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("load scoring policy: %w", err)
	}

	extractor := usecase.NewFeatureExtractor(recognizer, classifier, log)
	retrieveUC := usecase.NewEvidenceRetrievalUseCase(companies, documents, embedder, vectors, log)

	app := &App{
		Config: cfg,

		Companies: companies,
		Documents: documents,
		History:   history,
		Sentiment: sentiment,
		Queue:     queue,

		RegisterUC:  usecase.NewCompanyRegisterUseCase(companies),
		IngestUC:    usecase.NewDocumentIngestUseCase(companies, documents, queue),
		ProcessUC:   usecase.NewProcessDocumentUseCase(documents, extractor, log),
		AggregateUC: usecase.NewSentimentAggregateUseCase(documents, sentiment),
		ScoreUC:     usecase.NewRiskScoreUseCase(companies, documents, history, policy),
		RetrieveUC:  retrieveUC,
		SummaryUC:   usecase.NewSummaryUseCase(companies, retrieveUC, generator, log),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
