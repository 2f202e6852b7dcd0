package ports

import (
	"context"
	"time"

	"github.com/avoronov/risk-intel/internal/core/domain"
)

// CompanyRegistrar adds companies to the registry. Implementations own
// identifier and timestamp assignment.
type CompanyRegistrar interface {
	Register(ctx context.Context, draft domain.CompanyDraft) (*domain.Company, error)
}

// DocumentIngestor is the inbound contract for document intake.
type DocumentIngestor interface {
	Ingest(ctx context.Context, companyID string, draft domain.DocumentDraft) (*domain.Document, error)
}

// DocumentProcessor runs NLP annotation. ProcessByID always recomputes;
// ProcessPending only annotates documents without a sentiment score.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
	ProcessPending(ctx context.Context, companyID string) (int, error)
}

// SentimentAggregator folds per-document sentiment into daily points.
type SentimentAggregator interface {
	AggregateDay(ctx context.Context, companyID string, day time.Time) (*domain.SentimentPoint, error)
	AggregateRecent(ctx context.Context, companyID string, days int) error
}

// RiskScorer computes the composite risk score over the trailing window.
type RiskScorer interface {
	Compute(ctx context.Context, companyID string) (*domain.RiskBreakdown, error)
	ComputeAndPersist(ctx context.Context, companyID string) (*domain.RiskScore, error)
}

// EvidenceRetriever returns company documents ranked by similarity to a query.
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, companyID, query string, limit int) ([]domain.Document, error)
}

// SummaryService generates and persists a company executive summary.
type SummaryService interface {
	Summarize(ctx context.Context, companyID string) (string, error)
}
