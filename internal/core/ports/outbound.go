package ports

import (
	"context"
	"time"

	"github.com/avoronov/risk-intel/internal/core/domain"
)

// CompanyRepository persists the company registry and its cached artifacts.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	List(ctx context.Context) ([]domain.Company, error)
	UpdateSummary(ctx context.Context, id, summary string, at time.Time) error
}

// DocumentRepository persists documents and their NLP annotations.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByCompany(ctx context.Context, companyID string, since *time.Time) ([]domain.Document, error)
	ListByCompanyOnDay(ctx context.Context, companyID string, day time.Time) ([]domain.Document, error)
	ListUnannotated(ctx context.Context, companyID string) ([]domain.Document, error)
	ListRecent(ctx context.Context, companyID string, limit int) ([]domain.Document, error)
	SaveAnnotations(ctx context.Context, id string, features domain.TextFeatures) error
	SaveEmbeddingRef(ctx context.Context, id, embeddingID string) error
}

// RiskScoreRepository appends score history. Append must also update the
// owning company's current score in the same transaction.
type RiskScoreRepository interface {
	Append(ctx context.Context, score *domain.RiskScore) error
	ListByCompany(ctx context.Context, companyID string, limit int) ([]domain.RiskScore, error)
}

// SentimentRepository maintains the derived per-day sentiment cache.
type SentimentRepository interface {
	UpsertPoint(ctx context.Context, point *domain.SentimentPoint) error
	DeletePoint(ctx context.Context, companyID string, day time.Time) error
	ListRange(ctx context.Context, companyID string, from, to time.Time) ([]domain.SentimentPoint, error)
}

// EntityRecognizer extracts category -> mentions from text. Implementations
// may be absent entirely; the extractor treats nil as "no recognizer".
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) (map[string][]string, error)
}

// SentimentClassifier is a binary classifier: label in {positive, negative}
// plus confidence in [0,1]. Input is pre-truncated by the caller.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (label string, confidence float64, err error)
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SummaryGenerator is the opaque generative-text collaborator.
type SummaryGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (string, error)
}

// VectorCache is the bounded cache backing lazy document embeddings.
type VectorCache interface {
	Get(key string) ([]float32, bool)
	Add(key string, vector []float32)
}

// MessageQueue publishes/consumes document-processing events.
type MessageQueue interface {
	PublishDocumentProcess(ctx context.Context, documentID string) error
	SubscribeDocumentProcess(ctx context.Context, handler func(context.Context, string) error) error
}
