package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avoronov/risk-intel/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, company_id, title, content, source, source_url,
sentiment_score, sentiment_label, entities, embedding_id, published_at, ingested_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	var entitiesJSON any
	if doc.Entities != nil {
		raw, err := json.Marshal(doc.Entities)
		if err != nil {
			return fmt.Errorf("marshal entities: %w", err)
		}
		entitiesJSON = raw
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, company_id, title, content, source, source_url,
	sentiment_score, sentiment_label, entities, embedding_id, published_at, ingested_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		doc.ID, doc.CompanyID, doc.Title, doc.Content, doc.Source, doc.SourceURL,
		doc.SentimentScore, nullableLabel(doc.SentimentLabel), entitiesJSON,
		nullableString(doc.EmbeddingID), doc.PublishedAt, doc.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) ListByCompany(ctx context.Context, companyID string, since *time.Time) ([]domain.Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE company_id = $1
ORDER BY published_at DESC NULLS LAST
`
	args := []any{companyID}
	if since != nil {
		query = `
SELECT ` + documentColumns + `
FROM documents
WHERE company_id = $1 AND published_at >= $2
ORDER BY published_at DESC
`
		args = append(args, *since)
	}

	return r.queryDocuments(ctx, query, args...)
}

// ListByCompanyOnDay matches documents by publication time, falling back to
// ingestion time for undated ones; the aggregator derives the day the same
// way, so undated documents still land in their ingestion day's point.
func (r *DocumentRepository) ListByCompanyOnDay(ctx context.Context, companyID string, day time.Time) ([]domain.Document, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	return r.queryDocuments(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE company_id = $1
  AND COALESCE(published_at, ingested_at) >= $2
  AND COALESCE(published_at, ingested_at) < $3
ORDER BY COALESCE(published_at, ingested_at)
`, companyID, from, to)
}

func (r *DocumentRepository) ListUnannotated(ctx context.Context, companyID string) ([]domain.Document, error) {
	return r.queryDocuments(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE company_id = $1 AND sentiment_score IS NULL
ORDER BY ingested_at
`, companyID)
}

func (r *DocumentRepository) ListRecent(ctx context.Context, companyID string, limit int) ([]domain.Document, error) {
	return r.queryDocuments(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE company_id = $1
ORDER BY published_at DESC NULLS LAST
LIMIT $2
`, companyID, limit)
}

// SaveAnnotations writes sentiment and entities together; the pair is the
// atomic unit of annotation.
func (r *DocumentRepository) SaveAnnotations(ctx context.Context, id string, features domain.TextFeatures) error {
	entitiesJSON, err := json.Marshal(features.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET sentiment_score = $2, sentiment_label = $3, entities = $4
WHERE id = $1
`, id, features.SentimentScore, string(features.SentimentLabel), entitiesJSON)
	if err != nil {
		return fmt.Errorf("save annotations: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "save annotations", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (r *DocumentRepository) SaveEmbeddingRef(ctx context.Context, id, embeddingID string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET embedding_id = $2
WHERE id = $1
`, id, embeddingID)
	if err != nil {
		return fmt.Errorf("save embedding ref: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "save embedding ref", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (r *DocumentRepository) queryDocuments(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var sourceURL, label, embeddingID sql.NullString
	var score sql.NullFloat64
	var entitiesRaw []byte
	var publishedAt sql.NullTime

	err := row.Scan(
		&doc.ID, &doc.CompanyID, &doc.Title, &doc.Content, &doc.Source, &sourceURL,
		&score, &label, &entitiesRaw, &embeddingID, &publishedAt, &doc.IngestedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.SourceURL = sourceURL.String
	doc.SentimentLabel = domain.SentimentLabel(label.String)
	doc.EmbeddingID = embeddingID.String
	if score.Valid {
		v := score.Float64
		doc.SentimentScore = &v
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		doc.PublishedAt = &t
	}
	if len(entitiesRaw) > 0 {
		if err := json.Unmarshal(entitiesRaw, &doc.Entities); err != nil {
			return nil, fmt.Errorf("unmarshal entities: %w", err)
		}
	}
	return &doc, nil
}

func nullableLabel(label domain.SentimentLabel) any {
	if label == "" {
		return nil
	}
	return string(label)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
