package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avoronov/risk-intel/internal/core/domain"
)

type SentimentRepository struct {
	db *sql.DB
}

func NewSentimentRepository(db *sql.DB) *SentimentRepository {
	return &SentimentRepository{db: db}
}

// UpsertPoint replaces the whole row for (company, date); counts and average
// always move together.
func (r *SentimentRepository) UpsertPoint(ctx context.Context, point *domain.SentimentPoint) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sentiment_timeseries (
	company_id, date, avg_sentiment, document_count, positive_count, negative_count, neutral_count
) VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (company_id, date) DO UPDATE SET
	avg_sentiment = EXCLUDED.avg_sentiment,
	document_count = EXCLUDED.document_count,
	positive_count = EXCLUDED.positive_count,
	negative_count = EXCLUDED.negative_count,
	neutral_count = EXCLUDED.neutral_count
`,
		point.CompanyID, point.Date, point.AvgSentiment,
		point.DocumentCount, point.PositiveCount, point.NegativeCount, point.NeutralCount,
	)
	if err != nil {
		return fmt.Errorf("upsert sentiment point: %w", err)
	}
	return nil
}

func (r *SentimentRepository) DeletePoint(ctx context.Context, companyID string, day time.Time) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM sentiment_timeseries
WHERE company_id = $1 AND date = $2
`, companyID, day)
	if err != nil {
		return fmt.Errorf("delete sentiment point: %w", err)
	}
	return nil
}

func (r *SentimentRepository) ListRange(ctx context.Context, companyID string, from, to time.Time) ([]domain.SentimentPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT company_id, date, avg_sentiment, document_count, positive_count, negative_count, neutral_count
FROM sentiment_timeseries
WHERE company_id = $1 AND date >= $2 AND date <= $3
ORDER BY date
`, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query sentiment points: %w", err)
	}
	defer rows.Close()

	var points []domain.SentimentPoint
	for rows.Next() {
		var point domain.SentimentPoint
		if err := rows.Scan(
			&point.CompanyID, &point.Date, &point.AvgSentiment,
			&point.DocumentCount, &point.PositiveCount, &point.NegativeCount, &point.NeutralCount,
		); err != nil {
			return nil, fmt.Errorf("scan sentiment point: %w", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentiment points: %w", err)
	}
	return points, nil
}
