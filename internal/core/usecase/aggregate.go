package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/avoronov/risk-intel/internal/core/domain"
	"github.com/avoronov/risk-intel/internal/core/ports"
)

// SentimentAggregateUseCase materializes per-(company, day) sentiment points.
// Points are a recomputable cache: recomputing a day replaces the row, a day
// with no sentiment-bearing documents has no row at all.
type SentimentAggregateUseCase struct {
	docs      ports.DocumentRepository
	sentiment ports.SentimentRepository
	now       func() time.Time
}

func NewSentimentAggregateUseCase(
	docs ports.DocumentRepository,
	sentiment ports.SentimentRepository,
) *SentimentAggregateUseCase {
	return &SentimentAggregateUseCase{
		docs:      docs,
		sentiment: sentiment,
		now:       time.Now,
	}
}

func (uc *SentimentAggregateUseCase) AggregateDay(ctx context.Context, companyID string, day time.Time) (*domain.SentimentPoint, error) {
	day = truncateToDay(day)

	docs, err := uc.docs.ListByCompanyOnDay(ctx, companyID, day)
	if err != nil {
		return nil, fmt.Errorf("list documents for day: %w", err)
	}

	point := foldSentiment(companyID, day, docs)
	if point == nil {
		// Absent, not zero: drop any stale point from an earlier run.
		if err := uc.sentiment.DeletePoint(ctx, companyID, day); err != nil {
			return nil, fmt.Errorf("delete empty sentiment point: %w", err)
		}
		return nil, nil
	}

	if err := uc.sentiment.UpsertPoint(ctx, point); err != nil {
		return nil, fmt.Errorf("upsert sentiment point: %w", err)
	}
	return point, nil
}

func (uc *SentimentAggregateUseCase) AggregateRecent(ctx context.Context, companyID string, days int) error {
	if days <= 0 {
		days = 1
	}
	today := truncateToDay(uc.now().UTC())
	for offset := 0; offset < days; offset++ {
		day := today.AddDate(0, 0, -offset)
		if _, err := uc.AggregateDay(ctx, companyID, day); err != nil {
			return fmt.Errorf("aggregate day %s: %w", day.Format("2006-01-02"), err)
		}
	}
	return nil
}

// foldSentiment computes one point from a day's documents. Documents without
// a sentiment score are excluded entirely, not counted as neutral.
func foldSentiment(companyID string, day time.Time, docs []domain.Document) *domain.SentimentPoint {
	point := domain.SentimentPoint{
		CompanyID: companyID,
		Date:      day,
	}

	var sum float64
	for i := range docs {
		doc := &docs[i]
		if !doc.Annotated() {
			continue
		}
		sum += *doc.SentimentScore
		point.DocumentCount++
		switch doc.SentimentLabel {
		case domain.SentimentPositive:
			point.PositiveCount++
		case domain.SentimentNegative:
			point.NegativeCount++
		default:
			point.NeutralCount++
		}
	}

	if point.DocumentCount == 0 {
		return nil
	}
	point.AvgSentiment = sum / float64(point.DocumentCount)
	return &point
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
