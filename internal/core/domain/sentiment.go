package domain

import "time"

// SentimentPoint is one materialized row per (company, calendar day).
// It is a cache derived from documents, never a source of truth.
type SentimentPoint struct {
	CompanyID     string    `json:"company_id"`
	Date          time.Time `json:"date"`
	AvgSentiment  float64   `json:"avg_sentiment"`
	DocumentCount int       `json:"document_count"`
	PositiveCount int       `json:"positive_count"`
	NegativeCount int       `json:"negative_count"`
	NeutralCount  int       `json:"neutral_count"`
}
