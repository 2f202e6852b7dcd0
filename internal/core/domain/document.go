package domain

import "time"

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Document is an ingested text unit owned by a company. Sentiment fields are
// set together once the NLP pipeline has run; both nil means unprocessed.
type Document struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`

	Title     string `json:"title"`
	Content   string `json:"content"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url,omitempty"`

	SentimentScore *float64            `json:"sentiment_score,omitempty"`
	SentimentLabel SentimentLabel      `json:"sentiment_label,omitempty"`
	Entities       map[string][]string `json:"entities,omitempty"`
	EmbeddingID    string              `json:"embedding_id,omitempty"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
	IngestedAt  time.Time  `json:"ingested_at"`
}

// Annotated reports whether the NLP pipeline has already scored the document.
func (d *Document) Annotated() bool {
	return d.SentimentScore != nil
}

// DocumentDraft carries caller-supplied fields of a document before ingestion
// assigns identity and ownership.
type DocumentDraft struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Source      string     `json:"source"`
	SourceURL   string     `json:"source_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// TextFeatures is the output of feature extraction over raw document text.
type TextFeatures struct {
	Entities       map[string][]string `json:"entities"`
	SentimentScore float64             `json:"sentiment_score"`
	SentimentLabel SentimentLabel      `json:"sentiment_label"`
}

// NeutralFeatures is the degraded default used whenever extraction fails.
func NeutralFeatures() TextFeatures {
	return TextFeatures{
		Entities:       map[string][]string{},
		SentimentScore: 0.0,
		SentimentLabel: SentimentNeutral,
	}
}
