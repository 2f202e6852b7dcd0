package domain

import "time"

// Feature names used in risk-score breakdowns. Kept stable because they are
// persisted in history rows and read back by dashboards.
const (
	FeatureNegativeFraction = "negative_sentiment_fraction"
	FeatureMentionCount     = "mention_count"
	FeatureNegativeCount    = "negative_document_count"
)

// RiskScore is an append-only history record. The owning company's current
// score mirrors the latest row.
type RiskScore struct {
	ID        string             `json:"id"`
	CompanyID string             `json:"company_id"`
	Score     float64            `json:"score"`
	RuleScore float64            `json:"rule_score"`
	StatScore float64            `json:"stat_score"`
	Features  map[string]float64 `json:"features"`
	CreatedAt time.Time          `json:"created_at"`
}

// RiskBreakdown is the in-memory result of a scoring run before persistence.
type RiskBreakdown struct {
	Composite float64            `json:"composite"`
	RuleScore float64            `json:"rule_score"`
	StatScore float64            `json:"stat_score"`
	Features  map[string]float64 `json:"features"`
}
