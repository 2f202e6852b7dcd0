package domain

import "time"

type Company struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Ticker      string `json:"ticker,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Country     string `json:"country,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`

	RiskScore          float64    `json:"risk_score"`
	RiskScoreUpdatedAt *time.Time `json:"risk_score_updated_at,omitempty"`
	ExecutiveSummary   string     `json:"executive_summary,omitempty"`
	SummaryUpdatedAt   *time.Time `json:"summary_updated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CompanyDraft struct {
	Name        string `json:"name"`
	Ticker      string `json:"ticker"`
	Industry    string `json:"industry"`
	Country     string `json:"country"`
	Website     string `json:"website"`
	Description string `json:"description"`
}
