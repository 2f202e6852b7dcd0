package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/avoronov/risk-intel/internal/core/domain"
)

type RiskScoreRepository struct {
	db *sql.DB
}

func NewRiskScoreRepository(db *sql.DB) *RiskScoreRepository {
	return &RiskScoreRepository{db: db}
}

// Append inserts the history row and mirrors the composite onto the owning
// company in one transaction, so the cached current score can never drift
// from the latest history row.
func (r *RiskScoreRepository) Append(ctx context.Context, score *domain.RiskScore) error {
	featuresJSON, err := json.Marshal(score.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin score tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO risk_scores (id, company_id, score, rule_score, stat_score, features, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		score.ID, score.CompanyID, score.Score, score.RuleScore, score.StatScore, featuresJSON, score.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert risk score: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
UPDATE companies
SET risk_score = $2, risk_score_updated_at = $3, updated_at = $3
WHERE id = $1
`, score.CompanyID, score.Score, score.CreatedAt)
	if err != nil {
		return fmt.Errorf("update company risk score: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrCompanyNotFound, "update company risk score", fmt.Errorf("id=%s", score.CompanyID))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit score tx: %w", err)
	}
	return nil
}

func (r *RiskScoreRepository) ListByCompany(ctx context.Context, companyID string, limit int) ([]domain.RiskScore, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, company_id, score, rule_score, stat_score, features, created_at
FROM risk_scores
WHERE company_id = $1
ORDER BY created_at DESC
LIMIT $2
`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("query risk scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.RiskScore
	for rows.Next() {
		var score domain.RiskScore
		var featuresRaw []byte
		if err := rows.Scan(
			&score.ID, &score.CompanyID, &score.Score, &score.RuleScore, &score.StatScore,
			&featuresRaw, &score.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan risk score: %w", err)
		}
		if len(featuresRaw) > 0 {
			if err := json.Unmarshal(featuresRaw, &score.Features); err != nil {
				return nil, fmt.Errorf("unmarshal features: %w", err)
			}
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk scores: %w", err)
	}
	return scores, nil
}
