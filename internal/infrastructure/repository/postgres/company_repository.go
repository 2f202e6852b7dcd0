package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avoronov/risk-intel/internal/core/domain"
)

type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

const companyColumns = `id, name, ticker, industry, country, website, description,
risk_score, risk_score_updated_at, executive_summary, summary_updated_at, created_at, updated_at`

func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO companies (
	id, name, ticker, industry, country, website, description,
	risk_score, risk_score_updated_at, executive_summary, summary_updated_at, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`,
		company.ID, company.Name, company.Ticker, company.Industry, company.Country,
		company.Website, company.Description, company.RiskScore, company.RiskScoreUpdatedAt,
		company.ExecutiveSummary, company.SummaryUpdatedAt, company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+companyColumns+`
FROM companies
WHERE id = $1
`, id)

	company, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCompanyNotFound, "get company", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan company: %w", err)
	}
	return company, nil
}

func (r *CompanyRepository) List(ctx context.Context) ([]domain.Company, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+companyColumns+`
FROM companies
ORDER BY name
`)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, *company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}

func (r *CompanyRepository) UpdateSummary(ctx context.Context, id, summary string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE companies
SET executive_summary = $2, summary_updated_at = $3, updated_at = $3
WHERE id = $1
`, id, summary, at)
	if err != nil {
		return fmt.Errorf("update company summary: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrCompanyNotFound, "update company summary", fmt.Errorf("id=%s", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*domain.Company, error) {
	var company domain.Company
	var ticker, industry, country, website, description, summary sql.NullString
	var riskUpdatedAt, summaryUpdatedAt sql.NullTime

	err := row.Scan(
		&company.ID, &company.Name, &ticker, &industry, &country, &website, &description,
		&company.RiskScore, &riskUpdatedAt, &summary, &summaryUpdatedAt,
		&company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	company.Ticker = ticker.String
	company.Industry = industry.String
	company.Country = country.String
	company.Website = website.String
	company.Description = description.String
	company.ExecutiveSummary = summary.String
	if riskUpdatedAt.Valid {
		t := riskUpdatedAt.Time
		company.RiskScoreUpdatedAt = &t
	}
	if summaryUpdatedAt.Valid {
		t := summaryUpdatedAt.Time
		company.SummaryUpdatedAt = &t
	}
	return &company, nil
}
