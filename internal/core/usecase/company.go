package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/risk-intel/internal/core/domain"
	"github.com/avoronov/risk-intel/internal/core/ports"
)

// CompanyRegisterUseCase creates companies in the registry, assigning the
// identifier and creation timestamps before the row is persisted.
type CompanyRegisterUseCase struct {
	companies ports.CompanyRepository
	now       func() time.Time
}

func NewCompanyRegisterUseCase(companies ports.CompanyRepository) *CompanyRegisterUseCase {
	return &CompanyRegisterUseCase{
		companies: companies,
		now:       time.Now,
	}
}

func (uc *CompanyRegisterUseCase) Register(ctx context.Context, draft domain.CompanyDraft) (*domain.Company, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "register company", errors.New("name is required"))
	}

	now := uc.now().UTC()
	company := &domain.Company{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(draft.Name),
		Ticker:      strings.TrimSpace(draft.Ticker),
		Industry:    strings.TrimSpace(draft.Industry),
		Country:     strings.TrimSpace(draft.Country),
		Website:     strings.TrimSpace(draft.Website),
		Description: strings.TrimSpace(draft.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.companies.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return company, nil
}
