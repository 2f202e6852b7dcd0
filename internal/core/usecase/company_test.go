package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avoronov/risk-intel/internal/core/domain"
)

func TestRegisterAssignsIdentityBeforePersisting(t *testing.T) {
	repo := &companyRepoFake{}
	uc := NewCompanyRegisterUseCase(repo)
	now := time.Date(2026, 8, 25, 10, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	uc.now = func() time.Time { return now }

	company, err := uc.Register(context.Background(), domain.CompanyDraft{
		Name:   "  Acme  ",
		Ticker: " ACM ",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 create, got %d", len(repo.created))
	}
	stored := repo.created[0]
	if stored.ID == "" {
		t.Fatal("expected a generated id before insert")
	}
	if stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps assigned, got %+v", stored)
	}
	if !stored.CreatedAt.Equal(now.UTC()) || stored.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC creation time %v, got %v", now.UTC(), stored.CreatedAt)
	}
	if stored.Name != "Acme" || stored.Ticker != "ACM" {
		t.Fatalf("expected trimmed fields, got %+v", stored)
	}
	if company.ID != stored.ID {
		t.Fatalf("expected returned company to match stored, got %q vs %q", company.ID, stored.ID)
	}
}

func TestRegisterGeneratesDistinctIDs(t *testing.T) {
	repo := &companyRepoFake{}
	uc := NewCompanyRegisterUseCase(repo)

	first, err := uc.Register(context.Background(), domain.CompanyDraft{Name: "Acme"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	second, err := uc.Register(context.Background(), domain.CompanyDraft{Name: "Globex"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, both were %q", first.ID)
	}
}

func TestRegisterRejectsBlankName(t *testing.T) {
	repo := &companyRepoFake{}
	uc := NewCompanyRegisterUseCase(repo)

	_, err := uc.Register(context.Background(), domain.CompanyDraft{Name: "   "})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no create on invalid input, got %d", len(repo.created))
	}
}

func TestRegisterSurfacesRepositoryFailure(t *testing.T) {
	repo := &companyRepoFake{createErr: errors.New("insert failed")}
	uc := NewCompanyRegisterUseCase(repo)

	_, err := uc.Register(context.Background(), domain.CompanyDraft{Name: "Acme"})
	if err == nil || !errors.Is(err, repo.createErr) {
		t.Fatalf("expected repository error surfaced, got %v", err)
	}
}
