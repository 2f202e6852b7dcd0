package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avoronov/risk-intel/internal/core/domain"
	"github.com/avoronov/risk-intel/internal/core/ports"
)

const (
	summaryDocumentLimit = 10
	// Per-document excerpt cap keeps the generation context bounded no matter
	// how large the retrieved documents are.
	summaryExcerptChars = 500
)

// SummaryUseCase produces the retrieval-grounded executive summary. Model
// failures never surface: the caller always receives usable text.
type SummaryUseCase struct {
	companies ports.CompanyRepository
	retriever ports.EvidenceRetriever
	generator ports.SummaryGenerator
	log       *slog.Logger
	now       func() time.Time
}

func NewSummaryUseCase(
	companies ports.CompanyRepository,
	retriever ports.EvidenceRetriever,
	generator ports.SummaryGenerator,
	log *slog.Logger,
) *SummaryUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &SummaryUseCase{
		companies: companies,
		retriever: retriever,
		generator: generator,
		log:       log,
		now:       time.Now,
	}
}

func (uc *SummaryUseCase) Summarize(ctx context.Context, companyID string) (string, error) {
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return "", fmt.Errorf("fetch company: %w", err)
	}

	query := "Latest news and information about " + company.Name
	evidence, err := uc.retriever.Retrieve(ctx, companyID, query, summaryDocumentLimit)
	if err != nil {
		return "", fmt.Errorf("retrieve evidence: %w", err)
	}
	if len(evidence) == 0 {
		return fmt.Sprintf("No information available for %s.", company.Name), nil
	}

	summary, ok := uc.generate(ctx, company.Name, evidence)
	if !ok {
		return fmt.Sprintf("Summary unavailable for %s.", company.Name), nil
	}

	if err := uc.companies.UpdateSummary(ctx, company.ID, summary, uc.now().UTC()); err != nil {
		return "", fmt.Errorf("persist summary: %w", err)
	}
	return summary, nil
}

func (uc *SummaryUseCase) generate(ctx context.Context, companyName string, evidence []domain.Document) (string, bool) {
	if uc.generator == nil {
		uc.log.Warn("summary_degraded", "company", companyName, "reason", "no generator configured")
		return "", false
	}

	summary, err := uc.generator.GenerateFromPrompt(ctx, buildSummaryPrompt(companyName, evidence))
	if err != nil {
		uc.log.Warn("summary_degraded", "company", companyName, "error", err)
		return "", false
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", false
	}
	return summary, true
}

func buildSummaryPrompt(companyName string, evidence []domain.Document) string {
	var contextBuilder strings.Builder
	for i := range evidence {
		doc := &evidence[i]
		if i > 0 {
			contextBuilder.WriteString("\n\n---\n\n")
		}
		contextBuilder.WriteString("Title: ")
		contextBuilder.WriteString(doc.Title)
		contextBuilder.WriteString("\n")
		contextBuilder.WriteString(truncateRunes(doc.Content, summaryExcerptChars))
	}

	return fmt.Sprintf(`You are a financial analyst. Provide concise, factual summaries.
Based on the following recent news and information about %s, write a 3-4 sentence executive summary.

%s

Summary:`, companyName, contextBuilder.String())
}
