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

// DocumentIngestUseCase stores an already-fetched document and queues it for
// asynchronous NLP annotation.
type DocumentIngestUseCase struct {
	companies ports.CompanyRepository
	docs      ports.DocumentRepository
	queue     ports.MessageQueue
	now       func() time.Time
}

func NewDocumentIngestUseCase(
	companies ports.CompanyRepository,
	docs ports.DocumentRepository,
	queue ports.MessageQueue,
) *DocumentIngestUseCase {
	return &DocumentIngestUseCase{
		companies: companies,
		docs:      docs,
		queue:     queue,
		now:       time.Now,
	}
}

func (uc *DocumentIngestUseCase) Ingest(ctx context.Context, companyID string, draft domain.DocumentDraft) (*domain.Document, error) {
	if strings.TrimSpace(draft.Title) == "" || strings.TrimSpace(draft.Content) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest document", errors.New("title and content are required"))
	}
	if _, err := uc.companies.GetByID(ctx, companyID); err != nil {
		return nil, fmt.Errorf("fetch company: %w", err)
	}

	source := draft.Source
	if source == "" {
		source = "manual"
	}

	doc := &domain.Document{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Title:       draft.Title,
		Content:     draft.Content,
		Source:      source,
		SourceURL:   draft.SourceURL,
		PublishedAt: draft.PublishedAt,
		IngestedAt:  uc.now().UTC(),
	}

	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	if err := uc.queue.PublishDocumentProcess(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish processing event: %w", err)
	}
	return doc, nil
}
