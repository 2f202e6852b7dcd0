package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avoronov/risk-intel/internal/core/ports"
)

// ProcessDocumentUseCase runs the NLP annotation step. ProcessByID is the
// force-recompute path used by the worker for single documents; ProcessPending
// is the batch path that skips already-annotated documents.
type ProcessDocumentUseCase struct {
	docs      ports.DocumentRepository
	extractor *FeatureExtractor
	log       *slog.Logger
}

func NewProcessDocumentUseCase(
	docs ports.DocumentRepository,
	extractor *FeatureExtractor,
	log *slog.Logger,
) *ProcessDocumentUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &ProcessDocumentUseCase{
		docs:      docs,
		extractor: extractor,
		log:       log,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	features := uc.extractor.Extract(ctx, doc.Content)
	if err := uc.docs.SaveAnnotations(ctx, doc.ID, features); err != nil {
		return fmt.Errorf("save annotations: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) ProcessPending(ctx context.Context, companyID string) (int, error) {
	pending, err := uc.docs.ListUnannotated(ctx, companyID)
	if err != nil {
		return 0, fmt.Errorf("list unannotated documents: %w", err)
	}

	processed := 0
	for i := range pending {
		doc := &pending[i]
		features := uc.extractor.Extract(ctx, doc.Content)
		if err := uc.docs.SaveAnnotations(ctx, doc.ID, features); err != nil {
			// One bad document must not abort the rest of the batch.
			uc.log.Error("annotation_persist_failed", "document_id", doc.ID, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}
