package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/avoronov/risk-intel/internal/core/domain"
	"github.com/avoronov/risk-intel/internal/core/ports"
)

const defaultRetrievalLimit = 10

// EvidenceRetrievalUseCase ranks a company's documents by cosine similarity
// to a query. Document vectors are computed lazily from title+content and
// cached by content hash; when the query itself cannot be embedded the result
// degrades to the most recent documents, indistinguishable at the interface.
type EvidenceRetrievalUseCase struct {
	companies ports.CompanyRepository
	docs      ports.DocumentRepository
	embedder  ports.Embedder
	cache     ports.VectorCache
	log       *slog.Logger
}

func NewEvidenceRetrievalUseCase(
	companies ports.CompanyRepository,
	docs ports.DocumentRepository,
	embedder ports.Embedder,
	cache ports.VectorCache,
	log *slog.Logger,
) *EvidenceRetrievalUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &EvidenceRetrievalUseCase{
		companies: companies,
		docs:      docs,
		embedder:  embedder,
		cache:     cache,
		log:       log,
	}
}

func (uc *EvidenceRetrievalUseCase) Retrieve(ctx context.Context, companyID, query string, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = defaultRetrievalLimit
	}
	if _, err := uc.companies.GetByID(ctx, companyID); err != nil {
		return nil, fmt.Errorf("fetch company: %w", err)
	}

	queryVector, err := uc.embedQuery(ctx, query)
	if err != nil {
		uc.log.Warn("retrieval_fallback_recent", "company_id", companyID, "error", err)
		recent, listErr := uc.docs.ListRecent(ctx, companyID, limit)
		if listErr != nil {
			return nil, fmt.Errorf("list recent documents: %w", listErr)
		}
		return recent, nil
	}

	candidates, err := uc.docs.ListByCompany(ctx, companyID, nil)
	if err != nil {
		return nil, fmt.Errorf("list candidate documents: %w", err)
	}

	type scored struct {
		doc        domain.Document
		similarity float64
	}
	ranked := make([]scored, 0, len(candidates))
	for i := range candidates {
		doc := candidates[i]
		vector, ok := uc.documentVector(ctx, &doc)
		if !ok {
			// Unembeddable documents are excluded, not scored as zero.
			continue
		}
		ranked = append(ranked, scored{doc: doc, similarity: cosineSimilarity(queryVector, vector)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].similarity != ranked[j].similarity {
			return ranked[i].similarity > ranked[j].similarity
		}
		return publishedAfter(&ranked[i].doc, &ranked[j].doc)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]domain.Document, 0, len(ranked))
	for _, entry := range ranked {
		out = append(out, entry.doc)
	}
	return out, nil
}

func (uc *EvidenceRetrievalUseCase) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if uc.embedder == nil {
		return nil, domain.WrapError(domain.ErrModelUnavailable, "embed query", fmt.Errorf("no embedder configured"))
	}
	vector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("embed query: empty vector")
	}
	return vector, nil
}

func (uc *EvidenceRetrievalUseCase) documentVector(ctx context.Context, doc *domain.Document) ([]float32, bool) {
	text := doc.Title + " " + doc.Content
	key := contentHash(text)

	if uc.cache != nil {
		if vector, ok := uc.cache.Get(key); ok {
			return vector, true
		}
	}

	vector, err := uc.embedder.EmbedQuery(ctx, text)
	if err != nil || len(vector) == 0 {
		uc.log.Warn("document_embed_skipped", "document_id", doc.ID, "error", err)
		return nil, false
	}

	if uc.cache != nil {
		uc.cache.Add(key, vector)
	}
	if doc.EmbeddingID == "" {
		// Best effort: the ranking result does not depend on the marker.
		if err := uc.docs.SaveEmbeddingRef(ctx, doc.ID, "emb_"+key[:16]); err != nil {
			uc.log.Warn("embedding_ref_not_saved", "document_id", doc.ID, "error", err)
		}
	}
	return vector, true
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// publishedAfter is the deterministic recency tie-break: more recent first,
// documents without a publication time last.
func publishedAfter(a, b *domain.Document) bool {
	switch {
	case a.PublishedAt == nil:
		return false
	case b.PublishedAt == nil:
		return true
	default:
		return a.PublishedAt.After(*b.PublishedAt)
	}
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
