package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avoronov/risk-intel/internal/core/domain"
	"github.com/avoronov/risk-intel/internal/core/usecase"
)

type companyRepoStub struct {
	company *domain.Company
	getErr  error
}

func (s *companyRepoStub) Create(context.Context, *domain.Company) error { return nil }

func (s *companyRepoStub) GetByID(context.Context, string) (*domain.Company, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.company, nil
}

func (s *companyRepoStub) List(context.Context) ([]domain.Company, error) {
	if s.company == nil {
		return nil, nil
	}
	return []domain.Company{*s.company}, nil
}

func (s *companyRepoStub) UpdateSummary(context.Context, string, string, time.Time) error {
	return nil
}

type docRepoStub struct {
	doc    *domain.Document
	getErr error
}

func (s *docRepoStub) Create(context.Context, *domain.Document) error { return nil }

func (s *docRepoStub) GetByID(context.Context, string) (*domain.Document, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.doc, nil
}

func (s *docRepoStub) ListByCompany(context.Context, string, *time.Time) ([]domain.Document, error) {
	return nil, nil
}

func (s *docRepoStub) ListByCompanyOnDay(context.Context, string, time.Time) ([]domain.Document, error) {
	return nil, nil
}

func (s *docRepoStub) ListUnannotated(context.Context, string) ([]domain.Document, error) {
	return nil, nil
}

func (s *docRepoStub) ListRecent(context.Context, string, int) ([]domain.Document, error) {
	return nil, nil
}

func (s *docRepoStub) SaveAnnotations(context.Context, string, domain.TextFeatures) error {
	return nil
}

func (s *docRepoStub) SaveEmbeddingRef(context.Context, string, string) error { return nil }

type historyRepoStub struct{}

func (historyRepoStub) Append(context.Context, *domain.RiskScore) error { return nil }

func (historyRepoStub) ListByCompany(context.Context, string, int) ([]domain.RiskScore, error) {
	return []domain.RiskScore{{ID: "s-1", CompanyID: "c-1", Score: 44.3}}, nil
}

type sentimentRepoStub struct{}

func (sentimentRepoStub) UpsertPoint(context.Context, *domain.SentimentPoint) error { return nil }
func (sentimentRepoStub) DeletePoint(context.Context, string, time.Time) error      { return nil }

func (sentimentRepoStub) ListRange(context.Context, string, time.Time, time.Time) ([]domain.SentimentPoint, error) {
	return nil, nil
}

type ingestorStub struct {
	err error
}

func (s *ingestorStub) Ingest(_ context.Context, companyID string, draft domain.DocumentDraft) (*domain.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Document{ID: "d-new", CompanyID: companyID, Title: draft.Title}, nil
}

type processorStub struct {
	processed int
}

func (s *processorStub) ProcessByID(context.Context, string) error { return nil }

func (s *processorStub) ProcessPending(context.Context, string) (int, error) {
	return s.processed, nil
}

type scorerStub struct {
	err error
}

func (s *scorerStub) Compute(context.Context, string) (*domain.RiskBreakdown, error) {
	return &domain.RiskBreakdown{Composite: 44.3}, nil
}

func (s *scorerStub) ComputeAndPersist(_ context.Context, companyID string) (*domain.RiskScore, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.RiskScore{ID: "s-1", CompanyID: companyID, Score: 44.3}, nil
}

type retrieverStub struct {
	docs []domain.Document
	err  error
}

func (s *retrieverStub) Retrieve(context.Context, string, string, int) ([]domain.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.docs, nil
}

type summarizerStub struct {
	summary string
	err     error
}

func (s *summarizerStub) Summarize(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

func newTestRouter(deps RouterDeps) http.Handler {
	if deps.Service == "" {
		deps.Service = "test"
	}
	if deps.Companies == nil {
		deps.Companies = &companyRepoStub{company: &domain.Company{ID: "c-1", Name: "Acme"}}
	}
	if deps.Documents == nil {
		deps.Documents = &docRepoStub{doc: &domain.Document{ID: "d-1"}}
	}
	if deps.History == nil {
		deps.History = historyRepoStub{}
	}
	if deps.Sentiment == nil {
		deps.Sentiment = sentimentRepoStub{}
	}
	if deps.Registrar == nil {
		deps.Registrar = usecase.NewCompanyRegisterUseCase(deps.Companies)
	}
	if deps.Ingestor == nil {
		deps.Ingestor = &ingestorStub{}
	}
	if deps.Processor == nil {
		deps.Processor = &processorStub{processed: 2}
	}
	if deps.Scorer == nil {
		deps.Scorer = &scorerStub{}
	}
	if deps.Retriever == nil {
		deps.Retriever = &retrieverStub{}
	}
	if deps.Summarizer == nil {
		deps.Summarizer = &summarizerStub{summary: "fine"}
	}
	return NewRouter(deps).Handler()
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(RouterDeps{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateCompanyRequiresName(t *testing.T) {
	handler := newTestRouter(RouterDeps{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/companies", strings.NewReader(`{"name":"  "}`))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateCompanyReturnsCreated(t *testing.T) {
	handler := newTestRouter(RouterDeps{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/companies", strings.NewReader(`{"name":"Acme","ticker":"ACM"}`))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var company domain.Company
	if err := json.Unmarshal(rec.Body.Bytes(), &company); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if company.ID == "" {
		t.Fatal("expected a generated company id")
	}
	if company.CreatedAt.IsZero() || company.UpdatedAt.IsZero() {
		t.Fatalf("expected creation timestamps, got %+v", company)
	}
	if company.Name != "Acme" {
		t.Fatalf("expected name Acme, got %q", company.Name)
	}
}

func TestGetCompanyNotFoundMapsTo404(t *testing.T) {
	handler := newTestRouter(RouterDeps{
		Companies: &companyRepoStub{getErr: domain.WrapError(domain.ErrCompanyNotFound, "get company", context.Canceled)},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/companies/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestIngestDocumentAccepted(t *testing.T) {
	handler := newTestRouter(RouterDeps{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/companies/c-1/documents", strings.NewReader(`{"title":"t","content":"c"}`))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIngestInvalidInputMapsTo400(t *testing.T) {
	handler := newTestRouter(RouterDeps{
		Ingestor: &ingestorStub{err: domain.WrapError(domain.ErrInvalidInput, "ingest document", context.Canceled)},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/companies/c-1/documents", strings.NewReader(`{"title":"","content":""}`))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProcessReturnsCount(t *testing.T) {
	handler := newTestRouter(RouterDeps{Processor: &processorStub{processed: 3}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/companies/c-1/process", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["processed"] != 3 {
		t.Fatalf("expected processed 3, got %v", payload)
	}
}

func TestScoreCompany(t *testing.T) {
	handler := newTestRouter(RouterDeps{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/companies/c-1/score", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var score domain.RiskScore
	if err := json.Unmarshal(rec.Body.Bytes(), &score); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if score.Score != 44.3 {
		t.Fatalf("expected score 44.3, got %v", score.Score)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	handler := newTestRouter(RouterDeps{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/companies/c-1/search", strings.NewReader(`{"query":""}`))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchReturnsDocuments(t *testing.T) {
	handler := newTestRouter(RouterDeps{
		Retriever: &retrieverStub{docs: []domain.Document{{ID: "d-1", Title: "hit"}}},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/companies/c-1/search", strings.NewReader(`{"query":"lawsuits","limit":5}`))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Documents []domain.Document `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Documents) != 1 || payload.Documents[0].ID != "d-1" {
		t.Fatalf("unexpected documents %+v", payload.Documents)
	}
}

func TestSummaryTemporaryFailureMapsTo503(t *testing.T) {
	handler := newTestRouter(RouterDeps{
		Summarizer: &summarizerStub{err: domain.WrapError(domain.ErrTemporary, "summarize", context.DeadlineExceeded)},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/companies/c-1/summary", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestSentimentRejectsMalformedDates(t *testing.T) {
	handler := newTestRouter(RouterDeps{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/companies/c-1/sentiment?from=yesterday", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestAccessLogUsesInjectedLogger(t *testing.T) {
	recording := &recordingHandler{}
	handler := newTestRouter(RouterDeps{Logger: slog.New(recording)})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if len(recording.records) != 1 {
		t.Fatalf("expected 1 access log record, got %d", len(recording.records))
	}
	record := recording.records[0]
	if record.Message != "http_request" || record.Level != slog.LevelInfo {
		t.Fatalf("unexpected record %q level %v", record.Message, record.Level)
	}
}

func TestRequestIDPropagatedToResponse(t *testing.T) {
	handler := newTestRouter(RouterDeps{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}
