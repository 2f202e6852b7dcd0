package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avoronov/risk-intel/internal/core/domain"
	"github.com/avoronov/risk-intel/internal/core/ports"
	"github.com/avoronov/risk-intel/internal/observability/metrics"
)

const defaultSentimentRangeDays = 30

type Router struct {
	service string
	log     *slog.Logger

	companies ports.CompanyRepository
	documents ports.DocumentRepository
	history   ports.RiskScoreRepository
	sentiment ports.SentimentRepository

	registrar  ports.CompanyRegistrar
	ingestor   ports.DocumentIngestor
	processor  ports.DocumentProcessor
	scorer     ports.RiskScorer
	retriever  ports.EvidenceRetriever
	summarizer ports.SummaryService

	metrics *metrics.HTTPServerMetrics
}

type RouterDeps struct {
	Service string
	Logger  *slog.Logger

	Companies ports.CompanyRepository
	Documents ports.DocumentRepository
	History   ports.RiskScoreRepository
	Sentiment ports.SentimentRepository

	Registrar  ports.CompanyRegistrar
	Ingestor   ports.DocumentIngestor
	Processor  ports.DocumentProcessor
	Scorer     ports.RiskScorer
	Retriever  ports.EvidenceRetriever
	Summarizer ports.SummaryService

	Metrics *metrics.HTTPServerMetrics
}

func NewRouter(deps RouterDeps) *Router {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		service:    deps.Service,
		log:        log,
		companies:  deps.Companies,
		documents:  deps.Documents,
		history:    deps.History,
		sentiment:  deps.Sentiment,
		registrar:  deps.Registrar,
		ingestor:   deps.Ingestor,
		processor:  deps.Processor,
		scorer:     deps.Scorer,
		retriever:  deps.Retriever,
		summarizer: deps.Summarizer,
		metrics:    deps.Metrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)

	mux.HandleFunc("POST /v1/companies", rt.createCompany)
	mux.HandleFunc("GET /v1/companies", rt.listCompanies)
	mux.HandleFunc("GET /v1/companies/{id}", rt.getCompany)

	mux.HandleFunc("POST /v1/companies/{id}/documents", rt.ingestDocument)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)

	mux.HandleFunc("POST /v1/companies/{id}/process", rt.processDocuments)
	mux.HandleFunc("POST /v1/companies/{id}/score", rt.scoreCompany)
	mux.HandleFunc("GET /v1/companies/{id}/risk-history", rt.riskHistory)
	mux.HandleFunc("GET /v1/companies/{id}/sentiment", rt.sentimentRange)

	mux.HandleFunc("POST /v1/companies/{id}/search", rt.searchDocuments)
	mux.HandleFunc("POST /v1/companies/{id}/summary", rt.generateSummary)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(rt.log, handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createCompany(w http.ResponseWriter, r *http.Request) {
	var draft domain.CompanyDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "create company", err))
		return
	}

	company, err := rt.registrar.Register(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

func (rt *Router) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := rt.companies.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if companies == nil {
		companies = []domain.Company{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
}

func (rt *Router) getCompany(w http.ResponseWriter, r *http.Request) {
	company, err := rt.companies.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (rt *Router) ingestDocument(w http.ResponseWriter, r *http.Request) {
	var draft domain.DocumentDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "ingest document", err))
		return
	}

	doc, err := rt.ingestor.Ingest(r.Context(), r.PathValue("id"), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.documents.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) processDocuments(w http.ResponseWriter, r *http.Request) {
	processed, err := rt.processor.ProcessPending(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"processed": processed})
}

func (rt *Router) scoreCompany(w http.ResponseWriter, r *http.Request) {
	score, err := rt.scorer.ComputeAndPersist(r.Context(), r.PathValue("id"))
	if rt.metrics != nil {
		composite := 0.0
		if score != nil {
			composite = score.Score
		}
		rt.metrics.RecordScoreRequest(rt.service, "api", composite, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (rt *Router) riskHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	scores, err := rt.history.ListByCompany(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if scores == nil {
		scores = []domain.RiskScore{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": scores})
}

func (rt *Router) sentimentRange(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseSentimentRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "sentiment range", err))
		return
	}

	points, err := rt.sentiment.ListRange(r.Context(), r.PathValue("id"), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	if points == nil {
		points = []domain.SentimentPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

func (rt *Router) searchDocuments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "search documents", err))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	docs, err := rt.retriever.Retrieve(r.Context(), r.PathValue("id"), req.Query, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(rt.service, "search", len(docs), false, time.Since(start))
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) generateSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.summarizer.Summarize(r.Context(), r.PathValue("id"))
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordSummaryRequest(rt.service, "error")
		}
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSummaryRequest(rt.service, "success")
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func parseSentimentRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	to := now.Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -defaultSentimentRangeDays)

	if fromRaw != "" {
		parsed, err := time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed.UTC()
	}
	if toRaw != "" {
		parsed, err := time.Parse("2006-01-02", toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed.UTC()
	}
	return from, to, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
