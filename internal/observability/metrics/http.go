package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	retrievalRequestsTotal *prometheus.CounterVec
	retrievalFallbackTotal *prometheus.CounterVec
	retrievalHitTotal      *prometheus.CounterVec
	retrievedDocuments     *prometheus.HistogramVec
	retrievalDuration      *prometheus.HistogramVec
	scoreRequestsTotal     *prometheus.CounterVec
	compositeScore         *prometheus.HistogramVec
	summaryRequestsTotal   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ri",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ri",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ri",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ri",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total completed evidence retrieval requests.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ri",
			Subsystem: "retrieval",
			Name:      "fallback_total",
			Help:      "Total retrievals that fell back to recency ordering.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ri",
			Subsystem: "retrieval",
			Name:      "hit_total",
			Help:      "Total retrievals that returned at least one document.",
		},
		[]string{"service", "endpoint"},
	)
	retrievedDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ri",
			Subsystem: "retrieval",
			Name:      "documents",
			Help:      "Distribution of documents returned per retrieval.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ri",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Evidence retrieval duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	scoreRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ri",
			Subsystem: "scoring",
			Name:      "requests_total",
			Help:      "Total risk score computations by trigger.",
		},
		[]string{"service", "trigger", "status"},
	)
	compositeScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ri",
			Subsystem: "scoring",
			Name:      "composite_score",
			Help:      "Distribution of computed composite risk scores.",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"service"},
	)
	summaryRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ri",
			Subsystem: "summary",
			Name:      "requests_total",
			Help:      "Total executive summary generations by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		retrievalRequestsTotal,
		retrievalFallbackTotal,
		retrievalHitTotal,
		retrievedDocuments,
		retrievalDuration,
		scoreRequestsTotal,
		compositeScore,
		summaryRequestsTotal,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		retrievalRequestsTotal: retrievalRequestsTotal,
		retrievalFallbackTotal: retrievalFallbackTotal,
		retrievalHitTotal:      retrievalHitTotal,
		retrievedDocuments:     retrievedDocuments,
		retrievalDuration:      retrievalDuration,
		scoreRequestsTotal:     scoreRequestsTotal,
		compositeScore:         compositeScore,
		summaryRequestsTotal:   summaryRequestsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses resource identifiers so the path label stays low
// cardinality.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/companies/"):
		rest := strings.TrimPrefix(path, "/v1/companies/")
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/v1/companies/{company_id}/" + rest[idx+1:]
		}
		return "/v1/companies/{company_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordRetrieval(service, endpoint string, documentCount int, fallback bool, duration time.Duration) {
	m.retrievalRequestsTotal.WithLabelValues(service, endpoint).Inc()
	m.retrievedDocuments.WithLabelValues(service, endpoint).Observe(float64(documentCount))
	m.retrievalDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if fallback {
		m.retrievalFallbackTotal.WithLabelValues(service, endpoint).Inc()
	}
	if documentCount > 0 {
		m.retrievalHitTotal.WithLabelValues(service, endpoint).Inc()
	}
}

func (m *HTTPServerMetrics) RecordScoreRequest(service, trigger string, composite float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.scoreRequestsTotal.WithLabelValues(service, trigger, status).Inc()
	if err == nil {
		m.compositeScore.WithLabelValues(service).Observe(composite)
	}
}

func (m *HTTPServerMetrics) RecordSummaryRequest(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.summaryRequestsTotal.WithLabelValues(service, outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
