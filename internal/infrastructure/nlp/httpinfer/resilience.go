package httpinfer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/avoronov/risk-intel/internal/infrastructure/resilience"
)

type statusError struct {
	operation  string
	statusCode int
	status     string
	body       string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("inference %s status: %s", e.operation, e.status)
	}
	return fmt.Sprintf("inference %s status: %s: %s", e.operation, e.status, e.body)
}

func classifyInferenceError(err error) resilience.Outcome {
	if err == nil {
		return resilience.Outcome{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Outcome{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Outcome{Retryable: true, CountsAgainst: true}
	}

	var httpErr *statusError
	if errors.As(err, &httpErr) {
		switch httpErr.statusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.Outcome{Retryable: true, CountsAgainst: true}
		default:
			return resilience.Outcome{}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Outcome{Retryable: true, CountsAgainst: true}
	}
	return resilience.Outcome{CountsAgainst: true}
}
