package httpinfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/avoronov/risk-intel/internal/infrastructure/resilience"
)

// Client talks to the NLP inference service that hosts the sentiment
// classifier and the named-entity recognizer. Requests pass through a shared
// rate limiter so the two model endpoints cannot saturate the service
// together.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

func New(baseURL string, requestsPerSecond float64, executor *resilience.Executor) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond)+1),
		executor:   executor,
	}
}

// Classifier implements sentiment classification over the inference service.
type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

func (c *Classifier) Classify(ctx context.Context, text string) (string, float64, error) {
	var response struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	err := c.client.call(ctx, "nlp.sentiment", "/v1/sentiment", map[string]any{"text": text}, &response)
	if err != nil {
		return "", 0, err
	}
	return strings.ToLower(strings.TrimSpace(response.Label)), response.Confidence, nil
}

// Recognizer implements named-entity recognition over the inference service.
type Recognizer struct {
	client *Client
}

func NewRecognizer(client *Client) *Recognizer {
	return &Recognizer{client: client}
}

func (r *Recognizer) Recognize(ctx context.Context, text string) (map[string][]string, error) {
	var response struct {
		Entities map[string][]string `json:"entities"`
	}
	err := r.client.call(ctx, "nlp.entities", "/v1/entities", map[string]any{"text": text}, &response)
	if err != nil {
		return nil, err
	}
	if response.Entities == nil {
		return map[string][]string{}, nil
	}
	return response.Entities, nil
}

func (c *Client) call(ctx context.Context, operation, path string, payload, out any) error {
	fn := func(callCtx context.Context) error {
		if err := c.limiter.Wait(callCtx); err != nil {
			return err
		}
		return c.postJSON(callCtx, operation, path, payload, out)
	}
	if c.executor != nil {
		return c.executor.Execute(ctx, operation, fn, classifyInferenceError)
	}
	return fn(ctx)
}

func (c *Client) postJSON(ctx context.Context, operation, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			operation:  operation,
			statusCode: resp.StatusCode,
			status:     resp.Status,
			body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
