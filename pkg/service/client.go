package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/inference-console/internal/domain"
	"github.com/samvad-hq/inference-console/pkg/httpclient"
)

const (
	healthPath  = "/api/health"
	inferPath   = "/api/infer"
	historyPath = "/api/history"

	requestIDHeader = "X-Request-ID"
	maxErrorSnippet = 256
)

// Client talks to the inference service. It holds no mutable state, so one
// Client can serve any number of concurrent calls.
type Client struct {
	baseURL string
	http    httpclient.Client
}

// NewClient builds a Client for baseURL. A nil http client falls back to resty with timeout.
func NewClient(baseURL string, client httpclient.Client, timeout time.Duration) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("service base url is empty")
	}
	if client == nil {
		client = httpclient.NewRestyClient(timeout)
	}
	return &Client{baseURL: base, http: client}, nil
}

// BaseURL returns the normalized base address.
func (c *Client) BaseURL() string { return c.baseURL }

// CheckHealth issues GET /api/health.
func (c *Client) CheckHealth(ctx context.Context) HealthOutcome {
	start := time.Now()
	var health *domain.HealthStatus
	err := c.getJSON(ctx, healthPath, &health)
	if err == nil && health == nil {
		err = fmt.Errorf("%w: empty health body", ErrMalformedResponse)
	}
	if err != nil {
		return HealthOutcome{Elapsed: time.Since(start), Err: fmt.Errorf("check health: %w", err)}
	}
	return HealthOutcome{OK: true, Health: *health, Elapsed: time.Since(start)}
}

// RunInference POSTs req to /api/infer.
func (c *Client) RunInference(ctx context.Context, req domain.InferenceRequest) InferenceOutcome {
	start := time.Now()
	out := InferenceOutcome{Request: req}

	resp, err := c.http.PostJSON(ctx, c.baseURL+inferPath, req, requestHeaders())
	if err == nil {
		var result *domain.InferenceResult
		err = decode(resp, &result)
		if err == nil && (result == nil || result.Prediction == nil) {
			err = fmt.Errorf("%w: prediction missing", ErrMalformedResponse)
		}
		if err == nil {
			out.OK = true
			out.Result = *result
		}
	}
	out.Elapsed = time.Since(start)
	if err != nil {
		out.Err = fmt.Errorf("run inference: %w", err)
	}
	return out
}

// History issues GET /api/history.
func (c *Client) History(ctx context.Context) HistoryOutcome {
	start := time.Now()
	var history *domain.History
	err := c.getJSON(ctx, historyPath, &history)
	if err == nil && history == nil {
		err = fmt.Errorf("%w: empty history body", ErrMalformedResponse)
	}
	if err != nil {
		return HistoryOutcome{Elapsed: time.Since(start), Err: fmt.Errorf("fetch history: %w", err)}
	}
	return HistoryOutcome{OK: true, Entries: history.Entries, Elapsed: time.Since(start)}
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	resp, err := c.http.Get(ctx, c.baseURL+path, requestHeaders())
	if err != nil {
		return err
	}
	return decode(resp, dst)
}

// decode rejects non-2xx responses and unmarshals the body into dst.
func decode(resp httpclient.Response, dst any) error {
	if resp == nil {
		return fmt.Errorf("%w: no response", ErrMalformedResponse)
	}
	if !httpclient.IsSuccess(resp) {
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode(), bodySnippet(resp.Body()))
	}
	if err := json.Unmarshal(resp.Body(), dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func requestHeaders() map[string]string {
	return map[string]string{
		requestIDHeader: uuid.NewString(),
		"Accept":        "application/json",
	}
}

func bodySnippet(body []byte) string {
	if len(body) > maxErrorSnippet {
		body = body[:maxErrorSnippet]
	}
	return strings.TrimSpace(string(body))
}
