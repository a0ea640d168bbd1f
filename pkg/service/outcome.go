package service

import (
	"errors"
	"time"

	"github.com/samvad-hq/inference-console/internal/domain"
)

var (
	// ErrUnexpectedStatus marks a non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrMalformedResponse marks a body that could not be decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed response body")
)

// Operation names used in logs, metrics and reports.
const (
	OpHealth    = "health"
	OpInference = "infer"
	OpHistory   = "history"
)

// HealthOutcome is the result of a health check. Err is kept for logging only;
// callers branch on OK.
type HealthOutcome struct {
	OK      bool
	Health  domain.HealthStatus
	Elapsed time.Duration
	Err     error
}

// InferenceOutcome is the result of an inference request. Result is zero on failure.
type InferenceOutcome struct {
	OK      bool
	Request domain.InferenceRequest
	Result  domain.InferenceResult
	Elapsed time.Duration
	Err     error
}

// HistoryOutcome is the result of a history lookup.
type HistoryOutcome struct {
	OK      bool
	Entries []domain.InferenceResult
	Elapsed time.Duration
	Err     error
}
