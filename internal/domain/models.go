package domain

import (
	"encoding/json"
	"strconv"
)

// DefaultSample is the placeholder frame name sent by the demo inference action.
const DefaultSample = "demo-frame"

// Scalar keeps a JSON value exactly as the service sent it. Strings render
// unquoted, anything else renders as its raw JSON text.
type Scalar struct {
	raw json.RawMessage
}

// NewScalar encodes v into a Scalar.
func NewScalar(v any) Scalar {
	raw, err := json.Marshal(v)
	if err != nil {
		return Scalar{}
	}
	return Scalar{raw: raw}
}

// UnmarshalJSON stores the raw token without interpreting it.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	s.raw = append(s.raw[:0], b...)
	return nil
}

// MarshalJSON writes the original token back out.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

// IsZero reports whether the field was absent from the payload.
func (s Scalar) IsZero() bool { return len(s.raw) == 0 }

// Raw returns the untouched JSON token.
func (s Scalar) Raw() []byte { return s.raw }

// Float64 returns the value as a number. Numeric strings are accepted; any
// other token reports false.
func (s Scalar) Float64() (float64, bool) {
	str := s.String()
	if str == "" || str == "null" {
		return 0, false
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String renders the value for display.
func (s Scalar) String() string {
	if len(s.raw) == 0 {
		return ""
	}
	if s.raw[0] == '"' {
		var str string
		if err := json.Unmarshal(s.raw, &str); err == nil {
			return str
		}
	}
	return string(s.raw)
}

// HealthStatus is the body of GET /api/health. Extra fields are kept as raw
// tokens so an unexpected type never fails the whole body.
type HealthStatus struct {
	Status    Scalar `json:"status"`
	Timestamp Scalar `json:"timestamp"`
	UptimeS   Scalar `json:"uptime_s,omitzero"`
}

// InferenceRequest is the body of POST /api/infer.
type InferenceRequest struct {
	Sample string `json:"sample"`
}

// Prediction holds the model output. Score keeps its textual JSON form.
type Prediction struct {
	Label Scalar      `json:"label"`
	Score json.Number `json:"score"`
}

// InferenceResult is the body returned by POST /api/infer. ID, LatencyMs and
// Timestamp are informational and decoded leniently.
type InferenceResult struct {
	ID         Scalar      `json:"id,omitzero"`
	Sample     string      `json:"sample"`
	Prediction *Prediction `json:"prediction"`
	LatencyMs  Scalar      `json:"latency_ms,omitzero"`
	Timestamp  Scalar      `json:"timestamp,omitzero"`
}

// History is the body of GET /api/history.
type History struct {
	Entries []InferenceResult `json:"history"`
}
