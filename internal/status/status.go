package status

import (
	"fmt"

	"github.com/samvad-hq/inference-console/pkg/service"
)

// Kind is the status vocabulary shown to the user.
type Kind string

const (
	KindChecking Kind = "checking"
	KindHealthy  Kind = "healthy"
	KindOffline  Kind = "offline"
	KindSending  Kind = "sending"
	KindComplete Kind = "complete"
	KindFailed   Kind = "failed"
)

// Message is a single status line. OK selects the success or failure styling.
type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
	OK   bool   `json:"ok"`
}

// Checking is shown while a health request is outstanding.
func Checking() Message {
	return Message{Kind: KindChecking, Text: "Checking backend...", OK: true}
}

// Sending is shown while an inference request is outstanding.
func Sending() Message {
	return Message{Kind: KindSending, Text: "Sending sample frame...", OK: true}
}

// ForHealth maps a health outcome to healthy or offline.
func ForHealth(out service.HealthOutcome) Message {
	if !out.OK {
		return Message{Kind: KindOffline, Text: "Backend status: offline", OK: false}
	}
	return Message{
		Kind: KindHealthy,
		Text: fmt.Sprintf("Backend status: %s @ %s", out.Health.Status, out.Health.Timestamp),
		OK:   true,
	}
}

// ForInference maps an inference outcome to complete or failed.
func ForInference(out service.InferenceOutcome) Message {
	if !out.OK {
		return Message{Kind: KindFailed, Text: "Inference failed - check backend", OK: false}
	}
	return Message{Kind: KindComplete, Text: "Inference complete", OK: true}
}
