package reporters

import (
	"time"

	"github.com/google/uuid"
)

// Event is the payload reported downstream for each completed service call.
type Event struct {
	ID          string    `json:"id"`
	Operation   string    `json:"operation"`
	Status      string    `json:"status"`
	OK          bool      `json:"ok"`
	Message     string    `json:"message"`
	ServiceURL  string    `json:"service_url"`
	ElapsedMs   int64     `json:"elapsed_ms"`
	Payload     any       `json:"payload,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewEvent constructs an Event for the given operation outcome.
func NewEvent(operation, status string, ok bool, message string) Event {
	return Event{
		ID:          uuid.NewString(),
		Operation:   operation,
		Status:      status,
		OK:          ok,
		Message:     message,
		CompletedAt: time.Now().UTC(),
	}
}
