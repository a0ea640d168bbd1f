package status

import (
	"fmt"
	"sync"

	"github.com/samvad-hq/inference-console/pkg/service"
)

// Prediction holds the display text of the last successful inference.
type Prediction struct {
	Label  string `json:"label"`
	Score  string `json:"score"`
	Sample string `json:"sample"`
}

// Snapshot is the full display state at one point in time.
type Snapshot struct {
	Status     Message     `json:"status"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Seq        uint64      `json:"seq"`
}

// Renderer draws snapshots. It is called with the board lock held, so
// snapshots arrive in the same order they were applied.
type Renderer interface {
	Render(Snapshot)
}

// Board is the shared display state. Whatever is applied last wins; there is
// no ordering by issue time.
type Board struct {
	mu       sync.Mutex
	snap     Snapshot
	renderer Renderer
}

// NewBoard creates a board that forwards every update to r (may be nil).
func NewBoard(r Renderer) *Board {
	return &Board{renderer: r}
}

// Snapshot returns a copy of the current state.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copyLocked()
}

// SetStatus overwrites the status line.
func (b *Board) SetStatus(msg Message) Snapshot {
	return b.update(func(s *Snapshot) { s.Status = msg })
}

// ApplyHealth records a completed health check.
func (b *Board) ApplyHealth(out service.HealthOutcome) Snapshot {
	return b.SetStatus(ForHealth(out))
}

// ApplyInference records a completed inference. Prediction fields only change on success.
func (b *Board) ApplyInference(out service.InferenceOutcome) Snapshot {
	return b.update(func(s *Snapshot) {
		if out.OK && out.Result.Prediction != nil {
			s.Prediction = &Prediction{
				Label:  fmt.Sprintf("Label %s", out.Result.Prediction.Label),
				Score:  fmt.Sprintf("Score: %s", out.Result.Prediction.Score),
				Sample: fmt.Sprintf("Sample: %s", out.Result.Sample),
			}
		}
		s.Status = ForInference(out)
	})
}

func (b *Board) update(fn func(*Snapshot)) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	fn(&b.snap)
	b.snap.Seq++
	snap := b.copyLocked()
	if b.renderer != nil {
		b.renderer.Render(snap)
	}
	return snap
}

func (b *Board) copyLocked() Snapshot {
	snap := b.snap
	if b.snap.Prediction != nil {
		p := *b.snap.Prediction
		snap.Prediction = &p
	}
	return snap
}
