package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/samvad-hq/inference-console/internal/domain"
	"github.com/samvad-hq/inference-console/internal/status"
)

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
)

// Terminal writes board snapshots as plain text lines.
type Terminal struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewTerminal returns a renderer writing to w. Color wraps status lines in ANSI codes.
func NewTerminal(w io.Writer, color bool) *Terminal {
	return &Terminal{w: w, color: color}
}

// Render prints the status line, then the prediction fields when an inference has completed.
func (t *Terminal) Render(s status.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.w, t.paint(s.Status))
	if s.Status.Kind == status.KindComplete && s.Prediction != nil {
		fmt.Fprintf(t.w, "  %s\n  %s\n  %s\n", s.Prediction.Label, s.Prediction.Score, s.Prediction.Sample)
	}
}

// RenderHistory prints recent inference results, newest first as the service returns them.
func (t *Terminal) RenderHistory(entries []domain.InferenceResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(entries) == 0 {
		fmt.Fprintln(t.w, "History: empty")
		return
	}
	fmt.Fprintf(t.w, "History (%d):\n", len(entries))
	for _, e := range entries {
		id, label, score := "-", "-", "-"
		if !e.ID.IsZero() {
			id = e.ID.String()
		}
		if e.Prediction != nil {
			label = e.Prediction.Label.String()
			score = e.Prediction.Score.String()
		}
		fmt.Fprintf(t.w, "  #%s %s label=%s score=%s\n", id, e.Sample, label, score)
	}
}

// Println writes a free-form line, used for help and command errors.
func (t *Terminal) Println(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, line)
}

func (t *Terminal) paint(msg status.Message) string {
	if !t.color {
		return msg.Text
	}
	if msg.OK {
		return ansiGreen + msg.Text + ansiReset
	}
	return ansiRed + msg.Text + ansiReset
}
