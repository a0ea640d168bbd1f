package reporters

import (
	"context"
	"errors"
	"fmt"
)

// Fanout dispatches events to all configured reporters.
type Fanout struct {
	reporters []Reporter
}

// NewFanout builds a dispatcher that fans out events across reporters.
func NewFanout(reps []Reporter) *Fanout {
	cp := make([]Reporter, 0, len(reps))
	for _, r := range reps {
		if r == nil {
			continue
		}
		cp = append(cp, r)
	}
	return &Fanout{reporters: cp}
}

// Report forwards the event to every registered reporter.
// It returns the number of reporters that successfully handled the event.
func (f *Fanout) Report(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.reporters) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, r := range f.reporters {
		if err := r.Report(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s reporter[%s]: %w", r.Type(), r.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active reporters.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.reporters)
}

// Close releases reporters that hold client connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, r := range f.reporters {
		if c, ok := r.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s reporter[%s]: %w", r.Type(), r.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
