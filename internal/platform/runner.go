package platform

import (
	"context"
	"time"
)

// DefaultTickInterval is the reference generation cadence.
const DefaultTickInterval = 400 * time.Millisecond

// Runner drives a controller from a wall-clock ticker. Each tick runs
// one full generation step to completion; pausing the controller stops
// work without interrupting an in-flight step, and cancellation is
// only honored between ticks.
type Runner struct {
	Controller *Controller
	Interval   time.Duration
}

// Run steps the controller until the context is cancelled or the
// controller leaves the Running/Paused states.
func (r Runner) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if r.Controller.State() == StateIdle {
				return nil
			}
			if err := r.Controller.Step(ctx); err != nil {
				return err
			}
		}
	}
}
