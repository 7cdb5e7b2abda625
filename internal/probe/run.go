package probe

import (
	"context"
	"fmt"
)

// Run executes p.Check under ctx. It never panics and never outlives ctx:
// a panicking check becomes Indeterminate, and a check that ignores its
// context is abandoned once ctx ends.
func Run(ctx context.Context, p Probe) Outcome {
	if p.Check == nil {
		return Indeterminate(ReasonPanic, "probe has no check", "")
	}
	if ctx.Err() != nil {
		return interrupted(ctx)
	}

	done := make(chan Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Indeterminate(ReasonPanic, fmt.Sprintf("check panicked: %v", r), "")
			}
		}()
		done <- p.Check(ctx)
	}()

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		// Prefer a result that raced the deadline.
		select {
		case out := <-done:
			return out
		default:
			return interrupted(ctx)
		}
	}
}
