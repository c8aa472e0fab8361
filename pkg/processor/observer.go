package processor

import (
	"context"
	"time"
)

// Stats describes one render pass.
type Stats struct {
	Nodes    int            // schema nodes visited
	Elements int            // output nodes constructed
	Skipped  int            // nodes skipped by a directive
	FanOuts  int            // nodes replaced by a fan-out
	Duration time.Duration  // wall time of the pass
	Applied  map[string]int // directive name -> times applied
}

// Observer is notified when a render pass finishes.
type Observer interface {
	ObserveRender(ctx context.Context, stats Stats, err error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, stats Stats, err error)

// ObserveRender implements Observer.
func (f ObserverFunc) ObserveRender(ctx context.Context, stats Stats, err error) {
	f(ctx, stats, err)
}
