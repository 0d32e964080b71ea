// Package refresh drives the fetch-project-render pipeline on a fixed interval.
package refresh

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultInterval is the time between cycle starts.
const DefaultInterval = 30 * time.Second

// State is the loop's position in its two-state cycle.
type State int32

const (
	StateIdle State = iota
	StateFetching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	default:
		return "unknown"
	}
}

// CycleFunc runs one fetch-project-render pass. A returned error is logged
// and the loop carries on.
type CycleFunc func(ctx context.Context) error

// Loop runs a CycleFunc immediately and then on every tick. Cycles never
// overlap: a cycle that runs past the interval delays the next one.
type Loop struct {
	interval time.Duration
	cycle    CycleFunc
	logger   *slog.Logger

	state   atomic.Int32
	cycles  atomic.Uint64
	failed  atomic.Uint64
	running atomic.Bool
}

// New creates a loop. A non-positive interval falls back to DefaultInterval.
func New(interval time.Duration, cycle CycleFunc, logger *slog.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		interval: interval,
		cycle:    cycle,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, then returns ctx.Err(). Cancellation
// also reaches an in-flight cycle through its context. Run may only be
// called once at a time.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		panic("refresh: Loop.Run called concurrently")
	}
	defer l.running.Store(false)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Both may be ready at once; don't start a cycle for a dead session.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.runCycle(ctx)
		}
	}
}

func (l *Loop) runCycle(ctx context.Context) {
	l.state.Store(int32(StateFetching))
	defer l.state.Store(int32(StateIdle))

	n := l.cycles.Add(1)
	if err := l.cycle(ctx); err != nil {
		l.failed.Add(1)
		if ctx.Err() == nil {
			l.logger.Warn("refresh cycle failed",
				slog.Uint64("cycle", n),
				slog.String("error", err.Error()))
		}
	}
}

// State returns the current state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Cycles returns how many cycles have started.
func (l *Loop) Cycles() uint64 {
	return l.cycles.Load()
}

// Failures returns how many cycles ended in error.
func (l *Loop) Failures() uint64 {
	return l.failed.Load()
}

// Interval returns the time between cycle starts.
func (l *Loop) Interval() time.Duration {
	return l.interval
}
