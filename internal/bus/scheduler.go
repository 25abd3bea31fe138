package bus

import (
	"context"
	"log/slog"
)

// Lane identifies one of the scheduler's two bounded queues.
type Lane int

const (
	LanePriority Lane = iota
	LaneBackground
)

const (
	priorityCapacity   = 100
	backgroundCapacity = 1000
)

// Dispatcher drains a list of directives produced from one impulse.
// Implemented by the interpreter; kept as an interface here so the
// scheduler has no compile-time dependency on the handler registry.
type Dispatcher interface {
	Dispatch(ctx context.Context, d Directive) error
}

// Scheduler is the two-lane, priority-preemptive event loop. Impulses are
// submitted via Submit; Run drains both lanes with strict priority bias
// until the context is cancelled or a shutdown directive is dispatched.
type Scheduler struct {
	priority   chan Impulse
	background chan Impulse
	dispatcher Dispatcher
}

// NewScheduler creates a Scheduler that dispatches through d.
func NewScheduler(d Dispatcher) *Scheduler {
	return &Scheduler{
		priority:   make(chan Impulse, priorityCapacity),
		background: make(chan Impulse, backgroundCapacity),
		dispatcher: d,
	}
}

// Submit enqueues an impulse on the lane its kind belongs to. Submit blocks
// when the target lane is full: backpressure, never drop.
func (s *Scheduler) Submit(ctx context.Context, imp Impulse) error {
	var ch chan Impulse
	if imp.Lane() == LanePriority {
		ch = s.priority
	} else {
		ch = s.background
	}
	select {
	case ch <- imp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run polls both lanes in a single selection, processing one impulse's full
// directive list to completion before selecting the next. If both lanes
// have pending items the priority lane strictly wins; Run never interleaves
// background work ahead of a pending priority impulse.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		imp, ok := s.next(ctx)
		if !ok {
			return ctx.Err()
		}

		shutdown, err := s.drain(ctx, imp)
		if err != nil {
			slog.Error("bus.drain_error", "impulse", imp.Kind, "error", err)
		}
		if shutdown {
			return nil
		}
	}
}

// next implements the strict-bias poll: it checks the priority lane first
// without blocking, and only waits on both lanes together when the priority
// lane is currently empty.
func (s *Scheduler) next(ctx context.Context) (Impulse, bool) {
	select {
	case imp := <-s.priority:
		return imp, true
	default:
	}

	select {
	case imp := <-s.priority:
		return imp, true
	case imp := <-s.background:
		return imp, true
	case <-ctx.Done():
		return Impulse{}, false
	}
}

// drain dispatches every directive produced by imp, in order, reporting
// whether a shutdown directive was among them.
func (s *Scheduler) drain(ctx context.Context, imp Impulse) (shutdown bool, err error) {
	if imp.Kind == ImpulseSwarmSignal {
		slog.Info("bus.swarm_signal", "worker", imp.WorkerID, "status", imp.Status)
	}
	for _, d := range imp.ToDirectives() {
		if dispatchErr := s.dispatcher.Dispatch(ctx, d); dispatchErr != nil {
			err = dispatchErr
		}
		if d.Type == "shutdown" {
			shutdown = true
		}
	}
	return shutdown, err
}
