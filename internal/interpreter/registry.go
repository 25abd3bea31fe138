package interpreter

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/criticalinsight/sly/internal/bus"
	"github.com/criticalinsight/sly/pkg/protocol"
)

var tracer = otel.Tracer("github.com/criticalinsight/sly/internal/interpreter")

// Handler processes one directive's payload against the shared state.
type Handler func(ctx context.Context, payload map[string]any, state *State) error

// Registry maps directive type names to handlers, registered once at
// startup and read-only thereafter.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	state    *State
}

// NewRegistry creates a Registry bound to state, with the core handlers
// for the closed directive set already registered.
func NewRegistry(state *State) *Registry {
	r := &Registry{handlers: make(map[string]Handler), state: state}
	r.registerCoreHandlers()
	return r
}

// Register adds or replaces the handler for a directive type name.
func (r *Registry) Register(typeName string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[typeName] = h
}

func (r *Registry) registerCoreHandlers() {
	r.Register("initiate_session", handleInitiateSession)
	r.Register("think", handleThink)
	r.Register("observe", handleObserve)
	r.Register("ingest_file", handleIngestFile)
	r.Register("fs_batch", handleFsBatch)
	r.Register("bootstrap_skills", handleBootstrapSkills)
	r.Register("shutdown", handleShutdown)
	r.Register("maintenance", handleMaintenance)
	r.Register("error", handleError)
}

// Dispatch looks up the handler for d.Type and invokes it, recording an
// EXEC:<type> event first and an ERROR:<type> event if the handler fails.
// Implements bus.Dispatcher.
func (r *Registry) Dispatch(ctx context.Context, d bus.Directive) error {
	r.mu.RLock()
	h, ok := r.handlers[d.Type]
	r.mu.RUnlock()
	if !ok {
		err := fmt.Errorf("no handler registered for directive: %s", d.Type)
		_ = r.state.Memory.RecordEvent(ctx, protocol.OpErrorPrefix+d.Type, map[string]any{"error": err.Error()})
		return err
	}

	if err := r.state.Memory.RecordEvent(ctx, protocol.OpExecPrefix+d.Type, d.Payload); err != nil {
		return fmt.Errorf("record EXEC event: %w", err)
	}

	ctx, span := tracer.Start(ctx, "directive."+d.Type)
	defer span.End()

	if err := r.dispatchSafe(ctx, h, d); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		_ = r.state.Memory.RecordEvent(ctx, protocol.OpErrorPrefix+d.Type, map[string]any{"error": err.Error()})
		return err
	}
	return nil
}

// dispatchSafe invokes h, converting a handler panic into an error so a
// single bad directive never takes down the event loop.
func (r *Registry) dispatchSafe(ctx context.Context, h Handler, d bus.Directive) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic for %s: %v", d.Type, rec)
		}
	}()
	return h(ctx, d.Payload, r.state)
}
