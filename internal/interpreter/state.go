// Package interpreter implements the Directive Interpreter: a registry of
// named handlers dispatched from the bus, each wrapped in the
// EXEC:<type>/ERROR:<type> event-recording contract.
package interpreter

import (
	"context"

	"github.com/criticalinsight/sly/internal/bus"
	"github.com/criticalinsight/sly/internal/cortex"
	"github.com/criticalinsight/sly/internal/mcp"
	"github.com/criticalinsight/sly/internal/memory"
	"github.com/criticalinsight/sly/internal/overlay"
)

// State is the single shared handle every handler reads from: one memory
// store, one overlay, one tool registry, one LLM facade. No handler may
// mutate the handle itself — only the resources it references.
type State struct {
	Memory   *memory.Store
	Overlay  *overlay.FS
	Tools    *mcp.Registry
	Cortex   *cortex.Facade
	MaxLoops int

	// Autonomous, when set, makes a successful step re-enqueue its own
	// ThinkStep impulse so the session keeps advancing without user input.
	Autonomous bool

	// Submit feeds a follow-up impulse back into the scheduler. Stepping is
	// externally driven: a handler never recurses into another step, it
	// persists the session and enqueues the impulse that will re-enter it.
	Submit func(ctx context.Context, imp bus.Impulse) error
}
