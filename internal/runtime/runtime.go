// Package runtime assembles the agent process: it constructs the memory
// store, overlay, LLM facade, tool registry, and shared state, wires the
// impulse producers (watcher, signals, cron) into the two-lane scheduler,
// and drives the event loop until a shutdown directive lands.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/criticalinsight/sly/internal/bus"
	"github.com/criticalinsight/sly/internal/config"
	"github.com/criticalinsight/sly/internal/cortex"
	"github.com/criticalinsight/sly/internal/embed"
	"github.com/criticalinsight/sly/internal/interpreter"
	"github.com/criticalinsight/sly/internal/mcp"
	"github.com/criticalinsight/sly/internal/memory"
	"github.com/criticalinsight/sly/internal/overlay"
	"github.com/criticalinsight/sly/internal/providers"
	"github.com/criticalinsight/sly/internal/telemetry"
)

// Runtime owns every long-lived resource of one agent process.
type Runtime struct {
	cfg       *config.Config
	root      string
	store     *memory.Store
	overlay   *overlay.FS
	tools     *mcp.Registry
	scheduler *bus.Scheduler
	state     *interpreter.State

	telemetryShutdown func(context.Context) error
}

// New constructs the full runtime for the workspace rooted at root. Fatal
// resource failures (store unavailable, missing API key) abort here, before
// the loop ever starts.
func New(ctx context.Context, root string, cfg *config.Config) (*Runtime, error) {
	telemetryShutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	embedder := embed.New()
	slog.Info("embed.engine", "device", embedder.Device())

	storeDir := filepath.Join(root, ".sly", cfg.Memory.StoreDir)
	store, err := memory.Open(ctx, storeDir, embedder)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}

	ov, err := overlay.New(root, "session_"+uuid.NewString(), true)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create overlay: %w", err)
	}

	provider, err := providers.ForModel(cfg.PrimaryModel)
	if err != nil {
		store.Close()
		return nil, err
	}
	facade := cortex.New(provider, cfg.PrimaryModel, cfg.FallbackModel)

	tools := mcp.NewRegistry(cfg.MCPServers)
	if err := tools.Start(ctx); err != nil {
		slog.Warn("mcp.start_degraded", "error", err)
	}

	state := &interpreter.State{
		Memory:     store,
		Overlay:    ov,
		Tools:      tools,
		Cortex:     facade,
		MaxLoops:   cfg.MaxAutonomousLoops,
		Autonomous: cfg.AutonomousMode,
	}
	registry := interpreter.NewRegistry(state)
	scheduler := bus.NewScheduler(registry)
	state.Submit = scheduler.Submit

	return &Runtime{
		cfg:               cfg,
		root:              root,
		store:             store,
		overlay:           ov,
		tools:             tools,
		scheduler:         scheduler,
		state:             state,
		telemetryShutdown: telemetryShutdown,
	}, nil
}

// Submit enqueues an impulse on the scheduler, blocking under backpressure.
func (r *Runtime) Submit(ctx context.Context, imp bus.Impulse) error {
	return r.scheduler.Submit(ctx, imp)
}

// Run starts the impulse producers and drains the scheduler until a
// shutdown directive is dispatched or ctx is cancelled.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopSignals := r.watchSignals(ctx)
	defer stopSignals()

	watcher, err := r.startWatcher(ctx)
	if err != nil {
		slog.Warn("watcher.unavailable", "error", err)
	} else {
		defer watcher.Close()
	}

	if r.cfg.Cron.MaintenanceSchedule != "" {
		go r.runMaintenanceTrigger(ctx, r.cfg.Cron.MaintenanceSchedule)
	}

	if err := r.Submit(ctx, bus.Impulse{Kind: bus.ImpulseBootstrapSkills}); err != nil {
		return err
	}

	slog.Info("runtime.online",
		"workspace", r.root,
		"autonomous", r.cfg.AutonomousMode,
		"max_loops", r.cfg.MaxAutonomousLoops)
	return r.scheduler.Run(ctx)
}

// Close releases every resource the runtime owns. The overlay is left in
// place — uncommitted work survives for inspection; Rollback is explicit.
func (r *Runtime) Close(ctx context.Context) error {
	r.tools.Stop()
	if err := r.telemetryShutdown(ctx); err != nil {
		slog.Warn("telemetry.shutdown_failed", "error", err)
	}
	return r.store.Close()
}
