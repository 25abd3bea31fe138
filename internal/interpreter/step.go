package interpreter

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/criticalinsight/sly/internal/action"
	"github.com/criticalinsight/sly/internal/cortex"
	"github.com/criticalinsight/sly/internal/session"
)

// graphSchemaHint is appended to the first step's context so the model can
// ground QueryDatalog/QueryMemory actions against the store's shape.
const graphSchemaHint = "## KNOWLEDGE GRAPH SCHEMA\n" +
	"Nodes: `nodes { id => content, type, path, embedding }`\n" +
	"Edges: `edges { from => to, rel_type }`\n"

// stepSession performs one Think→Act→Observe step: load, materialize
// context, invoke the model, append + increment depth, parse and execute
// actions, persist. A terminated or depth-capped session no-ops; an LLM
// failure is logged and leaves the session untouched.
func stepSession(ctx context.Context, st *State, sessionID string) error {
	sess, ok, err := st.Memory.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}
	if !ok {
		return nil
	}
	if sess.Status.Kind == session.StatusCompleted || sess.Status.Kind == session.StatusError {
		return nil
	}
	if sess.ReachedMaxDepth(st.MaxLoops) {
		slog.Warn("session.max_depth", "session_id", sessionID, "depth", sess.Depth)
		return nil
	}

	ctx, span := tracer.Start(ctx, "session.step")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.Int("session.depth", sess.Depth),
	)

	prompt := sess.FullContext()
	if sess.Depth == 0 {
		if defs := st.Tools.ToolDefinitions(); defs != "" {
			prompt = prompt + "\n\n" + defs
		}
		prompt = prompt + "\n\n" + graphSchemaHint
	}

	response, err := st.Cortex.Generate(ctx, prompt, cortex.ThinkingHigh)
	if err != nil {
		slog.Error("session.generate_failed", "session_id", sessionID, "error", err)
		return nil
	}

	sess = sess.
		WithMessage(fmt.Sprintf("**Sly (Step %d):**\n%s", sess.Depth, response)).
		WithDepthIncrement()

	for _, act := range action.Parse(response) {
		sess = executeAction(ctx, st, act, sess)
	}

	if err := st.Memory.UpdateSession(ctx, sess); err != nil {
		return fmt.Errorf("step persist: %w", err)
	}

	submitFollowUp(ctx, st, sess)
	return nil
}
