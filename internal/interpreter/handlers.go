package interpreter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/criticalinsight/sly/internal/bootstrap"
	"github.com/criticalinsight/sly/internal/bus"
	"github.com/criticalinsight/sly/internal/cortex"
	"github.com/criticalinsight/sly/internal/ingest"
	"github.com/criticalinsight/sly/internal/memory"
	"github.com/criticalinsight/sly/internal/session"
	"github.com/criticalinsight/sly/pkg/protocol"
)

func handleInitiateSession(ctx context.Context, payload map[string]any, st *State) error {
	prompt, _ := payload["prompt"].(string)
	if prompt == "" {
		return fmt.Errorf("initiate_session: empty prompt")
	}

	sess := session.New(prompt)
	if err := st.Memory.CreateSession(ctx, sess); err != nil {
		return fmt.Errorf("initiate_session: %w", err)
	}
	slog.Info("session.initiated", "session_id", sess.ID)

	return stepSession(ctx, st, sess.ID)
}

func handleThink(ctx context.Context, payload map[string]any, st *State) error {
	sessionID, _ := payload["session_id"].(string)
	if sessionID == "" {
		return fmt.Errorf("think: missing session_id")
	}
	return stepSession(ctx, st, sessionID)
}

func handleObserve(ctx context.Context, payload map[string]any, st *State) error {
	sessionID, _ := payload["session_id"].(string)
	text, _ := payload["text"].(string)
	if sessionID == "" {
		return fmt.Errorf("observe: missing session_id")
	}

	sess, ok, err := st.Memory.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	if !ok {
		return nil
	}

	sess = sess.WithMessage(text)
	if err := st.Memory.UpdateSession(ctx, sess); err != nil {
		return fmt.Errorf("observe persist: %w", err)
	}
	return stepSession(ctx, st, sessionID)
}

func handleIngestFile(ctx context.Context, payload map[string]any, st *State) error {
	path, _ := payload["path"].(string)
	if path == "" {
		return fmt.Errorf("ingest_file: missing path")
	}
	return ingest.Run(ctx, st.Memory, []string{path})
}

func handleFsBatch(ctx context.Context, payload map[string]any, st *State) error {
	paths := stringSlice(payload["paths"])
	if len(paths) == 0 {
		return nil
	}
	slog.Debug("ingest.fs_batch", "paths", len(paths))
	return ingest.Run(ctx, st.Memory, paths)
}

func handleBootstrapSkills(ctx context.Context, _ map[string]any, st *State) error {
	n, err := bootstrap.Seed(ctx, st.Memory)
	if err != nil {
		return fmt.Errorf("bootstrap_skills: %w", err)
	}
	slog.Info("skills.bootstrapped", "seeded", n)
	return nil
}

// handleShutdown only logs: the scheduler detects the shutdown type name
// after dispatch and exits the loop itself.
func handleShutdown(ctx context.Context, _ map[string]any, st *State) error {
	slog.Info("shutdown.requested")
	return nil
}

// handleMaintenance is the janitor wakeup: it distills recent event-log
// activity into semantic triples and files them into the knowledge graph.
func handleMaintenance(ctx context.Context, _ map[string]any, st *State) error {
	if err := st.Memory.RecordEvent(ctx, protocol.OpPing, map[string]any{"source": "janitor"}); err != nil {
		return fmt.Errorf("maintenance heartbeat: %w", err)
	}

	events, err := st.Memory.RecentEvents(ctx, 50)
	if err != nil {
		return fmt.Errorf("maintenance: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(extractionPrompt)
	b.WriteString("\n\nRecent activity:\n")
	for _, e := range events {
		fmt.Fprintf(&b, "- %s\n", e.Op)
	}

	response, err := st.Cortex.Generate(ctx, b.String(), cortex.ThinkingLow)
	if err != nil {
		slog.Warn("maintenance.extract_failed", "error", err)
		return nil
	}

	triples := parseTriples(response)
	if len(triples) == 0 {
		return nil
	}
	nodes := make([]memory.GraphNode, len(triples))
	for i, t := range triples {
		nodes[i] = memory.GraphNode{
			ID:      "fact:" + uuid.NewString(),
			Content: t,
			Type:    "fact",
			Path:    "",
		}
	}
	return st.Memory.BatchAddNodes(ctx, nodes)
}

func handleError(ctx context.Context, payload map[string]any, st *State) error {
	msg, _ := payload["message"].(string)
	slog.Error("impulse.error", "message", msg)
	return nil
}

const extractionPrompt = `You are a Knowledge Graph Extractor.
Analyze the following activity and extract key technical facts.
Output STRICTLY a list of "Semantic Triples" in this format:
- (Subject) --[Relation]--> (Object)

Rules:
1. De-duplicate entities.
2. Capture technical constraints.
3. No introduction or prose. List only.`

// parseTriples keeps only lines shaped like "- (S) --[R]--> (O)".
func parseTriples(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- (") && strings.Contains(line, " --[") {
			out = append(out, strings.TrimPrefix(line, "- "))
		}
	}
	return out
}

// stringSlice accepts both []string (in-process directives) and []any
// (directives round-tripped through JSON).
func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// submitFollowUp enqueues the next ThinkStep for an autonomous session that
// is still live after a step.
func submitFollowUp(ctx context.Context, st *State, sess session.AgentSession) {
	if !st.Autonomous || st.Submit == nil {
		return
	}
	if sess.Status.Kind == session.StatusCompleted || sess.Status.Kind == session.StatusError {
		return
	}
	if sess.ReachedMaxDepth(st.MaxLoops) {
		return
	}
	if err := st.Submit(ctx, bus.Impulse{Kind: bus.ImpulseThinkStep, SessionID: sess.ID}); err != nil {
		slog.Warn("session.followup_failed", "session_id", sess.ID, "error", err)
	}
}
