package interpreter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/criticalinsight/sly/internal/action"
	"github.com/criticalinsight/sly/internal/session"
)

const shellTimeout = 60 * time.Second

// executeAction runs one parsed action against the shared state and returns
// the session with the resulting observation appended. Failures become
// observations, never errors — the session's self-correction loop is the
// recovery path.
func executeAction(ctx context.Context, st *State, act action.AgentAction, sess session.AgentSession) session.AgentSession {
	switch act.Directive {
	case action.KindWriteFile:
		return execWriteFile(st, act, sess)
	case action.KindExecShell:
		return execShell(ctx, act, sess)
	case action.KindCallTool:
		return execCallTool(ctx, st, act, sess)
	case action.KindCommitOverlay:
		return execCommitOverlay(st, act, sess)
	case action.KindQueryMemory:
		return execQueryMemory(ctx, st, act, sess)
	case action.KindAnswer:
		return sess.WithStatus(session.Completed())
	case action.KindUseSkill:
		return sess.WithMessage("**Observation:** Skill execution is delegated to the external sandbox; not available in this step.")
	case action.KindQueryDatalog:
		return sess.WithMessage("**Observation:** Datalog queries are not implemented; use QueryMemory instead.")
	default:
		return sess
	}
}

func execWriteFile(st *State, act action.AgentAction, sess session.AgentSession) session.AgentSession {
	if err := st.Overlay.WriteFile(act.Path, []byte(act.Content)); err != nil {
		return sess.WithMessage(fmt.Sprintf("**Observation (Error):** Failed to write %s: %v", act.Path, err))
	}
	return sess.WithMessage(fmt.Sprintf("**Observation:** Wrote %s to the overlay.", act.Path))
}

func execShell(ctx context.Context, act action.AgentAction, sess session.AgentSession) session.AgentSession {
	if pattern := matchDenyPattern(act.Command); pattern != "" {
		return sess.WithMessage(fmt.Sprintf("**Observation (Error):** Command denied by safety policy: matches pattern %s", pattern))
	}

	ctx, cancel := context.WithTimeout(ctx, shellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", act.Command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		exitCode = -1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
	}

	result := fmt.Sprintf("Exit Code: %d\nSTDOUT:\n%s\nSTDERR:\n%s",
		exitCode, stdout.String(), stderr.String())
	return sess.WithMessage(fmt.Sprintf("**Observation (Shell '%s'):**\n```\n%s\n```", act.Command, result))
}

func execCallTool(ctx context.Context, st *State, act action.AgentAction, sess session.AgentSession) session.AgentSession {
	slog.Info("action.call_tool", "tool", act.Name)
	result, err := st.Tools.CallTool(ctx, act.Name, act.Arguments)
	if err != nil {
		return sess.WithMessage(fmt.Sprintf("**Observation (Error from '%s'):**\n%v", act.Name, err))
	}
	return sess.WithMessage(fmt.Sprintf("**Observation (Tool '%s'):**\n```json\n%s\n```", act.Name, string(result)))
}

func execCommitOverlay(st *State, act action.AgentAction, sess session.AgentSession) session.AgentSession {
	slog.Info("action.commit_overlay", "message", act.Message)
	if err := st.Overlay.Commit(); err != nil {
		return sess.WithMessage(fmt.Sprintf("**Observation (Commit Error):** %v", err))
	}
	return sess.
		WithMessage("**Observation:** Overlay committed to workspace successfully.").
		WithStatus(session.Completed())
}

func execQueryMemory(ctx context.Context, st *State, act action.AgentAction, sess session.AgentSession) session.AgentSession {
	related, err := st.Memory.FindRelated(ctx, act.Query, 5)
	if err != nil {
		return sess.WithMessage(fmt.Sprintf("**Observation (Error):** Memory query failed: %v", err))
	}
	if len(related) == 0 {
		return sess.WithMessage("**Observation:** No related memory found.")
	}

	out := "**Observation (Memory):**\n"
	for _, r := range related {
		out += fmt.Sprintf("- [%s] %s (distance %.3f)\n", r.Node.ID, r.Node.Content, r.Distance)
	}
	return sess.WithMessage(out)
}
