// Package session implements the per-run AgentSession state machine that
// the OODA loop steps through one directive at a time — never recursing
// within a single handler invocation.
package session

import (
	"github.com/google/uuid"
)

// Status is the session's current point in its think/act/observe cycle.
type Status struct {
	Kind Kind   `json:"kind"`
	Err  string `json:"err,omitempty"` // populated only when Kind == StatusError
}

// Kind enumerates the session status values.
type Kind string

const (
	StatusIdle                Kind = "idle"
	StatusThinking            Kind = "thinking"
	StatusAwaitingObservation Kind = "awaiting_observation"
	StatusCompleted           Kind = "completed"
	StatusError               Kind = "error"
)

// Idle, Thinking, and AwaitingObservation are the zero-argument statuses.
func Idle() Status                { return Status{Kind: StatusIdle} }
func Thinking() Status            { return Status{Kind: StatusThinking} }
func AwaitingObservation() Status { return Status{Kind: StatusAwaitingObservation} }
func Completed() Status           { return Status{Kind: StatusCompleted} }
func Error(msg string) Status     { return Status{Kind: StatusError, Err: msg} }

// AgentSession is the unit of state the interpreter's handlers thread
// through a think/act/observe cycle. Every mutator returns a new value —
// handlers never mutate a session in place, so a failed persist never
// leaves a half-updated session visible to a concurrent reader.
type AgentSession struct {
	ID       string   `json:"id"`
	Messages []string `json:"messages"`
	Depth    int      `json:"depth"`
	Status   Status   `json:"status"`
}

// New creates a session seeded with the initial prompt as its first message.
func New(initialPrompt string) AgentSession {
	return AgentSession{
		ID:       uuid.NewString(),
		Messages: []string{initialPrompt},
		Depth:    0,
		Status:   Idle(),
	}
}

// WithMessage returns a copy of s with msg appended to its transcript.
func (s AgentSession) WithMessage(msg string) AgentSession {
	next := s
	next.Messages = append(append([]string{}, s.Messages...), msg)
	return next
}

// WithDepthIncrement returns a copy of s with its think/act/observe depth
// incremented by one.
func (s AgentSession) WithDepthIncrement() AgentSession {
	next := s
	next.Depth = s.Depth + 1
	return next
}

// WithStatus returns a copy of s with its status replaced.
func (s AgentSession) WithStatus(status Status) AgentSession {
	next := s
	next.Status = status
	return next
}

// ReachedMaxDepth reports whether s has exhausted its think/act/observe
// budget and must not be stepped again.
func (s AgentSession) ReachedMaxDepth(maxLoops int) bool {
	return s.Depth >= maxLoops
}

// FullContext joins every message in the transcript into the prompt body
// handed to the model on the next think step.
func (s AgentSession) FullContext() string {
	out := ""
	for i, m := range s.Messages {
		if i > 0 {
			out += "\n\n"
		}
		out += m
	}
	return out
}
