package session

import "testing"

func TestFunctionalUpdatesDoNotAlias(t *testing.T) {
	s := New("build the thing")
	s2 := s.WithMessage("step one")

	if len(s.Messages) != 1 {
		t.Fatalf("original session mutated: %v", s.Messages)
	}
	if len(s2.Messages) != 2 || s2.Messages[1] != "step one" {
		t.Fatalf("unexpected messages: %v", s2.Messages)
	}
	if s2.ID != s.ID {
		t.Fatalf("id changed across functional update")
	}
}

func TestDepthIncrement(t *testing.T) {
	s := New("x")
	for i := 0; i < 3; i++ {
		s = s.WithDepthIncrement()
	}
	if s.Depth != 3 {
		t.Fatalf("depth = %d, want 3", s.Depth)
	}
}

func TestReachedMaxDepth(t *testing.T) {
	cases := []struct {
		name     string
		depth    int
		maxLoops int
		want     bool
	}{
		{"below", 2, 3, false},
		{"at", 3, 3, true},
		{"above", 4, 3, true},
		{"zero budget", 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := AgentSession{Depth: tc.depth}
			if got := s.ReachedMaxDepth(tc.maxLoops); got != tc.want {
				t.Fatalf("ReachedMaxDepth(%d) with depth %d = %v, want %v", tc.maxLoops, tc.depth, got, tc.want)
			}
		})
	}
}

func TestFullContextJoinsMessages(t *testing.T) {
	s := New("first")
	s = s.WithMessage("second")
	if got := s.FullContext(); got != "first\n\nsecond" {
		t.Fatalf("FullContext() = %q", got)
	}
}
