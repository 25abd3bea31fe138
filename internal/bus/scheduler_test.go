package bus

import (
	"context"
	"testing"
)

type recordingDispatcher struct {
	seen []string
}

func (r *recordingDispatcher) Dispatch(ctx context.Context, d Directive) error {
	r.seen = append(r.seen, d.Type)
	return nil
}

func TestPriorityPreemption(t *testing.T) {
	disp := &recordingDispatcher{}
	s := NewScheduler(disp)
	ctx := context.Background()

	if err := s.Submit(ctx, Impulse{Kind: ImpulseFileSystemEvent, Paths: []string{"a.txt"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(ctx, Impulse{Kind: ImpulseThinkStep, SessionID: "S"}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		imp, ok := s.next(ctx)
		if !ok {
			t.Fatal("expected an impulse")
		}
		if _, err := s.drain(ctx, imp); err != nil {
			t.Fatal(err)
		}
	}

	if len(disp.seen) != 2 || disp.seen[0] != "think" || disp.seen[1] != "fs_batch" {
		t.Fatalf("expected [think fs_batch], got %v", disp.seen)
	}
}

func TestShutdownStopsRun(t *testing.T) {
	disp := &recordingDispatcher{}
	s := NewScheduler(disp)
	ctx := context.Background()

	if err := s.Submit(ctx, Impulse{Kind: ImpulseSystemInterrupt}); err != nil {
		t.Fatal(err)
	}

	if err := s.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if len(disp.seen) != 1 || disp.seen[0] != "shutdown" {
		t.Fatalf("expected [shutdown], got %v", disp.seen)
	}
}

func TestSwarmSignalProducesNoDirective(t *testing.T) {
	imp := Impulse{Kind: ImpulseSwarmSignal, WorkerID: "w1", Status: "ok"}
	if len(imp.ToDirectives()) != 0 {
		t.Fatalf("expected no directives for SwarmSignal")
	}
}
