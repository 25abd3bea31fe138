package action

import "testing"

func TestParseWriteFile(t *testing.T) {
	response := "Sure, here:\n```json\n{\"directive\": \"WriteFile\", \"path\": \"a.txt\", \"content\": \"hi\"}\n```\n"
	actions := Parse(response)
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	if actions[0].Directive != KindWriteFile || actions[0].Path != "a.txt" || actions[0].Content != "hi" {
		t.Fatalf("unexpected action: %+v", actions[0])
	}
}

func TestParseCallTool(t *testing.T) {
	response := "```json\n{\"directive\": \"CallTool\", \"name\": \"search\", \"arguments\": {\"q\": \"go\"}}\n```"
	actions := Parse(response)
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	if actions[0].Directive != KindCallTool || actions[0].Name != "search" {
		t.Fatalf("unexpected action: %+v", actions[0])
	}
	if actions[0].Arguments["q"] != "go" {
		t.Fatalf("unexpected arguments: %+v", actions[0].Arguments)
	}
}

func TestParseArrayOfActions(t *testing.T) {
	response := "```json\n[{\"directive\": \"WriteFile\", \"path\": \"a\", \"content\": \"1\"}, {\"directive\": \"CommitOverlay\", \"message\": \"done\"}]\n```"
	actions := Parse(response)
	if len(actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(actions))
	}
	if actions[1].Directive != KindCommitOverlay || actions[1].Message != "done" {
		t.Fatalf("unexpected second action: %+v", actions[1])
	}
}

func TestParseGenericFence(t *testing.T) {
	response := "here's the plan\n```\n{\"directive\": \"Answer\", \"text\": \"done thinking\"}\n```"
	actions := Parse(response)
	if len(actions) != 1 || actions[0].Directive != KindAnswer {
		t.Fatalf("unexpected actions: %+v", actions)
	}
}

func TestParseWholeResponseObject(t *testing.T) {
	response := `{"directive": "CommitOverlay", "message": "final"}`
	actions := Parse(response)
	if len(actions) != 1 || actions[0].Directive != KindCommitOverlay {
		t.Fatalf("unexpected actions: %+v", actions)
	}
}

func TestParseFallsBackToAnswer(t *testing.T) {
	response := "Just some plain prose, no action blocks here."
	actions := Parse(response)
	if len(actions) != 1 || actions[0].Directive != KindAnswer || actions[0].Text != response {
		t.Fatalf("unexpected actions: %+v", actions)
	}
}
