package ingest

import "testing"

func TestExtractRustDefinitions(t *testing.T) {
	f := FileValue{
		Path:      "src/lib.rs",
		Extension: ".rs",
		Content:   "pub fn alpha() {}\n\nasync fn beta() {}\n",
	}
	nodes := extractOne(f)

	if nodes[0].ID != "file:src/lib.rs" || nodes[0].Type != "file" {
		t.Fatalf("first node should be the file node, got %+v", nodes[0])
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want file + 2 definitions", len(nodes))
	}
	if len(nodes[0].Edges) != 2 {
		t.Fatalf("file node should reference both definitions, got %v", nodes[0].Edges)
	}
}

func TestExtractFallbackFileNode(t *testing.T) {
	f := FileValue{
		Path:      "notes.txt",
		Extension: ".txt",
		Content:   "just some text with no structure",
	}
	nodes := extractOne(f)
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1 fallback file node", len(nodes))
	}
	if nodes[0].ID != "file:notes.txt" || nodes[0].Content != f.Content {
		t.Fatalf("unexpected fallback node: %+v", nodes[0])
	}
}

func TestExtractPreviewCapped(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	f := FileValue{Path: "big.txt", Extension: ".txt", Content: string(long)}
	nodes := extractOne(f)
	if len(nodes[0].Content) > 200 {
		t.Fatalf("preview not capped: %d chars", len(nodes[0].Content))
	}
}

func TestExtractMarkdownHeadings(t *testing.T) {
	f := FileValue{
		Path:      "README.md",
		Extension: ".md",
		Content:   "# Title\n\nprose\n\n## Usage\n",
	}
	nodes := extractOne(f)
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want file + 2 headings", len(nodes))
	}
}
