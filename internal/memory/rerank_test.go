package memory

import (
	"testing"

	"github.com/criticalinsight/sly/internal/embed"
)

func TestRerankOrdersByDotProduct(t *testing.T) {
	s := &Store{embedder: embed.New()}

	query := "overlay filesystem commit semantics"
	qvec := s.embedder.Embed(query)

	// The query's own embedding must rank first: a unit vector's dot
	// product with itself is maximal among unit vectors.
	candidates := []Candidate{
		{ID: "self", Embedding: qvec},
		{ID: "other", Embedding: s.embedder.Embed("completely unrelated text about birds")},
		{ID: "zero", Embedding: make([]float32, embed.Dimension)},
	}

	scored := s.Rerank(query, candidates, 2)
	if len(scored) != 2 {
		t.Fatalf("got %d results, want 2", len(scored))
	}
	if scored[0].ID != "self" {
		t.Fatalf("expected the query's own embedding first, got %q", scored[0].ID)
	}
	if scored[0].Score < 0.999 {
		t.Fatalf("self-similarity should be ~1.0, got %f", scored[0].Score)
	}
}

func TestRerankKLargerThanCandidates(t *testing.T) {
	s := &Store{embedder: embed.New()}
	scored := s.Rerank("q", []Candidate{{ID: "only", Embedding: s.embedder.Embed("x")}}, 10)
	if len(scored) != 1 {
		t.Fatalf("got %d results, want 1", len(scored))
	}
}
