package embed

import (
	"math"
	"testing"
)

func TestEmbedIsDeterministic(t *testing.T) {
	e := New()
	a := e.Embed("hello world")
	b := e.Embed("hello world")
	if len(a) != Dimension {
		t.Fatalf("got dimension %d, want %d", len(a), Dimension)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at index %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestEmbedIsL2Normalized(t *testing.T) {
	e := New()
	v := e.Embed("normalize me")
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if math.Abs(norm-1.0) > 1e-4 {
		t.Fatalf("expected unit norm, got %v", norm)
	}
}

func TestDifferentInputsDiffer(t *testing.T) {
	e := New()
	a := e.Embed("foo")
	b := e.Embed("bar")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected distinct embeddings for distinct inputs")
	}
}

func TestBatchEmbedPreservesOrder(t *testing.T) {
	e := New()
	texts := []string{"a", "b", "c"}
	batch := e.BatchEmbed(texts)
	for i, text := range texts {
		single := e.Embed(text)
		for j := range single {
			if batch[i][j] != single[j] {
				t.Fatalf("batch embedding at %d diverged from single embedding", i)
			}
		}
	}
}
