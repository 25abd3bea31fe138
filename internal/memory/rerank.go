package memory

import "sort"

// Candidate is one item rerank scores against a query embedding.
type Candidate struct {
	ID        string
	Embedding []float32
}

// Scored pairs a candidate with its dot-product score.
type Scored struct {
	ID    string
	Score float32
}

// Rerank scores each candidate by the dot product of its embedding with the
// query's, sorts descending, and returns the top k.
func (s *Store) Rerank(query string, candidates []Candidate, k int) []Scored {
	qvec := s.embedder.Embed(query)

	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = Scored{ID: c.ID, Score: dot(qvec, c.Embedding)}
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
