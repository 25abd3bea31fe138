package memory

import "github.com/criticalinsight/sly/internal/vectorindex"

func vectorEntry(id, content string, vec []float32) vectorindex.Entry {
	return vectorindex.Entry{ID: id, Content: content, Vector: vec}
}
