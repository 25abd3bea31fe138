package ingest

import (
	"fmt"
	"regexp"

	"github.com/mattn/go-runewidth"

	"github.com/criticalinsight/sly/internal/memory"
)

// extractOne produces the node list for one file. Every extension routes
// through a regex-based definition scan; on a parse failure (none of the
// patterns for the file's language match anything), the fallback below
// guarantees at minimum a file:<path> node.
func extractOne(f FileValue) []memory.GraphNode {
	fileNodeID := "file:" + f.Path
	preview := runewidth.Truncate(f.Content, 200, "")
	fileNode := memory.GraphNode{
		ID:      fileNodeID,
		Content: preview,
		Type:    "file",
		Path:    f.Path,
	}

	defs := extractDefinitions(f)
	if len(defs) == 0 {
		return []memory.GraphNode{fileNode}
	}

	nodes := make([]memory.GraphNode, 0, len(defs)+1)
	nodes = append(nodes, fileNode)
	for _, d := range defs {
		fileNode.Edges = append(fileNode.Edges, d.ID)
		nodes = append(nodes, d)
	}
	nodes[0] = fileNode
	return nodes
}

// definitionPatterns maps a file extension to the regex used to find named
// top-level definitions within it — the mandatory regex fallback every
// extension gets, since no supported language has a full structural parser
// wired into this module.
var definitionPatterns = map[string]*regexp.Regexp{
	".rs": regexp.MustCompile(`(?m)^\s*(?:pub\s+)?(?:async\s+)?fn\s+(\w+)`),
	".ts": regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:async\s+)?function\s+(\w+)|^\s*(?:export\s+)?class\s+(\w+)`),
	".js": regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:async\s+)?function\s+(\w+)|^\s*(?:export\s+)?class\s+(\w+)`),
	".py": regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+(\w+)|^\s*class\s+(\w+)`),
	".md": regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`),
}

func extractDefinitions(f FileValue) []memory.GraphNode {
	pattern, ok := definitionPatterns[f.Extension]
	if !ok {
		return nil
	}

	matches := pattern.FindAllStringSubmatchIndex(f.Content, -1)
	nodes := make([]memory.GraphNode, 0, len(matches))
	for i, m := range matches {
		name := firstNonEmptyGroup(f.Content, m)
		if name == "" {
			continue
		}
		nodes = append(nodes, memory.GraphNode{
			ID:      fmt.Sprintf("def:%s:%d:%s", f.Path, i, name),
			Content: runewidth.Truncate(f.Content[m[0]:], 200, ""),
			Type:    "definition",
			Path:    f.Path,
		})
	}
	return nodes
}

func firstNonEmptyGroup(content string, m []int) string {
	for g := 1; g*2+1 < len(m); g++ {
		s, e := m[g*2], m[g*2+1]
		if s >= 0 && e >= 0 {
			return content[s:e]
		}
	}
	return ""
}
