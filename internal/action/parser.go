package action

import (
	"strings"

	"github.com/titanous/json5"
)

// Parse extracts every AgentAction embedded in a model response. It never
// fails: a response with no parseable action block falls back to a single
// Answer action carrying the whole response as text.
//
// Search order:
//  1. ```json fenced blocks — each tried first as a JSON array of actions,
//     then as a single action object.
//  2. any other fenced block (skipping ones already tried as ```json),
//     tried the same way.
//  3. the whole trimmed response, if it looks like a JSON object or array.
//  4. Answer{text: response}.
func Parse(response string) []AgentAction {
	if actions := parseFencedJSONBlocks(response); len(actions) > 0 {
		return actions
	}
	if actions := parseGenericFencedBlocks(response); len(actions) > 0 {
		return actions
	}
	if actions := parseWholeResponse(response); len(actions) > 0 {
		return actions
	}
	return []AgentAction{{Directive: KindAnswer, Text: response}}
}

func parseFencedJSONBlocks(response string) []AgentAction {
	var out []AgentAction
	for _, block := range extractFences(response, "```json") {
		out = append(out, tryParseBlock(block)...)
	}
	return out
}

func parseGenericFencedBlocks(response string) []AgentAction {
	var out []AgentAction
	for _, block := range extractFences(response, "```") {
		out = append(out, tryParseBlock(block)...)
	}
	return out
}

func parseWholeResponse(response string) []AgentAction {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return nil
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil
	}
	return tryParseBlock(trimmed)
}

// tryParseBlock attempts an array-of-actions parse first, then a
// single-action parse.
func tryParseBlock(block string) []AgentAction {
	var arr []AgentAction
	if err := json5.Unmarshal([]byte(block), &arr); err == nil && len(arr) > 0 {
		return arr
	}
	var single AgentAction
	if err := json5.Unmarshal([]byte(block), &single); err == nil && single.Directive != "" {
		return []AgentAction{single}
	}
	return nil
}

// extractFences returns the bodies of every fenced block opened by marker
// ("```json" or "```"). For the generic "```" marker, blocks already opened
// with "```json" are skipped so the two passes never double-count.
func extractFences(response, marker string) []string {
	var blocks []string
	skipJSON := marker == "```"

	i := 0
	for {
		start := strings.Index(response[i:], "```")
		if start == -1 {
			break
		}
		start += i

		lineEnd := strings.IndexByte(response[start:], '\n')
		if lineEnd == -1 {
			break
		}
		openerLine := response[start : start+lineEnd]
		isJSONOpener := strings.TrimSpace(strings.TrimPrefix(openerLine, "```")) == "json"

		bodyStart := start + lineEnd + 1
		end := strings.Index(response[bodyStart:], "```")
		if end == -1 {
			break
		}
		end += bodyStart

		if skipJSON && isJSONOpener {
			i = end + 3
			continue
		}
		if marker == "```json" && !isJSONOpener {
			i = end + 3
			continue
		}

		blocks = append(blocks, strings.TrimSpace(response[bodyStart:end]))
		i = end + 3
	}

	return blocks
}
