package llm

import (
	"regexp"
	"strings"
)

var (
	jsonBlockRe     = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	markdownBlockRe = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
)

// ExtractJSON pulls a JSON payload out of free-form model text. The text
// may wrap the JSON in a ```json fence, a generic fence, or surrounding
// prose; failing all of those, the trimmed text itself is assumed to be
// the payload.
func ExtractJSON(text string) string {
	trimmed := strings.TrimSpace(text)

	if m := jsonBlockRe.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}

	if m := markdownBlockRe.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}

	first := strings.Index(trimmed, "{")
	last := strings.LastIndex(trimmed, "}")
	if first != -1 && last > first {
		return trimmed[first : last+1]
	}

	return trimmed
}
