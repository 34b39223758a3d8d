package headline

import (
	"sort"
	"strings"
)

// Plan is the rendering plan for a display headline: full lines in order,
// then a final line split into a plain prefix and a highlighted suffix.
type Plan struct {
	Lines     []string `json:"lines"`     // All lines except the final one
	Prefix    string   `json:"prefix"`    // Non-highlighted start of the final line, may be empty
	Highlight string   `json:"highlight"` // Highlighted last words of the final line, at most 2
}

// wordsPerLine is the baseline chunk size for display lines.
const wordsPerLine = 3

// Format splits a headline into visually balanced upper-case display
// lines and marks the trailing highlighted span. Empty input yields an
// empty plan.
func Format(headline string) Plan {
	words := strings.Fields(strings.ToUpper(headline))
	if len(words) == 0 {
		return Plan{}
	}

	var chunks [][]string
	for i := 0; i < len(words); i += wordsPerLine {
		end := i + wordsPerLine
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, words[i:end])
	}

	// Rebalance: never leave a single-word orphan on the final line when a
	// previous line can lend a word.
	if len(chunks) > 1 && len(chunks[len(chunks)-1]) == 1 {
		prev := chunks[len(chunks)-2]
		borrowed := prev[len(prev)-1]
		chunks[len(chunks)-2] = prev[:len(prev)-1]
		chunks[len(chunks)-1] = append([]string{borrowed}, chunks[len(chunks)-1]...)
	}

	var lines []string
	for _, chunk := range chunks {
		if line := strings.Join(chunk, " "); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return Plan{}
	}

	last := lines[len(lines)-1]
	lines = lines[:len(lines)-1]

	lastWords := strings.Fields(last)
	highlightCount := len(lastWords)
	if highlightCount > 2 {
		highlightCount = 2
	}

	return Plan{
		Lines:     lines,
		Prefix:    strings.Join(lastWords[:len(lastWords)-highlightCount], " "),
		Highlight: strings.Join(lastWords[len(lastWords)-highlightCount:], " "),
	}
}

// Empty reports whether the plan renders nothing.
func (p Plan) Empty() bool {
	return len(p.Lines) == 0 && p.Prefix == "" && p.Highlight == ""
}

// WordCount returns the total number of words across the plan.
func (p Plan) WordCount() int {
	n := 0
	for _, line := range p.Lines {
		n += len(strings.Fields(line))
	}
	n += len(strings.Fields(p.Prefix))
	n += len(strings.Fields(p.Highlight))
	return n
}

// String renders the plan as plain text, one line per display line. The
// highlighted suffix is joined onto the final line without decoration.
func (p Plan) String() string {
	var b strings.Builder
	for _, line := range p.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if p.Prefix != "" {
		b.WriteString(p.Prefix)
		b.WriteString(" ")
	}
	b.WriteString(p.Highlight)
	return b.String()
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "in": {}, "on": {}, "of": {}, "for": {},
	"with": {}, "to": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"out": {}, "by": {}, "at": {}, "from": {},
}

// Keywords derives an image search query from a headline: lower-case,
// letters only, stop-words and short words removed, the three longest
// remaining words joined. Falls back to "news event".
func Keywords(headline string) string {
	if headline == "" {
		return "news event"
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || r == ' ' {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return -1
	}, headline)

	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if _, stop := stopWords[word]; stop || len(word) <= 2 {
			continue
		}
		keywords = append(keywords, word)
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		return len(keywords[i]) > len(keywords[j])
	})

	if len(keywords) > 3 {
		keywords = keywords[:3]
	}
	if len(keywords) == 0 {
		return "news event"
	}
	return strings.Join(keywords, " ")
}
