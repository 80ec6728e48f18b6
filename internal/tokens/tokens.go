// Package tokens provides a cheap, deterministic size estimate for text sent
// to an LLM. Estimates are used for relative budgeting decisions only, never
// for billing-accurate counts.
package tokens

import "strings"

const (
	// charsPerToken approximates English/code density (~4 chars per token).
	charsPerToken = 4
	// perLineOverhead accounts for structural tokens such as diff markers
	// and path fragments that tokenize worse than prose.
	perLineOverhead = 2
)

// Estimate returns an approximate token count for text. It is O(n),
// deterministic, monotonic in input length, and never returns 0 for
// non-empty input.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	lines := strings.Count(text, "\n") + 1
	return (len(text)+charsPerToken-1)/charsPerToken + lines*perLineOverhead
}
