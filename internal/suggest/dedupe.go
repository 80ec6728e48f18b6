package suggest

import "strings"

// similarityThreshold is the token-set Jaccard similarity above which two
// overlapping suggestions count as duplicates. Tunable, not load-bearing.
const similarityThreshold = 0.8

// Dedupe merges near-duplicate suggestions within each file: duplicates are
// pairs whose line ranges overlap and whose summary+body wording is mostly
// the same. The higher-severity entry wins (tie-break: higher confidence,
// then first encountered). Output preserves first-encountered order.
//
// A replacement can change a kept entry's line range, creating overlaps
// with entries the replacement was never compared against, so the merge
// repeats until the output is stable. That fixed point makes Dedupe
// idempotent and deterministic.
func Dedupe(suggestions []Suggestion) []Suggestion {
	out := suggestions
	for {
		merged := mergeOnce(out)
		if len(merged) == len(out) {
			return merged
		}
		out = merged
	}
}

// mergeOnce folds each suggestion into the kept list, collapsing it into
// the first duplicate already kept.
func mergeOnce(in []Suggestion) []Suggestion {
	var out []Suggestion
	for _, s := range in {
		merged := false
		for i := range out {
			if !duplicate(out[i], s) {
				continue
			}
			if prefer(s, out[i]) {
				// Winner replaces content but keeps the earlier position.
				out[i] = s
			}
			merged = true
			break
		}
		if !merged {
			out = append(out, s)
		}
	}
	return out
}

func duplicate(a, b Suggestion) bool {
	return a.File == b.File && rangesOverlap(a, b) &&
		jaccard(wordSet(textOf(a)), wordSet(textOf(b))) >= similarityThreshold
}

// prefer reports whether a should replace the already-kept b.
func prefer(a, b Suggestion) bool {
	if SeverityRank(a.Severity) != SeverityRank(b.Severity) {
		return SeverityRank(a.Severity) > SeverityRank(b.Severity)
	}
	return a.Confidence > b.Confidence
}

func rangesOverlap(a, b Suggestion) bool {
	return a.LineStart <= b.LineEnd && b.LineStart <= a.LineEnd
}

func textOf(s Suggestion) string {
	return s.Summary + " " + s.Body
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?()[]{}\"'`")
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
