package suggest

import (
	"strings"

	"github.com/siftlab/sift/internal/chunk"
	"github.com/siftlab/sift/internal/diff"
)

// mismatchPenalty is subtracted from confidence when a suggestion's
// existing_code cannot be located verbatim among the file's added lines.
const mismatchPenalty = 0.3

// Validate discards suggestions that reference files or line ranges the
// chunk plan never showed the model. A suggestion whose existing code does
// not appear verbatim in the diff keeps its place but loses confidence.
func Validate(suggestions []Suggestion, plan chunk.Plan) []Suggestion {
	var out []Suggestion
	for _, s := range suggestions {
		fc, ok := resolveFile(s.File, plan)
		if !ok {
			continue
		}
		start, end, ok := diff.NewSpan(fc)
		if !ok {
			continue
		}
		// Keep anything that touches the file's diff span.
		if s.LineEnd < start || s.LineStart > end {
			continue
		}
		s.File = fc.Path
		if s.ExistingCode != "" && !codeInAddedLines(s.ExistingCode, fc) {
			s.Confidence -= mismatchPenalty
			if s.Confidence < 0.05 {
				s.Confidence = 0.05
			}
		}
		out = append(out, s)
	}
	return out
}

// resolveFile matches a reported path against the plan, tolerating partial
// paths the model sometimes emits (a trailing-suffix match on a path
// boundary).
func resolveFile(reported string, plan chunk.Plan) (diff.FileChange, bool) {
	if fc, ok := plan.File(reported); ok {
		return fc, true
	}
	for _, fc := range plan.IncludedFiles {
		if strings.HasSuffix(fc.Path, "/"+reported) || strings.HasSuffix(reported, "/"+fc.Path) {
			return fc, true
		}
	}
	return diff.FileChange{}, false
}

// codeInAddedLines reports whether every non-blank line of code appears as a
// substring of some added line in the file's diff.
func codeInAddedLines(code string, fc diff.FileChange) bool {
	added := diff.AddedLines(fc)
	for _, want := range strings.Split(code, "\n") {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		found := false
		for _, line := range added {
			if strings.Contains(line, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
