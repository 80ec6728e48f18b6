package suggest

import "sort"

// Auto-limit bounds when the caller asks for "auto" max suggestions.
const (
	autoPerFile  = 2
	autoMinLimit = 8
	autoMaxLimit = 40
)

// AutoLimit scales the suggestion cap with the number of reviewed files.
func AutoLimit(fileCount int) int {
	limit := autoPerFile * fileCount
	if limit < autoMinLimit {
		return autoMinLimit
	}
	if limit > autoMaxLimit {
		return autoMaxLimit
	}
	return limit
}

// RankAndLimit orders suggestions by (severity desc, confidence desc, file,
// lineStart) and caps the list at maxCount. Because dropping happens from
// the sorted tail, a critical suggestion is never sacrificed for a lower
// one. maxCount <= 0 means unlimited.
func RankAndLimit(suggestions []Suggestion, maxCount int) []Suggestion {
	out := make([]Suggestion, len(suggestions))
	copy(out, suggestions)

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := SeverityRank(out[i].Severity), SeverityRank(out[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].LineStart < out[j].LineStart
	})

	if maxCount > 0 && len(out) > maxCount {
		out = out[:maxCount]
	}
	return out
}

// ApplySeverityFloor drops suggestions below the given severity. An empty
// floor keeps everything.
func ApplySeverityFloor(suggestions []Suggestion, floor Severity) []Suggestion {
	if floor == "" {
		return suggestions
	}
	min := SeverityRank(floor)
	var out []Suggestion
	for _, s := range suggestions {
		if SeverityRank(s.Severity) >= min {
			out = append(out, s)
		}
	}
	return out
}

// CategoryFilter toggles which suggestion categories survive normalization.
// Categories outside the three switchable ones always pass.
type CategoryFilter struct {
	Bug         bool
	Performance bool
	Security    bool
}

// AllCategories returns a filter with every category enabled.
func AllCategories() CategoryFilter {
	return CategoryFilter{Bug: true, Performance: true, Security: true}
}

// Apply removes suggestions whose category is switched off.
func (f CategoryFilter) Apply(suggestions []Suggestion) []Suggestion {
	var out []Suggestion
	for _, s := range suggestions {
		switch s.Category {
		case CategoryBug:
			if !f.Bug {
				continue
			}
		case CategoryPerformance:
			if !f.Performance {
				continue
			}
		case CategorySecurity:
			if !f.Security {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
