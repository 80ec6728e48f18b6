package chunk

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/siftlab/sift/internal/diff"
	"github.com/siftlab/sift/internal/tokens"
)

// OmitReason explains why a file was left out of a Plan.
type OmitReason string

const (
	OmitBudgetExceeded  OmitReason = "budget_exceeded"
	OmitExcludedPattern OmitReason = "excluded_pattern"
	OmitBinary          OmitReason = "binary"
	OmitNoNewHunks      OmitReason = "no_new_hunks_since_ref"
)

// Omission records one file left out of the plan and why.
type Omission struct {
	Path   string
	Reason OmitReason
}

// Plan is the chunker's decision: which files go to the model, which were
// omitted, and how much of the budget the selection consumes. A Plan is
// built fresh per review and immutable once returned.
type Plan struct {
	IncludedFiles   []diff.FileChange
	Omitted         []Omission
	EstimatedTokens int
	Truncated       bool
}

// Includes reports whether the plan contains the given path.
func (p Plan) Includes(path string) bool {
	for _, f := range p.IncludedFiles {
		if f.Path == path {
			return true
		}
	}
	return false
}

// File returns the included file for path, if any.
func (p Plan) File(path string) (diff.FileChange, bool) {
	for _, f := range p.IncludedFiles {
		if f.Path == path {
			return f, true
		}
	}
	return diff.FileChange{}, false
}

// Options controls file selection.
type Options struct {
	BudgetTokens    int
	ExcludePatterns []string
	// Incremental restricts each file to the hunks that overlap Since,
	// the diff of changes made after the last reviewed commit.
	Incremental bool
	Since       []diff.FileChange
}

type candidate struct {
	file diff.FileChange
	tier int
	cost int
}

// Select packs files into a token budget. The pass is deterministic:
// identical inputs always yield an identical Plan.
func Select(files []diff.FileChange, opts Options) Plan {
	var plan Plan

	sinceByPath := make(map[string][]diff.Hunk, len(opts.Since))
	for _, f := range opts.Since {
		sinceByPath[f.Path] = f.Hunks
	}

	var candidates []candidate
	for _, f := range files {
		if f.Binary {
			plan.Omitted = append(plan.Omitted, Omission{Path: f.Path, Reason: OmitBinary})
			continue
		}
		if matchesAny(f.Path, opts.ExcludePatterns) {
			plan.Omitted = append(plan.Omitted, Omission{Path: f.Path, Reason: OmitExcludedPattern})
			continue
		}
		if opts.Incremental {
			restricted, ok := restrictToSince(f, sinceByPath[f.Path])
			if !ok {
				plan.Omitted = append(plan.Omitted, Omission{Path: f.Path, Reason: OmitNoNewHunks})
				continue
			}
			f = restricted
		}
		candidates = append(candidates, candidate{file: f, tier: priorityTier(f.Path), cost: fileCost(f)})
	}

	// Higher tiers first; within a tier, smaller files first so more
	// distinct files fit. Path breaks remaining ties for determinism.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].tier != candidates[j].tier {
			return candidates[i].tier > candidates[j].tier
		}
		if candidates[i].cost != candidates[j].cost {
			return candidates[i].cost < candidates[j].cost
		}
		return candidates[i].file.Path < candidates[j].file.Path
	})

	remaining := opts.BudgetTokens
	for _, c := range candidates {
		if c.cost <= remaining {
			plan.IncludedFiles = append(plan.IncludedFiles, c.file)
			remaining -= c.cost
			continue
		}
		truncated, cost, ok := truncateToFit(c.file, remaining)
		if ok {
			plan.IncludedFiles = append(plan.IncludedFiles, truncated)
			remaining -= cost
			plan.Truncated = true
			continue
		}
		plan.Omitted = append(plan.Omitted, Omission{Path: c.file.Path, Reason: OmitBudgetExceeded})
	}

	plan.EstimatedTokens = opts.BudgetTokens - remaining
	return plan
}

// fileCost estimates a file's token cost part by part so that truncation
// can reuse per-hunk costs without re-rendering prefixes.
func fileCost(f diff.FileChange) int {
	cost := tokens.Estimate(diff.RenderHeader(f))
	for _, h := range f.Hunks {
		cost += tokens.Estimate(diff.RenderHunk(h))
	}
	return cost
}

// truncateToFit drops trailing hunks until the file fits in budget. It
// fails (ok=false) when not even the first hunk fits.
func truncateToFit(f diff.FileChange, budget int) (diff.FileChange, int, bool) {
	cost := tokens.Estimate(diff.RenderHeader(f))
	if cost >= budget {
		return diff.FileChange{}, 0, false
	}
	keep := 0
	for _, h := range f.Hunks {
		hc := tokens.Estimate(diff.RenderHunk(h))
		if cost+hc > budget {
			break
		}
		cost += hc
		keep++
	}
	if keep == 0 {
		return diff.FileChange{}, 0, false
	}

	out := f
	out.Hunks = f.Hunks[:keep]
	out.Additions, out.Deletions = countChanges(out.Hunks)
	return out, cost, true
}

// restrictToSince keeps only the hunks whose new-file ranges overlap a hunk
// in the since-ref diff for the same path. ok=false means the file has no
// new changes since the reference.
func restrictToSince(f diff.FileChange, since []diff.Hunk) (diff.FileChange, bool) {
	if len(since) == 0 {
		return diff.FileChange{}, false
	}
	var kept []diff.Hunk
	for _, h := range f.Hunks {
		for _, s := range since {
			if hunksOverlap(h, s) {
				kept = append(kept, h)
				break
			}
		}
	}
	if len(kept) == 0 {
		return diff.FileChange{}, false
	}
	out := f
	out.Hunks = kept
	out.Additions, out.Deletions = countChanges(kept)
	return out, true
}

func hunksOverlap(a, b diff.Hunk) bool {
	aEnd := a.NewStart + max(a.NewLines-1, 0)
	bEnd := b.NewStart + max(b.NewLines-1, 0)
	return a.NewStart <= bEnd && b.NewStart <= aEnd
}

func countChanges(hunks []diff.Hunk) (adds, dels int) {
	for _, h := range hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case diff.LineAdded:
				adds++
			case diff.LineRemoved:
				dels++
			}
		}
	}
	return adds, dels
}

// Priority tiers, highest reviewed first. Under a tight budget reviewers
// get more value from source issues than from prose or test scaffolding.
const (
	tierDocs = iota
	tierTests
	tierConfig
	tierSource
)

func priorityTier(path string) int {
	lower := strings.ToLower(path)
	base := filepath.Base(lower)
	ext := filepath.Ext(base)

	switch ext {
	case ".md", ".rst", ".adoc", ".txt":
		return tierDocs
	}
	if strings.HasPrefix(lower, "docs/") || strings.Contains(lower, "/docs/") ||
		strings.HasPrefix(base, "readme") || strings.HasPrefix(base, "license") ||
		strings.HasPrefix(base, "changelog") {
		return tierDocs
	}

	if strings.Contains(base, "_test.") || strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") || strings.Contains(lower, "__tests__") ||
		strings.Contains(lower, "__mocks__") ||
		hasSegment(lower, "test") || hasSegment(lower, "tests") ||
		hasSegment(lower, "testdata") || hasSegment(lower, "spec") {
		return tierTests
	}

	switch ext {
	case ".json", ".yaml", ".yml", ".toml", ".ini", ".cfg", ".conf", ".env", ".properties":
		return tierConfig
	}
	if base == "dockerfile" || base == "makefile" || strings.HasPrefix(base, ".") {
		return tierConfig
	}

	return tierSource
}

func hasSegment(path, seg string) bool {
	for _, s := range strings.Split(path, "/") {
		if s == seg {
			return true
		}
	}
	return false
}

// matchesAny reports whether path matches any glob pattern. Patterns with a
// leading **/ also match against the basename and the bare path, and a
// trailing /** matches the whole directory tree (filepath.Match alone never
// crosses a slash).
func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, path); err == nil && ok {
			return true
		}
		if dir, found := strings.CutSuffix(pattern, "/**"); found {
			if path == dir || strings.HasPrefix(path, dir+"/") {
				return true
			}
		}
		// Slash-free patterns apply to the basename, gitignore style.
		if !strings.Contains(pattern, "/") {
			if ok, err := filepath.Match(pattern, filepath.Base(path)); err == nil && ok {
				return true
			}
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean == pattern {
			continue
		}
		if ok, err := filepath.Match(clean, filepath.Base(path)); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(clean, path); err == nil && ok {
			return true
		}
	}
	return false
}
