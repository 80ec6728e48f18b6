package chunk

import (
	"reflect"
	"testing"

	"github.com/siftlab/sift/internal/diff"
)

// makeFile builds a single-hunk file with n added lines starting at newStart.
func makeFile(path string, newStart, n int) diff.FileChange {
	h := diff.Hunk{OldStart: newStart, OldLines: 0, NewStart: newStart, NewLines: n}
	for i := 0; i < n; i++ {
		h.Lines = append(h.Lines, diff.Line{Kind: diff.LineAdded, Text: "some changed line of code"})
	}
	return diff.FileChange{
		Path:      path,
		Status:    diff.StatusModified,
		Hunks:     []diff.Hunk{h},
		Additions: n,
		Language:  diff.LanguageHint(path),
	}
}

func TestSelect_BudgetInvariant(t *testing.T) {
	files := []diff.FileChange{
		makeFile("src/a.go", 1, 100),
		makeFile("src/b.go", 1, 50),
		makeFile("docs/notes.md", 1, 40),
		makeFile("service_test.go", 1, 30),
	}
	for _, budget := range []int{0, 10, 100, 500, 1000, 100000} {
		plan := Select(files, Options{BudgetTokens: budget})
		if plan.EstimatedTokens > budget {
			t.Errorf("budget %d: EstimatedTokens = %d exceeds budget", budget, plan.EstimatedTokens)
		}
	}
}

func TestSelect_ScenarioPriorityOverSize(t *testing.T) {
	big := makeFile("src/big.go", 1, 100)
	small := makeFile("src/small.go", 1, 50)
	test := makeFile("service_test.go", 1, 30)
	files := []diff.FileChange{big, small, test}

	// Budget fits both source files with a sliver left over, not the test.
	budget := fileCost(big) + fileCost(small) + 3
	plan := Select(files, Options{BudgetTokens: budget})

	if len(plan.IncludedFiles) != 2 {
		t.Fatalf("got %d included files, want 2: %+v", len(plan.IncludedFiles), plan.Omitted)
	}
	// Smaller source file packs first within the tier.
	if plan.IncludedFiles[0].Path != "src/small.go" || plan.IncludedFiles[1].Path != "src/big.go" {
		t.Errorf("included order = %s, %s; want src/small.go, src/big.go",
			plan.IncludedFiles[0].Path, plan.IncludedFiles[1].Path)
	}
	if len(plan.Omitted) != 1 || plan.Omitted[0].Path != "service_test.go" || plan.Omitted[0].Reason != OmitBudgetExceeded {
		t.Errorf("Omitted = %+v, want service_test.go budget_exceeded", plan.Omitted)
	}
	if plan.Truncated {
		t.Error("Truncated = true, want false")
	}
}

func TestSelect_AllFitWhenBudgetAllows(t *testing.T) {
	files := []diff.FileChange{
		makeFile("src/big.go", 1, 100),
		makeFile("src/small.go", 1, 50),
		makeFile("service_test.go", 1, 30),
	}
	plan := Select(files, Options{BudgetTokens: 1 << 20})
	if len(plan.IncludedFiles) != 3 || len(plan.Omitted) != 0 {
		t.Fatalf("included=%d omitted=%d, want 3/0", len(plan.IncludedFiles), len(plan.Omitted))
	}
	if plan.Truncated {
		t.Error("Truncated = true, want false")
	}
}

func TestSelect_PriorityMonotonicity(t *testing.T) {
	source := makeFile("src/core.go", 1, 60)
	docs := makeFile("guide.md", 1, 5)
	files := []diff.FileChange{docs, source}

	// Both fit individually; only one fits overall.
	budget := fileCost(source) + 1
	plan := Select(files, Options{BudgetTokens: budget})

	if !plan.Includes("src/core.go") {
		t.Fatal("higher-priority source file was not included")
	}
	for _, f := range plan.IncludedFiles {
		if f.Path == "guide.md" {
			t.Error("docs file included while budget only covers the source file")
		}
	}
}

func TestSelect_ScenarioNoNewChanges(t *testing.T) {
	files := []diff.FileChange{
		makeFile("src/a.go", 1, 20),
		makeFile("src/b.go", 1, 10),
	}
	plan := Select(files, Options{BudgetTokens: 100000, Incremental: true})

	if len(plan.IncludedFiles) != 0 {
		t.Fatalf("IncludedFiles = %d, want 0", len(plan.IncludedFiles))
	}
	if len(plan.Omitted) != 2 {
		t.Fatalf("Omitted = %d, want 2", len(plan.Omitted))
	}
	for _, o := range plan.Omitted {
		if o.Reason != OmitNoNewHunks {
			t.Errorf("%s: reason = %q, want no_new_hunks_since_ref", o.Path, o.Reason)
		}
	}
}

func TestSelect_IncrementalIntersection(t *testing.T) {
	f := makeFile("src/a.go", 10, 5)
	second := diff.Hunk{OldStart: 40, OldLines: 0, NewStart: 40, NewLines: 5}
	for i := 0; i < 5; i++ {
		second.Lines = append(second.Lines, diff.Line{Kind: diff.LineAdded, Text: "later change"})
	}
	f.Hunks = append(f.Hunks, second)
	f.Additions = 10

	since := []diff.FileChange{{
		Path:  "src/a.go",
		Hunks: []diff.Hunk{{NewStart: 42, NewLines: 3}},
	}}

	plan := Select([]diff.FileChange{f}, Options{BudgetTokens: 100000, Incremental: true, Since: since})
	if len(plan.IncludedFiles) != 1 {
		t.Fatalf("included = %d, want 1", len(plan.IncludedFiles))
	}
	got := plan.IncludedFiles[0]
	if len(got.Hunks) != 1 || got.Hunks[0].NewStart != 40 {
		t.Errorf("kept hunks = %+v, want only the hunk at line 40", got.Hunks)
	}
	if got.Additions != 5 {
		t.Errorf("Additions = %d, want 5 after intersection", got.Additions)
	}
}

func TestSelect_TruncatesTrailingHunks(t *testing.T) {
	f := makeFile("src/a.go", 1, 10)
	for _, start := range []int{30, 60} {
		h := diff.Hunk{OldStart: start, OldLines: 0, NewStart: start, NewLines: 10}
		for i := 0; i < 10; i++ {
			h.Lines = append(h.Lines, diff.Line{Kind: diff.LineAdded, Text: "another changed line"})
		}
		f.Hunks = append(f.Hunks, h)
	}
	f.Additions = 30

	full := fileCost(f)
	budget := full - 20 // enough for the header and two of three hunks
	plan := Select([]diff.FileChange{f}, Options{BudgetTokens: budget})

	if len(plan.IncludedFiles) != 1 {
		t.Fatalf("included = %d, want 1 (truncated)", len(plan.IncludedFiles))
	}
	if !plan.Truncated {
		t.Error("Truncated = false, want true")
	}
	got := plan.IncludedFiles[0]
	if len(got.Hunks) != 2 {
		t.Fatalf("kept %d hunks, want 2", len(got.Hunks))
	}
	if got.Hunks[0].NewStart != 1 || got.Hunks[1].NewStart != 30 {
		t.Errorf("kept hunks out of order: %d, %d", got.Hunks[0].NewStart, got.Hunks[1].NewStart)
	}
	if plan.EstimatedTokens > budget {
		t.Errorf("EstimatedTokens = %d exceeds budget %d", plan.EstimatedTokens, budget)
	}
}

func TestSelect_OmitsWhenFirstHunkTooBig(t *testing.T) {
	f := makeFile("src/a.go", 1, 50)
	plan := Select([]diff.FileChange{f}, Options{BudgetTokens: 30})
	if len(plan.IncludedFiles) != 0 {
		t.Fatalf("included = %d, want 0", len(plan.IncludedFiles))
	}
	if len(plan.Omitted) != 1 || plan.Omitted[0].Reason != OmitBudgetExceeded {
		t.Errorf("Omitted = %+v, want budget_exceeded", plan.Omitted)
	}
}

func TestSelect_ExcludedAndBinary(t *testing.T) {
	binary := diff.FileChange{Path: "logo.png", Binary: true}
	locked := makeFile("package-lock.json", 1, 500)
	src := makeFile("src/a.go", 1, 10)

	plan := Select([]diff.FileChange{binary, locked, src}, Options{
		BudgetTokens:    100000,
		ExcludePatterns: []string{"package-lock.json", "*.min.js"},
	})

	if len(plan.IncludedFiles) != 1 || plan.IncludedFiles[0].Path != "src/a.go" {
		t.Fatalf("IncludedFiles = %+v, want only src/a.go", plan.IncludedFiles)
	}
	reasons := map[string]OmitReason{}
	for _, o := range plan.Omitted {
		reasons[o.Path] = o.Reason
	}
	if reasons["logo.png"] != OmitBinary {
		t.Errorf("logo.png reason = %q, want binary", reasons["logo.png"])
	}
	if reasons["package-lock.json"] != OmitExcludedPattern {
		t.Errorf("package-lock.json reason = %q, want excluded_pattern", reasons["package-lock.json"])
	}
}

func TestSelect_Deterministic(t *testing.T) {
	files := []diff.FileChange{
		makeFile("src/a.go", 1, 40),
		makeFile("src/b.go", 1, 40),
		makeFile("config.yaml", 1, 10),
		makeFile("docs/x.md", 1, 10),
		makeFile("pkg/util_test.go", 1, 25),
	}
	opts := Options{BudgetTokens: 700, ExcludePatterns: []string{"*.lock"}}

	first := Select(files, opts)
	for i := 0; i < 5; i++ {
		if got := Select(files, opts); !reflect.DeepEqual(got, first) {
			t.Fatalf("Select not deterministic on run %d:\n got %+v\nwant %+v", i, got, first)
		}
	}
}

func TestPriorityTier(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"src/server.go", tierSource},
		{"lib/auth.py", tierSource},
		{"config.yaml", tierConfig},
		{"Dockerfile", tierConfig},
		{".golangci.yml", tierConfig},
		{"pkg/thing_test.go", tierTests},
		{"spec/models.spec.ts", tierTests},
		{"tests/fixtures.py", tierTests},
		{"README.md", tierDocs},
		{"docs/design.md", tierDocs},
		{"notes.txt", tierDocs},
	}
	for _, tt := range tests {
		if got := priorityTier(tt.path); got != tt.want {
			t.Errorf("priorityTier(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"yarn.lock", []string{"*.lock"}, true},
		{"sub/dir/yarn.lock", []string{"*.lock"}, true},
		{"app.min.js", []string{"*.min.js"}, true},
		{"vendor/lib.go", []string{"vendor/*"}, true},
		{"src/app.go", []string{"*.lock", "*.min.js"}, false},
		{"deep/path/gen.pb.go", []string{"**/*.pb.go"}, true},
		{"vendor/lib.go", []string{"vendor/**"}, true},
		{"vendor/sub/lib.go", []string{"vendor/**"}, true},
		{"myvendor/lib.go", []string{"vendor/**"}, false},
	}
	for _, tt := range tests {
		if got := matchesAny(tt.path, tt.patterns); got != tt.want {
			t.Errorf("matchesAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
		}
	}
}
