package suggest

import "testing"

func TestRankAndLimit_Ordering(t *testing.T) {
	in := []Suggestion{
		{File: "b.go", LineStart: 5, Severity: SeverityLow, Confidence: 0.9},
		{File: "a.go", LineStart: 9, Severity: SeverityCritical, Confidence: 0.5},
		{File: "a.go", LineStart: 2, Severity: SeverityHigh, Confidence: 0.7},
		{File: "a.go", LineStart: 1, Severity: SeverityHigh, Confidence: 0.9},
	}
	out := RankAndLimit(in, 0)
	wantOrder := []Severity{SeverityCritical, SeverityHigh, SeverityHigh, SeverityLow}
	for i, want := range wantOrder {
		if out[i].Severity != want {
			t.Fatalf("out[%d].Severity = %s, want %s", i, out[i].Severity, want)
		}
	}
	// Within high: higher confidence first.
	if out[1].Confidence != 0.9 {
		t.Errorf("out[1].Confidence = %v, want 0.9", out[1].Confidence)
	}
}

func TestRankAndLimit_NeverDropsCriticalForLower(t *testing.T) {
	in := []Suggestion{
		{File: "a.go", LineStart: 1, Severity: SeverityLow},
		{File: "a.go", LineStart: 2, Severity: SeverityCritical},
		{File: "a.go", LineStart: 3, Severity: SeverityLow},
		{File: "a.go", LineStart: 4, Severity: SeverityCritical},
		{File: "a.go", LineStart: 5, Severity: SeverityMedium},
	}
	out := RankAndLimit(in, 2)
	if len(out) != 2 {
		t.Fatalf("got %d, want 2", len(out))
	}
	for _, s := range out {
		if s.Severity != SeverityCritical {
			t.Errorf("kept %s suggestion while criticals were dropped", s.Severity)
		}
	}
}

func TestRankAndLimit_StableDeterministicTies(t *testing.T) {
	in := []Suggestion{
		{File: "z.go", LineStart: 1, Severity: SeverityMedium, Confidence: 0.5},
		{File: "a.go", LineStart: 8, Severity: SeverityMedium, Confidence: 0.5},
		{File: "a.go", LineStart: 3, Severity: SeverityMedium, Confidence: 0.5},
	}
	out := RankAndLimit(in, 0)
	if out[0].File != "a.go" || out[0].LineStart != 3 {
		t.Errorf("out[0] = %s:%d, want a.go:3", out[0].File, out[0].LineStart)
	}
	if out[2].File != "z.go" {
		t.Errorf("out[2] = %s, want z.go last", out[2].File)
	}
}

func TestRankAndLimit_DoesNotMutateInput(t *testing.T) {
	in := []Suggestion{
		{File: "b.go", Severity: SeverityLow},
		{File: "a.go", Severity: SeverityCritical},
	}
	_ = RankAndLimit(in, 1)
	if in[0].File != "b.go" {
		t.Error("RankAndLimit mutated its input slice")
	}
}

func TestApplySeverityFloor(t *testing.T) {
	in := []Suggestion{
		{Severity: SeverityCritical},
		{Severity: SeverityHigh},
		{Severity: SeverityMedium},
		{Severity: SeverityLow},
	}
	if got := ApplySeverityFloor(in, SeverityMedium); len(got) != 3 {
		t.Errorf("floor medium kept %d, want 3", len(got))
	}
	if got := ApplySeverityFloor(in, ""); len(got) != 4 {
		t.Errorf("empty floor kept %d, want 4", len(got))
	}
	if got := ApplySeverityFloor(in, SeverityCritical); len(got) != 1 {
		t.Errorf("floor critical kept %d, want 1", len(got))
	}
}

func TestCategoryFilter(t *testing.T) {
	in := []Suggestion{
		{Category: CategoryBug},
		{Category: CategorySecurity},
		{Category: CategoryPerformance},
		{Category: CategoryDocumentation},
		{Category: CategoryOther},
	}
	f := AllCategories()
	f.Performance = false
	out := f.Apply(in)
	if len(out) != 4 {
		t.Fatalf("kept %d, want 4", len(out))
	}
	for _, s := range out {
		if s.Category == CategoryPerformance {
			t.Error("performance suggestion survived a disabled filter")
		}
	}
}

func TestAutoLimit(t *testing.T) {
	tests := []struct {
		files int
		want  int
	}{
		{0, 8},
		{3, 8},
		{10, 20},
		{50, 40},
	}
	for _, tt := range tests {
		if got := AutoLimit(tt.files); got != tt.want {
			t.Errorf("AutoLimit(%d) = %d, want %d", tt.files, got, tt.want)
		}
	}
}
