package suggest

// Severity is the impact level of a suggestion.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseSeverity maps a model-reported severity string to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return Severity(s), true
	default:
		return "", false
	}
}

// Category classifies what kind of issue a suggestion describes.
type Category string

const (
	CategoryBug           Category = "bug"
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
	CategoryDocumentation Category = "documentation"
	CategoryOther         Category = "other"
)

// ParseCategory maps a model-reported label to a Category. Empty labels
// default to other; unknown non-empty labels are rejected.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "":
		return CategoryOther, true
	case "bug":
		return CategoryBug, true
	case "security":
		return CategorySecurity, true
	case "performance":
		return CategoryPerformance, true
	case "documentation", "docs":
		return CategoryDocumentation, true
	case "other":
		return CategoryOther, true
	default:
		return "", false
	}
}

// Suggestion is one normalized review finding.
type Suggestion struct {
	File         string   `json:"file"`
	LineStart    int      `json:"lineStart"`
	LineEnd      int      `json:"lineEnd"`
	Severity     Severity `json:"severity"`
	Category     Category `json:"category"`
	Summary      string   `json:"summary"`
	Body         string   `json:"body,omitempty"`
	ExistingCode string   `json:"existingCode,omitempty"`
	ImprovedCode string   `json:"improvedCode,omitempty"`
	// Confidence is derived from field completeness and diff agreement,
	// never taken from the model.
	Confidence float64 `json:"confidence"`
}

// ReviewResult is the final product of one review invocation.
type ReviewResult struct {
	OverviewSummary string            `json:"overviewSummary"`
	Score           int               `json:"score"`
	FileSummaries   map[string]string `json:"fileSummaries,omitempty"`
	Suggestions     []Suggestion      `json:"suggestions"`
}
