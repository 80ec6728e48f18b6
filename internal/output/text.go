package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/siftlab/sift/internal/review"
	"github.com/siftlab/sift/internal/suggest"
)

// TextWriter outputs a human-readable terminal report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	suggestions := report.Result.Suggestions

	ew.printf("Sift Code Review — %s mode\n", report.Inputs.Mode)
	if report.Inputs.Range != "" {
		ew.printf("Range: %s\n", report.Inputs.Range)
	}
	if report.Repo.Root != "" {
		ew.printf("Repository: %s (branch: %s)\n", report.Repo.Root, report.Repo.Branch)
	}
	ew.println(strings.Repeat("─", 60))

	if report.Result.OverviewSummary != "" {
		for _, line := range wrapText(strings.TrimSpace(report.Result.OverviewSummary), 70) {
			ew.printf("%s\n", line)
		}
	}
	if report.Result.Score > 0 {
		ew.printf("Score: %d/100\n", report.Result.Score)
	}

	counts := severityCounts(suggestions)
	ew.printf("Suggestions: %d total", len(suggestions))
	if len(suggestions) > 0 {
		ew.printf(" (%d critical, %d high, %d medium, %d low)",
			counts[suggest.SeverityCritical],
			counts[suggest.SeverityHigh],
			counts[suggest.SeverityMedium],
			counts[suggest.SeverityLow],
		)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if len(suggestions) == 0 {
		ew.println("\nNo issues found. Looks good!")
		t.writeFooter(ew, report)
		return ew.err
	}

	grouped := groupBySeverity(suggestions)
	for _, sev := range severityOrder {
		group := grouped[sev]
		if len(group) == 0 {
			continue
		}

		ew.printf("\n%s %s\n", severityIcon(sev), strings.ToUpper(string(sev)))
		ew.println(strings.Repeat("─", 40))

		for _, s := range group {
			ew.printf("\n  %s:%d-%d  %s\n", s.File, s.LineStart, s.LineEnd, s.Summary)
			ew.printf("  Category: %s | Confidence: %.0f%%\n", s.Category, s.Confidence*100)
			for _, line := range wrapText(strings.TrimSpace(s.Body), 70) {
				ew.printf("    %s\n", line)
			}
			if s.ImprovedCode != "" {
				ew.println("  Suggested fix:")
				for _, line := range strings.Split(strings.TrimRight(s.ImprovedCode, "\n"), "\n") {
					ew.printf("    %s\n", line)
				}
			}
		}
	}

	t.writeFooter(ew, report)
	return ew.err
}

func (t *TextWriter) writeFooter(ew *errWriter, report *review.Report) {
	if len(report.Plan.Omitted) > 0 {
		ew.printf("\nNot reviewed:\n")
		for _, o := range report.Plan.Omitted {
			ew.printf("  %s (%s)\n", o.Path, o.Reason)
		}
	}
	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (LLM: %dms, ~%d tokens of %d budget)\n",
		report.Timing.TotalMs, report.Timing.LLMMs,
		report.Plan.EstimatedTokens, report.Plan.BudgetTokens)
}

// errWriter captures the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func severityIcon(s suggest.Severity) string {
	switch s {
	case suggest.SeverityCritical:
		return "[!!!]"
	case suggest.SeverityHigh:
		return "[!!]"
	case suggest.SeverityMedium:
		return "[!]"
	case suggest.SeverityLow:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
