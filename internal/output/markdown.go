package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/siftlab/sift/internal/diff"
	"github.com/siftlab/sift/internal/review"
	"github.com/siftlab/sift/internal/suggest"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	suggestions := report.Result.Suggestions
	counts := severityCounts(suggestions)

	fmt.Fprintf(w, "## Sift Code Review\n\n")

	if report.Result.OverviewSummary != "" {
		fmt.Fprintf(w, "%s\n\n", strings.TrimSpace(report.Result.OverviewSummary))
	}
	if report.Result.Score > 0 {
		fmt.Fprintf(w, "**Score: %d/100**\n\n", report.Result.Score)
	}

	fmt.Fprintf(w, "| Severity | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	fmt.Fprintf(w, "| Critical | %d |\n", counts[suggest.SeverityCritical])
	fmt.Fprintf(w, "| High     | %d |\n", counts[suggest.SeverityHigh])
	fmt.Fprintf(w, "| Medium   | %d |\n", counts[suggest.SeverityMedium])
	fmt.Fprintf(w, "| Low      | %d |\n", counts[suggest.SeverityLow])
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", len(suggestions))

	if len(suggestions) == 0 {
		fmt.Fprintln(w, "No issues found. :white_check_mark:")
		m.writeFooter(w, report)
		return nil
	}

	grouped := groupBySeverity(suggestions)
	for _, sev := range severityOrder {
		group := grouped[sev]
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(w, "<details>\n<summary>%s %s (%d)</summary>\n\n",
			mdSeverityIcon(sev), strings.ToUpper(string(sev)), len(group))

		for _, s := range group {
			fmt.Fprintf(w, "### %s\n\n", s.Summary)
			fmt.Fprintf(w, "**`%s:%d-%d`** | %s | Confidence: %.0f%%\n\n",
				s.File, s.LineStart, s.LineEnd, s.Category, s.Confidence*100)
			if s.Body != "" {
				fmt.Fprintf(w, "%s\n\n", strings.TrimSpace(s.Body))
			}

			lang := diff.LanguageHint(s.File)
			if s.ExistingCode != "" {
				fmt.Fprintf(w, "**Existing:**\n\n```%s\n%s\n```\n\n",
					lang, strings.TrimRight(s.ExistingCode, "\n"))
			}
			if s.ImprovedCode != "" {
				fmt.Fprintf(w, "**Suggested:**\n\n```%s\n%s\n```\n\n",
					lang, strings.TrimRight(s.ImprovedCode, "\n"))
			}

			fmt.Fprintf(w, "---\n\n")
		}

		fmt.Fprintf(w, "</details>\n\n")
	}

	m.writeFooter(w, report)
	return nil
}

func (m *MarkdownWriter) writeFooter(w io.Writer, report *review.Report) {
	if len(report.Plan.Omitted) > 0 {
		fmt.Fprintf(w, "<details>\n<summary>Files not reviewed (%d)</summary>\n\n", len(report.Plan.Omitted))
		for _, o := range report.Plan.Omitted {
			fmt.Fprintf(w, "- `%s` (%s)\n", o.Path, o.Reason)
		}
		fmt.Fprintf(w, "\n</details>\n\n")
	}
	fmt.Fprintf(w, "*Reviewed in %dms (LLM: %dms)*\n", report.Timing.TotalMs, report.Timing.LLMMs)
}

func mdSeverityIcon(s suggest.Severity) string {
	switch s {
	case suggest.SeverityCritical:
		return ":stop_sign:"
	case suggest.SeverityHigh:
		return ":red_circle:"
	case suggest.SeverityMedium:
		return ":orange_circle:"
	case suggest.SeverityLow:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}
