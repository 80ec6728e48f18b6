package review

import (
	"fmt"
	"strings"

	"github.com/siftlab/sift/internal/chunk"
	"github.com/siftlab/sift/internal/diff"
	"github.com/siftlab/sift/internal/skill"
)

const outputContract = `You MUST respond with exactly one fenced YAML block and nothing else:

` + "```yaml" + `
summary: |
  One paragraph describing the overall change.
score: 85
file_summaries:
  path/to/file.go: |
    What changed in this file.
suggestions:
  - relevant_file: path/to/file.go
    language: go
    one_sentence_summary: Short imperative description of the issue.
    suggestion_content: |
      What is wrong and why it matters.
    existing_code: |
      the exact changed lines the issue refers to
    improved_code: |
      the corrected lines
    relevant_lines_start: 12
    relevant_lines_end: 14
    label: bug
    severity: high
` + "```" + `

Rules for the YAML:
1. score is an integer 0-100 rating the overall change quality.
2. label must be one of: bug, security, performance, documentation, other.
3. severity must be one of: critical, high, medium, low.
4. relevant_lines_start and relevant_lines_end are line numbers in the new
   version of the file, taken from the diff hunk headers.
5. existing_code must quote the changed lines verbatim from the diff.
6. Only comment on lines that appear in the diff.
7. If the change looks good, return an empty suggestions list.`

// SystemPrompt combines the active skill's instructions with the output
// contract.
func SystemPrompt(sk skill.Skill) string {
	return sk.Instructions + "\n\n" + outputContract
}

// BuildUserPrompt assembles the user message: change metadata, selection
// notes, and the (already redacted) diff text.
func BuildUserPrompt(plan chunk.Plan, title, diffText string, maxSuggestions int) string {
	var b strings.Builder

	b.WriteString("Review the following code diff.\n\n")
	if title != "" {
		fmt.Fprintf(&b, "Change description: %s\n", title)
	}
	if maxSuggestions > 0 {
		fmt.Fprintf(&b, "Return at most %d suggestions.\n", maxSuggestions)
	}
	if langs := planLanguages(plan); len(langs) > 0 {
		fmt.Fprintf(&b, "Languages: %s\n", strings.Join(langs, ", "))
	}

	if len(plan.Omitted) > 0 {
		b.WriteString("\nSome changed files are not shown:\n")
		for _, o := range plan.Omitted {
			fmt.Fprintf(&b, "- %s (%s)\n", o.Path, o.Reason)
		}
	}
	if plan.Truncated {
		b.WriteString("\nNote: trailing hunks of the last file were cut to fit the context budget.\n")
	}

	b.WriteString("\n--- BEGIN DIFF ---\n")
	b.WriteString(diffText)
	if !strings.HasSuffix(diffText, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("--- END DIFF ---\n")

	return b.String()
}

// RenderPlan turns the selected files back into unified diff text.
func RenderPlan(plan chunk.Plan) string {
	var b strings.Builder
	for _, f := range plan.IncludedFiles {
		b.WriteString(diff.Render(f))
	}
	return b.String()
}

func planLanguages(plan chunk.Plan) []string {
	seen := make(map[string]bool)
	var langs []string
	for _, f := range plan.IncludedFiles {
		lang := f.Language
		if lang == "" {
			lang = diff.LanguageHint(f.Path)
		}
		if lang != "" && !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	return langs
}
