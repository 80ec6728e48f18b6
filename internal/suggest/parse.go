package suggest

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxSnippetLines caps the size of existing/improved code snippets carried
// on a suggestion.
const maxSnippetLines = 20

// SchemaError reports one malformed suggestion entry in the model payload.
// It is recoverable: the entry is dropped, the batch survives.
type SchemaError struct {
	Index  int
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("suggestion %d: %s", e.Index, e.Reason)
}

// Payload is the parsed model output before validation.
type Payload struct {
	Summary       string
	Score         int
	FileSummaries map[string]string
	Suggestions   []Suggestion
}

// rawPayload mirrors the YAML block the model is instructed to emit.
type rawPayload struct {
	Summary       string           `yaml:"summary"`
	Score         int              `yaml:"score"`
	FileSummaries []rawFileSummary `yaml:"file_summaries"`
	Suggestions   []rawSuggestion  `yaml:"suggestions"`
}

type rawFileSummary struct {
	File    string `yaml:"file"`
	Summary string `yaml:"summary"`
}

type rawSuggestion struct {
	RelevantFile       string `yaml:"relevant_file"`
	Language           string `yaml:"language"`
	SuggestionContent  string `yaml:"suggestion_content"`
	ExistingCode       string `yaml:"existing_code"`
	ImprovedCode       string `yaml:"improved_code"`
	OneSentenceSummary string `yaml:"one_sentence_summary"`
	RelevantLinesStart int    `yaml:"relevant_lines_start"`
	RelevantLinesEnd   int    `yaml:"relevant_lines_end"`
	Label              string `yaml:"label"`
	Severity           string `yaml:"severity"`
}

// Parse extracts the structured YAML block from raw model output. Malformed
// entries are dropped individually and reported as SchemaErrors; only an
// unusable payload returns a non-nil error. Empty output is a valid terminal
// state and yields an empty Payload.
func Parse(raw string) (Payload, []*SchemaError, error) {
	body := extractYAMLBlock(raw)
	if strings.TrimSpace(body) == "" {
		return Payload{}, nil, nil
	}

	var rp rawPayload
	if err := yaml.Unmarshal([]byte(body), &rp); err != nil {
		return Payload{}, nil, fmt.Errorf("parsing model output: %w", err)
	}

	p := Payload{Summary: strings.TrimSpace(rp.Summary), Score: clampScore(rp.Score)}
	if len(rp.FileSummaries) > 0 {
		p.FileSummaries = make(map[string]string, len(rp.FileSummaries))
		for _, fs := range rp.FileSummaries {
			if fs.File != "" {
				p.FileSummaries[fs.File] = fs.Summary
			}
		}
	}

	var schemaErrs []*SchemaError
	for i, r := range rp.Suggestions {
		s, err := normalizeEntry(i, r)
		if err != nil {
			schemaErrs = append(schemaErrs, err)
			continue
		}
		p.Suggestions = append(p.Suggestions, s)
	}
	return p, schemaErrs, nil
}

func normalizeEntry(index int, r rawSuggestion) (Suggestion, *SchemaError) {
	if strings.TrimSpace(r.RelevantFile) == "" {
		return Suggestion{}, &SchemaError{Index: index, Reason: "missing relevant_file"}
	}
	summary := strings.TrimSpace(r.OneSentenceSummary)
	if summary == "" {
		summary = firstLine(r.SuggestionContent)
	}
	if summary == "" {
		return Suggestion{}, &SchemaError{Index: index, Reason: "missing one_sentence_summary"}
	}
	if r.RelevantLinesStart <= 0 {
		return Suggestion{}, &SchemaError{Index: index, Reason: "missing relevant_lines_start"}
	}
	end := r.RelevantLinesEnd
	if end == 0 {
		end = r.RelevantLinesStart
	}
	if end < r.RelevantLinesStart {
		return Suggestion{}, &SchemaError{Index: index, Reason: "relevant_lines_end before start"}
	}

	severity := SeverityMedium
	if r.Severity != "" {
		sev, ok := ParseSeverity(r.Severity)
		if !ok {
			return Suggestion{}, &SchemaError{Index: index, Reason: fmt.Sprintf("unknown severity %q", r.Severity)}
		}
		severity = sev
	}
	category, ok := ParseCategory(strings.ToLower(strings.TrimSpace(r.Label)))
	if !ok {
		return Suggestion{}, &SchemaError{Index: index, Reason: fmt.Sprintf("unknown label %q", r.Label)}
	}

	s := Suggestion{
		File:         strings.TrimPrefix(strings.TrimSpace(r.RelevantFile), "b/"),
		LineStart:    r.RelevantLinesStart,
		LineEnd:      end,
		Severity:     severity,
		Category:     category,
		Summary:      summary,
		Body:         strings.TrimSpace(r.SuggestionContent),
		ExistingCode: clipLines(r.ExistingCode, maxSnippetLines),
		ImprovedCode: clipLines(r.ImprovedCode, maxSnippetLines),
	}
	s.Confidence = baseConfidence(s)
	return s, nil
}

// baseConfidence scores field completeness. Validate later lowers it when
// existing code cannot be located in the diff.
func baseConfidence(s Suggestion) float64 {
	c := 0.5
	if s.Body != "" {
		c += 0.15
	}
	if s.ExistingCode != "" {
		c += 0.2
	}
	if s.ImprovedCode != "" {
		c += 0.15
	}
	if c > 1.0 {
		c = 1.0
	}
	return c
}

// clampScore keeps the model-reported score inside 0..100.
func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// extractYAMLBlock returns the first fenced yaml block, or the content with
// generic fences stripped when no yaml fence is present.
func extractYAMLBlock(raw string) string {
	raw = strings.TrimSpace(raw)
	if start := strings.Index(raw, "```yaml"); start >= 0 {
		rest := raw[start+len("```yaml"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return rest[:end]
		}
		return rest
	}
	if strings.HasPrefix(raw, "```") {
		lines := strings.Split(raw, "\n")
		if len(lines) >= 2 {
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			return strings.Join(lines[1:end], "\n")
		}
	}
	return raw
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func clipLines(s string, n int) string {
	s = strings.Trim(s, "\n")
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
