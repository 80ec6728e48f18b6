package output

import (
	"fmt"
	"io"
	"os"

	"github.com/siftlab/sift/internal/review"
	"github.com/siftlab/sift/internal/suggest"
)

// Writer renders a report in one format.
type Writer interface {
	Write(w io.Writer, report *review.Report) error
}

// GetWriter returns a writer for the given format name.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to outPath, or stdout when outPath is empty.
func WriteReport(report *review.Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}

var severityOrder = []suggest.Severity{
	suggest.SeverityCritical,
	suggest.SeverityHigh,
	suggest.SeverityMedium,
	suggest.SeverityLow,
}

func groupBySeverity(suggestions []suggest.Suggestion) map[suggest.Severity][]suggest.Suggestion {
	m := make(map[suggest.Severity][]suggest.Suggestion)
	for _, s := range suggestions {
		m[s.Severity] = append(m[s.Severity], s)
	}
	return m
}

func severityCounts(suggestions []suggest.Suggestion) map[suggest.Severity]int {
	m := make(map[suggest.Severity]int)
	for _, s := range suggestions {
		m[s.Severity]++
	}
	return m
}
