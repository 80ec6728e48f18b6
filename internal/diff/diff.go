package diff

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Status describes what happened to a file in a diff.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
	StatusRenamed  Status = "renamed"
)

// LineKind tags a single line within a hunk.
type LineKind string

const (
	LineContext LineKind = "context"
	LineAdded   LineKind = "added"
	LineRemoved LineKind = "removed"
)

// Line is one tagged line of hunk content, without the leading marker.
type Line struct {
	Kind LineKind
	Text string
}

// Hunk is one contiguous change region from an @@ header.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// FileChange is one file's portion of a unified diff.
type FileChange struct {
	Path      string
	Status    Status
	OldPath   string // set for renames
	Hunks     []Hunk
	Additions int
	Deletions int
	Binary    bool
	Language  string
}

// MalformedDiffError reports an unparsable file section. It is recoverable:
// the parser skips the file and continues with the rest of the diff.
type MalformedDiffError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedDiffError) Error() string {
	return fmt.Sprintf("malformed diff for %s at line %d: %s", e.Path, e.Line, e.Reason)
}

// ErrNoUsableFiles is returned when a non-empty diff yields zero parsable
// file sections.
var ErrNoUsableFiles = errors.New("diff contains no usable file sections")

// SkippedFile records a file section that could not be parsed.
type SkippedFile struct {
	Path string
	Err  error
}

var (
	fileHeaderRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
)

// Parse splits raw unified-diff text into per-file change records. Malformed
// file sections are returned in skipped rather than aborting the whole diff.
// An empty input yields no files and no error; a non-empty input with zero
// usable sections returns ErrNoUsableFiles.
func Parse(raw string) (files []FileChange, skipped []SkippedFile, err error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, nil
	}

	lines := strings.Split(raw, "\n")

	// Locate every per-file header so each section has a known boundary.
	var starts []int
	for i, line := range lines {
		if fileHeaderRe.MatchString(line) {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil, nil, ErrNoUsableFiles
	}

	for si, start := range starts {
		end := len(lines)
		if si+1 < len(starts) {
			end = starts[si+1]
		}
		fc, perr := parseSection(lines, start, end)
		if perr != nil {
			skipped = append(skipped, SkippedFile{Path: sectionPath(lines[start]), Err: perr})
			continue
		}
		files = append(files, fc)
	}

	if len(files) == 0 {
		return nil, skipped, ErrNoUsableFiles
	}
	return files, skipped, nil
}

func sectionPath(header string) string {
	if m := fileHeaderRe.FindStringSubmatch(header); m != nil {
		return m[2]
	}
	return ""
}

// parseSection parses one file section spanning lines[start:end].
func parseSection(lines []string, start, end int) (FileChange, error) {
	m := fileHeaderRe.FindStringSubmatch(lines[start])
	fc := FileChange{
		Path:     m[2],
		Status:   StatusModified,
		Language: LanguageHint(m[2]),
	}

	i := start + 1
	// Extended headers up to the first hunk or binary marker.
	for i < end {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "new file mode"):
			fc.Status = StatusAdded
		case strings.HasPrefix(line, "deleted file mode"):
			fc.Status = StatusDeleted
		case strings.HasPrefix(line, "rename from "):
			fc.Status = StatusRenamed
			fc.OldPath = strings.TrimPrefix(line, "rename from ")
		case strings.HasPrefix(line, "rename to "):
			fc.Path = strings.TrimPrefix(line, "rename to ")
			fc.Language = LanguageHint(fc.Path)
		case strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ"),
			strings.HasPrefix(line, "GIT binary patch"):
			fc.Binary = true
			return fc, nil
		}
		if strings.HasPrefix(line, "@@") {
			break
		}
		i++
	}

	for i < end {
		line := lines[i]
		if line == "" && i == end-1 {
			break // trailing newline artifact
		}
		// A "\ No newline at end of file" marker for a hunk's last counted
		// line lands after the hunk loop finishes.
		if strings.HasPrefix(line, "\\") {
			i++
			continue
		}
		if !strings.HasPrefix(line, "@@") {
			return FileChange{}, &MalformedDiffError{Path: fc.Path, Line: i + 1, Reason: "unexpected content outside hunk"}
		}

		hm := hunkHeaderRe.FindStringSubmatch(line)
		if hm == nil {
			return FileChange{}, &MalformedDiffError{Path: fc.Path, Line: i + 1, Reason: "unparsable hunk header"}
		}
		h := Hunk{
			OldStart: atoi(hm[1]),
			OldLines: atoiDefault(hm[2], 1),
			NewStart: atoi(hm[3]),
			NewLines: atoiDefault(hm[4], 1),
		}
		i++

		oldSeen, newSeen := 0, 0
		for i < end && (oldSeen < h.OldLines || newSeen < h.NewLines) {
			l := lines[i]
			if strings.HasPrefix(l, "\\") { // "\ No newline at end of file"
				i++
				continue
			}
			var kind LineKind
			var text string
			switch {
			case strings.HasPrefix(l, "+"):
				kind, text = LineAdded, l[1:]
				newSeen++
			case strings.HasPrefix(l, "-"):
				kind, text = LineRemoved, l[1:]
				oldSeen++
			case strings.HasPrefix(l, " "):
				kind, text = LineContext, l[1:]
				oldSeen++
				newSeen++
			case l == "":
				kind, text = LineContext, ""
				oldSeen++
				newSeen++
			default:
				return FileChange{}, &MalformedDiffError{Path: fc.Path, Line: i + 1, Reason: "unexpected line marker"}
			}
			h.Lines = append(h.Lines, Line{Kind: kind, Text: text})
			if kind == LineAdded {
				fc.Additions++
			}
			if kind == LineRemoved {
				fc.Deletions++
			}
			i++
		}

		if oldSeen != h.OldLines || newSeen != h.NewLines {
			return FileChange{}, &MalformedDiffError{
				Path:   fc.Path,
				Line:   i + 1,
				Reason: "hunk ended before declared line counts",
			}
		}
		fc.Hunks = append(fc.Hunks, h)
	}

	return fc, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	return atoi(s)
}

// Render reconstructs a file change as unified diff text.
func Render(fc FileChange) string {
	var b strings.Builder
	b.WriteString(RenderHeader(fc))
	for _, h := range fc.Hunks {
		b.WriteString(RenderHunk(h))
	}
	return b.String()
}

// RenderHeader renders the per-file header lines.
func RenderHeader(fc FileChange) string {
	var b strings.Builder
	old := fc.Path
	if fc.OldPath != "" {
		old = fc.OldPath
	}
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", old, fc.Path)
	switch fc.Status {
	case StatusAdded:
		b.WriteString("new file mode 100644\n")
		fmt.Fprintf(&b, "--- /dev/null\n+++ b/%s\n", fc.Path)
	case StatusDeleted:
		b.WriteString("deleted file mode 100644\n")
		fmt.Fprintf(&b, "--- a/%s\n+++ /dev/null\n", old)
	case StatusRenamed:
		fmt.Fprintf(&b, "rename from %s\nrename to %s\n", old, fc.Path)
		fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", old, fc.Path)
	default:
		fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", old, fc.Path)
	}
	if fc.Binary {
		fmt.Fprintf(&b, "Binary files a/%s and b/%s differ\n", old, fc.Path)
	}
	return b.String()
}

// RenderHunk renders one hunk with its @@ header.
func RenderHunk(h Hunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
	for _, l := range h.Lines {
		switch l.Kind {
		case LineAdded:
			b.WriteString("+")
		case LineRemoved:
			b.WriteString("-")
		default:
			b.WriteString(" ")
		}
		b.WriteString(l.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// NewSpan returns the new-file line range covered by the file's hunks.
// ok is false when the file has no hunks.
func NewSpan(fc FileChange) (start, end int, ok bool) {
	if len(fc.Hunks) == 0 {
		return 0, 0, false
	}
	first := fc.Hunks[0]
	last := fc.Hunks[len(fc.Hunks)-1]
	end = last.NewStart + last.NewLines - 1
	if last.NewLines == 0 {
		end = last.NewStart
	}
	return first.NewStart, end, true
}

// AddedLines returns the text of every added line in the file.
func AddedLines(fc FileChange) []string {
	var out []string
	for _, h := range fc.Hunks {
		for _, l := range h.Lines {
			if l.Kind == LineAdded {
				out = append(out, l.Text)
			}
		}
	}
	return out
}

var languageByExt = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".rs":    "rust",
	".java":  "java",
	".rb":    "ruby",
	".php":   "php",
	".cs":    "csharp",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".swift": "swift",
	".kt":    "kotlin",
	".sh":    "shell",
	".sql":   "sql",
	".yaml":  "yaml",
	".yml":   "yaml",
	".json":  "json",
	".md":    "markdown",
}

// LanguageHint guesses the programming language from a file extension.
func LanguageHint(p string) string {
	return languageByExt[strings.ToLower(path.Ext(p))]
}
