package gitctx

import (
	"fmt"
	"os/exec"
	"strings"
)

// Options controls diff collection.
type Options struct {
	ContextLines int
}

// Meta identifies the repository a diff came from.
type Meta struct {
	Root   string
	Head   string
	Branch string
}

// Describe collects repository metadata for the current directory.
func Describe() (Meta, error) {
	root, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return Meta{}, fmt.Errorf("not a git repository: %w", err)
	}
	// HEAD and branch are best-effort; a fresh repo has neither.
	head, _ := gitOutput("rev-parse", "HEAD")
	branch, _ := gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	return Meta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Working returns the diff of the working tree against HEAD, staged changes
// included.
func Working(opts Options) (string, error) {
	out, err := gitOutput(diffArgs(opts, "HEAD")...)
	if err != nil {
		return "", fmt.Errorf("git diff HEAD: %w", err)
	}
	return out, nil
}

// Staged returns the diff of the index against HEAD.
func Staged(opts Options) (string, error) {
	out, err := gitOutput(diffArgs(opts, "--cached")...)
	if err != nil {
		return "", fmt.Errorf("git diff --cached: %w", err)
	}
	return out, nil
}

// Range returns the diff for a revision range. With mergeBase set, a two-dot
// range is widened to three dots so the comparison starts at the merge base,
// matching what a pull request shows.
func Range(revRange string, mergeBase bool, opts Options) (string, error) {
	r := revRange
	if mergeBase && strings.Contains(r, "..") && !strings.Contains(r, "...") {
		r = strings.Replace(r, "..", "...", 1)
	}
	out, err := gitOutput(diffArgs(opts, r)...)
	if err != nil {
		return "", fmt.Errorf("git diff %s: %w", revRange, err)
	}
	return out, nil
}

// Since returns the diff from ref to HEAD. Used to narrow an incremental
// review to hunks touched after an earlier reviewed commit.
func Since(ref string, opts Options) (string, error) {
	out, err := gitOutput(diffArgs(opts, ref+"...HEAD")...)
	if err != nil {
		return "", fmt.Errorf("git diff %s...HEAD: %w", ref, err)
	}
	return out, nil
}

// Files lists the distinct changed paths named in raw diff text, in order of
// first appearance.
func Files(diffText string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(diffText, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			f := strings.TrimPrefix(line, "+++ b/")
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files
}

func diffArgs(opts Options, extra ...string) []string {
	args := []string{"diff"}
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	return append(args, extra...)
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
