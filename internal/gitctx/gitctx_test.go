package gitctx

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFiles(t *testing.T) {
	diff := `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
+import "fmt"
diff --git a/util.go b/util.go
--- a/util.go
+++ b/util.go
@@ -5,3 +5,4 @@
+func helper() {}
`
	files := Files(diff)
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0] != "main.go" || files[1] != "util.go" {
		t.Errorf("Files = %v, want [main.go util.go]", files)
	}
}

func TestFiles_Dedup(t *testing.T) {
	files := Files("+++ b/main.go\n+++ b/main.go\n")
	if len(files) != 1 {
		t.Errorf("got %d files, want 1", len(files))
	}
}

func TestFiles_Empty(t *testing.T) {
	if files := Files(""); len(files) != 0 {
		t.Errorf("got %d files from empty diff, want 0", len(files))
	}
}

func TestDiffArgs(t *testing.T) {
	args := diffArgs(Options{ContextLines: 5}, "HEAD")
	want := []string{"diff", "-U5", "HEAD"}
	if len(args) != len(want) {
		t.Fatalf("diffArgs = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestDiffArgs_NoContext(t *testing.T) {
	for _, a := range diffArgs(Options{}, "--cached") {
		if strings.HasPrefix(a, "-U") {
			t.Errorf("unexpected -U flag with ContextLines=0: %v", a)
		}
	}
}

// setupTestRepo creates a temp git repo with an initial commit and returns
// its path.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) string {
		t.Helper()
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test",
			"GIT_AUTHOR_EMAIL=test@test.com",
			"GIT_COMMITTER_NAME=test",
			"GIT_COMMITTER_EMAIL=test@test.com",
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("command %v failed: %v\n%s", args, err, out)
		}
		return strings.TrimSpace(string(out))
	}

	run("git", "init")
	run("git", "checkout", "-b", "main")
	os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644)
	run("git", "add", "-A")
	run("git", "commit", "-m", "init")

	return dir
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestDescribe(t *testing.T) {
	dir := setupTestRepo(t)
	chdir(t, dir)

	meta, err := Describe()
	if err != nil {
		t.Fatalf("Describe error: %v", err)
	}
	if meta.Branch != "main" {
		t.Errorf("Branch = %q, want main", meta.Branch)
	}
	if len(meta.Head) != 40 {
		t.Errorf("Head = %q, want a full SHA", meta.Head)
	}
}

func TestWorking(t *testing.T) {
	dir := setupTestRepo(t)
	chdir(t, dir)

	os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() { println(1) }\n"), 0o644)

	out, err := Working(Options{})
	if err != nil {
		t.Fatalf("Working error: %v", err)
	}
	if !strings.Contains(out, "+++ b/main.go") {
		t.Errorf("diff missing changed file:\n%s", out)
	}
	if !strings.Contains(out, "+func main() { println(1) }") {
		t.Errorf("diff missing added line:\n%s", out)
	}
}

func TestStaged(t *testing.T) {
	dir := setupTestRepo(t)
	chdir(t, dir)

	os.WriteFile(filepath.Join(dir, "new.go"), []byte("package main\n"), 0o644)
	cmd := exec.Command("git", "add", "new.go")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git add failed: %v\n%s", err, out)
	}

	out, err := Staged(Options{})
	if err != nil {
		t.Fatalf("Staged error: %v", err)
	}
	if !strings.Contains(out, "+++ b/new.go") {
		t.Errorf("staged diff missing new file:\n%s", out)
	}

	working, err := Working(Options{})
	if err != nil {
		t.Fatalf("Working error: %v", err)
	}
	if !strings.Contains(working, "new.go") {
		t.Error("Working should include staged changes")
	}
}

func TestRangeAndSince(t *testing.T) {
	dir := setupTestRepo(t)
	chdir(t, dir)

	run := func(args ...string) string {
		t.Helper()
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test",
			"GIT_AUTHOR_EMAIL=test@test.com",
			"GIT_COMMITTER_NAME=test",
			"GIT_COMMITTER_EMAIL=test@test.com",
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("command %v failed: %v\n%s", args, err, out)
		}
		return strings.TrimSpace(string(out))
	}

	base := run("git", "rev-parse", "HEAD")

	os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\n"), 0o644)
	run("git", "add", "a.go")
	run("git", "commit", "-m", "add a.go")

	out, err := Range(base+"..HEAD", false, Options{})
	if err != nil {
		t.Fatalf("Range error: %v", err)
	}
	if !strings.Contains(out, "+++ b/a.go") {
		t.Errorf("range diff missing a.go:\n%s", out)
	}

	since, err := Since(base, Options{})
	if err != nil {
		t.Fatalf("Since error: %v", err)
	}
	if !strings.Contains(since, "a.go") {
		t.Errorf("since diff missing a.go:\n%s", since)
	}
}

func TestRange_MergeBaseRewrite(t *testing.T) {
	dir := setupTestRepo(t)
	chdir(t, dir)

	// HEAD..HEAD with merge base becomes HEAD...HEAD, both yield empty diffs.
	out, err := Range("HEAD..HEAD", true, Options{})
	if err != nil {
		t.Fatalf("Range error: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("empty range produced output: %q", out)
	}
}
