package diff

import (
	"errors"
	"strings"
	"testing"
)

const sampleDiff = `diff --git a/internal/server.go b/internal/server.go
--- a/internal/server.go
+++ b/internal/server.go
@@ -10,3 +10,5 @@
 func handle(w http.ResponseWriter, r *http.Request) {
-	w.Write(body)
+	if _, err := w.Write(body); err != nil {
+		log.Println(err)
+	}
 }
@@ -30,3 +32,4 @@
 func shutdown() {
+	cancel()
 	srv.Close()
 }
`

func TestParse_SingleFile(t *testing.T) {
	files, skipped, err := Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("skipped = %v, want none", skipped)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}

	f := files[0]
	if f.Path != "internal/server.go" {
		t.Errorf("Path = %q, want internal/server.go", f.Path)
	}
	if f.Status != StatusModified {
		t.Errorf("Status = %q, want modified", f.Status)
	}
	if f.Language != "go" {
		t.Errorf("Language = %q, want go", f.Language)
	}
	if len(f.Hunks) != 2 {
		t.Fatalf("got %d hunks, want 2", len(f.Hunks))
	}
	if f.Additions != 4 || f.Deletions != 1 {
		t.Errorf("Additions/Deletions = %d/%d, want 4/1", f.Additions, f.Deletions)
	}

	h := f.Hunks[0]
	if h.OldStart != 10 || h.OldLines != 3 || h.NewStart != 10 || h.NewLines != 5 {
		t.Errorf("hunk header = -%d,%d +%d,%d, want -10,3 +10,5", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
	}
}

func TestParse_HunkLineCounts(t *testing.T) {
	files, _, err := Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	for hi, h := range files[0].Hunks {
		var added, removed, ctx int
		for _, l := range h.Lines {
			switch l.Kind {
			case LineAdded:
				added++
			case LineRemoved:
				removed++
			case LineContext:
				ctx++
			}
		}
		if added+ctx != h.NewLines {
			t.Errorf("hunk %d: added+context = %d, want NewLines %d", hi, added+ctx, h.NewLines)
		}
		if removed+ctx != h.OldLines {
			t.Errorf("hunk %d: removed+context = %d, want OldLines %d", hi, removed+ctx, h.OldLines)
		}
	}
}

func TestParse_OmittedCountDefaultsToOne(t *testing.T) {
	raw := `diff --git a/a.txt b/a.txt
--- a/a.txt
+++ b/a.txt
@@ -1 +1 @@
-old
+new
`
	files, _, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	h := files[0].Hunks[0]
	if h.OldLines != 1 || h.NewLines != 1 {
		t.Errorf("counts = %d/%d, want 1/1", h.OldLines, h.NewLines)
	}
}

func TestParse_BinaryFile(t *testing.T) {
	raw := `diff --git a/logo.png b/logo.png
Binary files a/logo.png and b/logo.png differ
`
	files, _, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	f := files[0]
	if !f.Binary {
		t.Error("Binary = false, want true")
	}
	if len(f.Hunks) != 0 {
		t.Errorf("binary file has %d hunks, want 0", len(f.Hunks))
	}
}

func TestParse_Rename(t *testing.T) {
	raw := `diff --git a/old/name.go b/new/name.go
similarity index 95%
rename from old/name.go
rename to new/name.go
--- a/old/name.go
+++ b/new/name.go
@@ -1,2 +1,2 @@
 package name
-var x = 1
+var x = 2
`
	files, _, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	f := files[0]
	if f.Status != StatusRenamed {
		t.Errorf("Status = %q, want renamed", f.Status)
	}
	if f.OldPath != "old/name.go" || f.Path != "new/name.go" {
		t.Errorf("paths = %q -> %q, want old/name.go -> new/name.go", f.OldPath, f.Path)
	}
}

func TestParse_AddedAndDeleted(t *testing.T) {
	raw := `diff --git a/fresh.go b/fresh.go
new file mode 100644
--- /dev/null
+++ b/fresh.go
@@ -0,0 +1,2 @@
+package fresh
+var y = 1
diff --git a/gone.go b/gone.go
deleted file mode 100644
--- a/gone.go
+++ /dev/null
@@ -1,1 +0,0 @@
-package gone
`
	files, _, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0].Status != StatusAdded {
		t.Errorf("files[0].Status = %q, want added", files[0].Status)
	}
	if files[1].Status != StatusDeleted {
		t.Errorf("files[1].Status = %q, want deleted", files[1].Status)
	}
}

func TestParse_MalformedSectionIsSkipped(t *testing.T) {
	raw := `diff --git a/bad.go b/bad.go
--- a/bad.go
+++ b/bad.go
@@ not a hunk header @@
+junk
diff --git a/good.go b/good.go
--- a/good.go
+++ b/good.go
@@ -1,1 +1,1 @@
-a
+b
`
	files, skipped, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(files) != 1 || files[0].Path != "good.go" {
		t.Fatalf("files = %v, want only good.go", files)
	}
	if len(skipped) != 1 || skipped[0].Path != "bad.go" {
		t.Fatalf("skipped = %v, want bad.go", skipped)
	}
	var mde *MalformedDiffError
	if !errors.As(skipped[0].Err, &mde) {
		t.Errorf("skipped error = %T, want *MalformedDiffError", skipped[0].Err)
	}
}

func TestParse_TruncatedHunkIsMalformed(t *testing.T) {
	raw := `diff --git a/short.go b/short.go
--- a/short.go
+++ b/short.go
@@ -1,5 +1,5 @@
 only one line
`
	_, skipped, err := Parse(raw)
	if !errors.Is(err, ErrNoUsableFiles) {
		t.Fatalf("err = %v, want ErrNoUsableFiles", err)
	}
	if len(skipped) != 1 {
		t.Fatalf("skipped = %v, want one entry", skipped)
	}
}

func TestParse_NoNewlineMarkerAfterHunk(t *testing.T) {
	raw := `diff --git a/a.txt b/a.txt
index 1111111..2222222 100644
--- a/a.txt
+++ b/a.txt
@@ -1,1 +1,1 @@
-old
+new
\ No newline at end of file
`
	files, skipped, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("skipped = %v, want none", skipped)
	}
	if len(files) != 1 || len(files[0].Hunks) != 1 {
		t.Fatalf("files = %+v, want one file with one hunk", files)
	}
	if files[0].Additions != 1 || files[0].Deletions != 1 {
		t.Errorf("additions/deletions = %d/%d, want 1/1", files[0].Additions, files[0].Deletions)
	}
}

func TestParse_NoNewlineMarkerBetweenHunks(t *testing.T) {
	raw := `diff --git a/a.txt b/a.txt
--- a/a.txt
+++ b/a.txt
@@ -1,1 +1,1 @@
-old
+new
\ No newline at end of file
@@ -10,1 +10,1 @@
-ten
+TEN
`
	files, skipped, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("skipped = %v, want none", skipped)
	}
	if len(files) != 1 || len(files[0].Hunks) != 2 {
		t.Fatalf("files = %+v, want one file with two hunks", files)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	files, skipped, err := Parse("   \n")
	if err != nil || files != nil || skipped != nil {
		t.Errorf("Parse(empty) = %v, %v, %v, want all nil", files, skipped, err)
	}
}

func TestParse_GarbageInput(t *testing.T) {
	_, _, err := Parse("this is not a diff at all\njust prose\n")
	if !errors.Is(err, ErrNoUsableFiles) {
		t.Errorf("err = %v, want ErrNoUsableFiles", err)
	}
}

func TestRender_RoundTrip(t *testing.T) {
	files, _, err := Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	rendered := Render(files[0])

	again, _, err := Parse(rendered)
	if err != nil {
		t.Fatalf("Parse(rendered) error: %v", err)
	}
	if len(again) != 1 || len(again[0].Hunks) != 2 {
		t.Fatalf("round trip lost structure: %+v", again)
	}
	if again[0].Additions != files[0].Additions || again[0].Deletions != files[0].Deletions {
		t.Errorf("round trip changed counts: %d/%d vs %d/%d",
			again[0].Additions, again[0].Deletions, files[0].Additions, files[0].Deletions)
	}
}

func TestNewSpan(t *testing.T) {
	files, _, err := Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	start, end, ok := NewSpan(files[0])
	if !ok {
		t.Fatal("NewSpan ok = false, want true")
	}
	if start != 10 || end != 35 {
		t.Errorf("span = %d-%d, want 10-35", start, end)
	}
}

func TestAddedLines(t *testing.T) {
	files, _, err := Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	added := AddedLines(files[0])
	if len(added) != 4 {
		t.Fatalf("got %d added lines, want 4", len(added))
	}
	if !strings.Contains(added[0], "w.Write(body)") {
		t.Errorf("added[0] = %q, want the write check", added[0])
	}
}

func TestLanguageHint(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"app/models.PY", "python"},
		{"web/index.tsx", "typescript"},
		{"README", ""},
		{"config.yaml", "yaml"},
	}
	for _, tt := range tests {
		if got := LanguageHint(tt.path); got != tt.want {
			t.Errorf("LanguageHint(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
