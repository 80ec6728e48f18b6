package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

type rule struct {
	name string
	re   *regexp.Regexp
}

var rules = []rule{
	{"aws-access-key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws-secret-key", regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`)},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"anthropic-key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai-key", regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"bearer-token", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"private-key-block", regexp.MustCompile(`-----BEGIN\s+(?:[A-Z]+\s+)?PRIVATE KEY-----`)},
	{"api-key-assignment", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`)},
	{"credential-assignment", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`)},
	{"hex-key-assignment", regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// Secrets replaces every detected secret in text with [REDACTED].
func Secrets(text string) string {
	out := text
	for _, r := range rules {
		out = r.re.ReplaceAllString(out, placeholder)
	}
	return out
}

// sensitivePatterns name files whose entire contents are treated as secrets
// regardless of what the diff lines look like.
var sensitivePatterns = []string{
	".env",
	".env.*",
	"*.pem",
	"*.key",
	"*credentials*",
	"id_rsa",
	"id_ed25519",
}

// SensitivePath reports whether path names a file that should never reach a
// provider in cleartext.
func SensitivePath(path string) bool {
	base := filepath.Base(path)
	for _, pat := range sensitivePatterns {
		if ok, err := filepath.Match(pat, base); err == nil && ok {
			return true
		}
	}
	return false
}

// DiffText redacts a rendered diff. Secrets are masked everywhere, and the
// body of any sensitive file is dropped wholesale, keeping only its header
// line so the reviewer still sees that the file changed.
func DiffText(text string) string {
	lines := strings.Split(Secrets(text), "\n")
	var out []string
	dropping := false
	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git ") {
			dropping = false
			if path, ok := pathFromHeader(line); ok && SensitivePath(path) {
				dropping = true
				out = append(out, line, placeholder+" (sensitive file omitted)")
				continue
			}
		}
		if dropping {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func pathFromHeader(line string) (string, bool) {
	rest := strings.TrimPrefix(line, "diff --git a/")
	idx := strings.Index(rest, " b/")
	if idx < 0 {
		return "", false
	}
	return rest[idx+3:], true
}
