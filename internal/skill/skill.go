// Package skill loads review behavior templates. A skill is a directory
// holding a SKILL.md file: YAML frontmatter (name, description, triggers)
// followed by the instruction text handed to the prompt builder. Skills are
// resolved once per review and treated as opaque template values; they never
// influence chunking or normalization.
package skill

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFrontmatter is returned when SKILL.md has no parsable YAML
// frontmatter block.
var ErrInvalidFrontmatter = errors.New("invalid SKILL.md frontmatter")

// Skill is one loaded behavior template.
type Skill struct {
	Name         string
	Description  string
	Version      string
	Triggers     []string
	Instructions string
}

// Matches reports whether text mentions this skill by name or trigger.
func (s Skill) Matches(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, strings.ToLower(s.Name)) {
		return true
	}
	for _, trig := range s.Triggers {
		if strings.Contains(lower, strings.ToLower(trig)) {
			return true
		}
	}
	return false
}

type frontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Version     string   `yaml:"version"`
	Triggers    []string `yaml:"triggers"`
}

// ParseSkillMD splits SKILL.md content into frontmatter metadata and
// instruction text.
func ParseSkillMD(content string) (Skill, error) {
	if !strings.HasPrefix(content, "---") {
		return Skill{}, ErrInvalidFrontmatter
	}
	end := strings.Index(content[3:], "---")
	if end == -1 {
		return Skill{}, ErrInvalidFrontmatter
	}
	end += 3

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(content[3:end]), &fm); err != nil {
		return Skill{}, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}
	if fm.Name == "" {
		return Skill{}, fmt.Errorf("%w: missing name", ErrInvalidFrontmatter)
	}

	version := fm.Version
	if version == "" {
		version = "1.0.0"
	}
	return Skill{
		Name:         fm.Name,
		Description:  fm.Description,
		Version:      version,
		Triggers:     fm.Triggers,
		Instructions: strings.TrimSpace(content[end+3:]),
	}, nil
}

// Resolve returns the skill for name, preferring a repo-local override in
// overridesDir/<name>/SKILL.md over the built-in of the same name.
func Resolve(name, overridesDir string) (Skill, error) {
	if overridesDir != "" {
		path := filepath.Join(overridesDir, name, "SKILL.md")
		if data, err := os.ReadFile(path); err == nil {
			s, perr := ParseSkillMD(string(data))
			if perr != nil {
				return Skill{}, fmt.Errorf("loading %s: %w", path, perr)
			}
			return s, nil
		}
	}
	if s, ok := builtins[name]; ok {
		return s, nil
	}
	return Skill{}, fmt.Errorf("unknown skill %q", name)
}

// DefaultName is the skill used when the caller does not pick one.
const DefaultName = "code-review"

var builtins = map[string]Skill{
	"code-review": {
		Name:         "code-review",
		Description:  "Structured review of code diffs",
		Version:      "1.0.0",
		Triggers:     []string{"review", "pr"},
		Instructions: codeReviewInstructions,
	},
	"security-review": {
		Name:         "security-review",
		Description:  "Security-focused review of code diffs",
		Version:      "1.0.0",
		Triggers:     []string{"security", "audit"},
		Instructions: securityReviewInstructions,
	},
}

const codeReviewInstructions = `You are a strict, expert code reviewer.
Review only the changes shown in the diff. Focus on bugs, security issues
and performance problems introduced by the change; skip style nits unless
they hide a defect. Every suggestion must point at specific changed lines
and include a concrete fix.`

const securityReviewInstructions = `You are a security reviewer. Examine the
changed lines for injection, authentication and authorization flaws, secret
handling mistakes, unsafe deserialization, and missing input validation.
Report only issues introduced or made reachable by this change, with the
exact lines and a hardened replacement.`
