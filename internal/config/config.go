package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Config represents the sift configuration.
type Config struct {
	Provider        string         `json:"provider"`
	Model           string         `json:"model"`
	Format          string         `json:"format"`
	BudgetTokens    int            `json:"budgetTokens"`
	MaxSuggestions  int            `json:"maxSuggestions"` // 0 = auto
	SeverityFloor   string         `json:"severityFloor,omitempty"`
	ExcludePatterns []string       `json:"excludePatterns"`
	Skill           string         `json:"skill"`
	SkillsDir       string         `json:"skillsDir,omitempty"`
	Categories      CategoryConfig `json:"categories"`
	Cache           CacheConfig    `json:"cache"`
	Privacy         PrivacyConfig  `json:"privacy"`
}

// CategoryConfig toggles suggestion categories.
type CategoryConfig struct {
	Bug         bool `json:"bug"`
	Performance bool `json:"performance"`
	Security    bool `json:"security"`
}

// CacheConfig controls response caching.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool `json:"redactSecrets"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:       "anthropic",
		Model:          "claude-sonnet-4-20250514",
		Format:         "text",
		BudgetTokens:   24000,
		MaxSuggestions: 0, // auto
		ExcludePatterns: []string{
			"*.lock",
			"*.min.js",
			"*.min.css",
			"*.map",
			"package-lock.json",
			"yarn.lock",
			"pnpm-lock.yaml",
			"vendor/**",
			"**/*.pb.go",
			"**/*.gen.go",
		},
		Skill:      "code-review",
		Categories: CategoryConfig{Bug: true, Performance: true, Security: true},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{RedactSecrets: true},
	}
}

// ConfigDir returns the platform-appropriate config directory for sift.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sift"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "sift"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "sift"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "sift"), nil
	default:
		return filepath.Join(home, ".config", "sift"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags (only non-zero values
// should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.BudgetTokens <= 0 {
		return fmt.Errorf("budgetTokens must be positive, got %d", cfg.BudgetTokens)
	}
	switch cfg.SeverityFloor {
	case "", "critical", "high", "medium", "low":
	default:
		return fmt.Errorf("invalid severityFloor %q", cfg.SeverityFloor)
	}
	return nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.BudgetTokens > 0 {
		dst.BudgetTokens = src.BudgetTokens
	}
	if src.MaxSuggestions > 0 {
		dst.MaxSuggestions = src.MaxSuggestions
	}
	if src.SeverityFloor != "" {
		dst.SeverityFloor = src.SeverityFloor
	}
	if len(src.ExcludePatterns) > 0 {
		dst.ExcludePatterns = src.ExcludePatterns
	}
	if src.Skill != "" {
		dst.Skill = src.Skill
	}
	if src.SkillsDir != "" {
		dst.SkillsDir = src.SkillsDir
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// Bool fields from file: JSON's zero value makes unset and false
	// indistinguishable in a simple merge, so file values can only enable.
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	dst.Categories.Bug = src.Categories.Bug || dst.Categories.Bug
	dst.Categories.Performance = src.Categories.Performance || dst.Categories.Performance
	dst.Categories.Security = src.Categories.Security || dst.Categories.Security
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("SIFT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("SIFT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SIFT_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("SIFT_SEVERITY_FLOOR"); v != "" {
		cfg.SeverityFloor = v
	}
	if v := os.Getenv("SIFT_SKILL"); v != "" {
		cfg.Skill = v
	}
	if v := os.Getenv("SIFT_BUDGET_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BudgetTokens = n
		}
	}
	if v := os.Getenv("SIFT_MAX_SUGGESTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxSuggestions = n
		}
	}
	if v := os.Getenv("SIFT_EXCLUDE"); v != "" {
		cfg.ExcludePatterns = splitList(v)
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["severityFloor"]; ok && v != "" {
		cfg.SeverityFloor = v
	}
	if v, ok := overrides["skill"]; ok && v != "" {
		cfg.Skill = v
	}
	if v, ok := overrides["skillsDir"]; ok && v != "" {
		cfg.SkillsDir = v
	}
	if v, ok := overrides["budgetTokens"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BudgetTokens = n
		}
	}
	if v, ok := overrides["maxSuggestions"]; ok && v != "" {
		if v == "auto" {
			cfg.MaxSuggestions = 0
		} else if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxSuggestions = n
		}
	}
	if v, ok := overrides["exclude"]; ok && v != "" {
		cfg.ExcludePatterns = append(cfg.ExcludePatterns, splitList(v)...)
	}
	if v, ok := overrides["noCache"]; ok && v == "true" {
		cfg.Cache.Enabled = false
	}
	if v, ok := overrides["noRedact"]; ok && v == "true" {
		cfg.Privacy.RedactSecrets = false
	}
}

// SetField sets a single config field by key name, used by `sift config set`.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "skill":
		cfg.Skill = value
	case "skillsDir":
		cfg.SkillsDir = value
	case "severityFloor":
		cfg.SeverityFloor = value
	case "budgetTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("budgetTokens must be a number: %q", value)
		}
		cfg.BudgetTokens = n
	case "maxSuggestions":
		if value == "auto" {
			cfg.MaxSuggestions = 0
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxSuggestions must be a number or \"auto\": %q", value)
		}
		cfg.MaxSuggestions = n
	case "excludePatterns":
		cfg.ExcludePatterns = splitList(value)
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %q", value)
		}
		cfg.Cache.Enabled = b
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be a number: %q", value)
		}
		cfg.Cache.TTLSeconds = n
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be a boolean: %q", value)
		}
		cfg.Privacy.RedactSecrets = b
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
