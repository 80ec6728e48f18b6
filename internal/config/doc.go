// Package config loads and merges sift configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SIFT_PROVIDER, SIFT_BUDGET_TOKENS, etc.)
//  3. Config file ($XDG_CONFIG_HOME/sift/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [Save] to persist one.
package config
