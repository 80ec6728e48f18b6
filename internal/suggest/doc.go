// Package suggest normalizes free-form model output into a ranked set of
// review suggestions.
//
// The pipeline is four pure stages: Parse extracts the structured YAML block
// and drops malformed entries one at a time (SchemaError), Validate checks
// each suggestion against the chunk plan that produced the prompt, Dedupe
// merges near-duplicates within a file, and RankAndLimit orders the
// survivors by severity and caps the count without ever dropping a critical
// finding in favor of a lower one.
package suggest
