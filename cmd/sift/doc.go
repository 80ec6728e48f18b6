// Sift reviews code changes by budgeting diff context for an LLM and
// normalizing the model's output into ranked review suggestions.
//
// It parses unified diffs, selects the files and hunks that fit a token
// budget (source code first, docs last), sends the selection to an LLM
// provider, and turns the structured YAML response into a deduplicated,
// severity-ranked review result.
//
// Usage:
//
//	sift review local                 # review working tree changes
//	sift review range main..HEAD      # review a revision range
//	sift review pr owner/repo 42      # review a GitHub pull request
//
// See https://github.com/siftlab/sift for full documentation.
package main
