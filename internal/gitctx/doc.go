// Package gitctx extracts diffs and repository metadata by shelling out to
// git. It produces raw unified diff text; parsing, filtering and budgeting
// all happen downstream, so the functions here stay thin wrappers around the
// corresponding git invocations.
package gitctx
