// Package chunk selects which parsed diff files fit into a model context
// budget and explains every omission.
//
// Selection is a deterministic single pass: excluded and binary files are
// dropped first, incremental mode intersects each file's hunks with the
// changes made since a reference commit, and the survivors are packed
// greedily by priority tier (source > config > tests > docs) with smaller
// files first inside a tier. A file that would overflow the remaining budget
// is truncated by dropping trailing hunks; if not even its first hunk fits,
// it is omitted with reason budget_exceeded.
//
// Identical inputs always produce a byte-identical Plan; callers rely on
// this for reproducible "no new changes" detection.
package chunk
