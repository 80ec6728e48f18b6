// Package diff parses raw unified-diff text into structured per-file change
// records.
//
// Parsing is tolerant at the file level: a file section whose hunk headers
// cannot be read, or that ends without a clean boundary, is reported as a
// SkippedFile with a MalformedDiffError and the remaining sections are still
// parsed. Only a diff that yields zero usable files is a fatal condition
// (ErrNoUsableFiles), so a single corrupt section never blanks out a review.
//
// Parsed files can be rendered back to diff text with Render, which is how
// downstream components rebuild prompt content after hunk truncation.
package diff
