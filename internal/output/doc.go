// Package output renders review reports in the supported formats: text for
// terminals, json for tooling, and markdown for PR comments.
package output
