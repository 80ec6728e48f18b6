// Package github talks to the GitHub REST API for pull request reviews.
//
// A review is published as a single issue comment on the PR. The comment
// carries a hidden HTML marker with the reviewed head SHA, so a later run
// can find the previous review, update the same comment in place, and
// review only the commits pushed since.
package github
