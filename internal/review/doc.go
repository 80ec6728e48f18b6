// Package review runs the full review pipeline: parse the diff, select
// files into the token budget, build prompts from the active skill, call
// the provider, and normalize the model's YAML output into a Report.
//
// The pipeline is strict about inputs and lenient about outputs. A diff
// with no usable files is a hard error; a model response with malformed
// entries just drops those entries and keeps the rest.
package review
