// Package cli wires the sift commands together: review (local, staged,
// range, pr), config, cache, and version. Command handlers set the process
// exit code instead of calling os.Exit so tests can drive them directly.
package cli
