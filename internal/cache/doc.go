// Package cache provides a file-based cache for LLM review responses.
//
// Entries are keyed by a SHA-256 hash of the provider name, model, and full
// prompt text, which has already been through secret redaction by the time
// it reaches the cache. Each entry stores the raw model output with a
// creation timestamp and TTL; expired entries are skipped on read.
//
// [WrapCaller] decorates a providers.Caller so repeated reviews of the same
// diff return the stored response without a network call.
//
// The default cache directory is $XDG_CACHE_HOME/sift (or the OS-appropriate
// equivalent).
package cache
