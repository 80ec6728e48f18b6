// Package redact strips secret-looking values from diff text before it is
// sent to a provider. Detection is heuristic: a set of regex rules for well
// known token shapes and credential assignments. Redaction happens after
// chunk selection so token estimates stay stable.
package redact
