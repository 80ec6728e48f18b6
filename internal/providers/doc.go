// Package providers implements the Caller interface for each supported LLM
// backend: Anthropic (Claude), OpenAI (GPT), and Ollama / LM Studio for
// local models.
//
// All backends share a retry helper with exponential back-off that retries
// rate limits and 5xx responses but fails fast on authentication errors.
// Base URLs are fields on each client so tests can point calls at a local
// httptest server.
//
// Use [New] to obtain a Caller by provider name and model string.
package providers
