package providers

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"
)

// Ollama calls an Ollama or LM Studio server through its OpenAI-compatible
// endpoint.
type Ollama struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOllama creates an Ollama caller. No API key is required by default.
func NewOllama(model string) (*Ollama, error) {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	// LM Studio and friends may require a key.
	apiKey := os.Getenv("SIFT_OLLAMA_API_KEY")

	return &Ollama{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL + "/v1/chat/completions",
		client:  &http.Client{Timeout: 300 * time.Second},
	}, nil
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Call(ctx context.Context, req CallRequest) (CallResponse, error) {
	return chatCompletions(ctx, o.client, o.baseURL, o.apiKey, o.model, req)
}
