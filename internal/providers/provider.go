package providers

import (
	"context"
	"fmt"
)

// CallRequest is one prompt sent to an LLM.
type CallRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// CallResponse is the raw model output.
type CallResponse struct {
	Content    string
	TokensUsed int
}

// Caller abstracts an LLM backend.
type Caller interface {
	Call(ctx context.Context, req CallRequest) (CallResponse, error)
	Name() string
}

// New creates a Caller by provider name.
func New(provider, model string) (Caller, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

const defaultMaxTokens = 4096
