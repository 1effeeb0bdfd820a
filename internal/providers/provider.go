package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Request is the prompt sent to a model.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Response is the raw text a model returned.
type Response struct {
	Content    string
	TokensUsed int
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

const defaultMaxTokens = 1024

// New creates a generator by provider name. An empty model selects the
// provider's default.
func New(provider, model string) (Generator, error) {
	if model == "" {
		model = DefaultModel(provider)
	}
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini", "google":
		return NewGemini(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case "anthropic":
		return "claude-3-5-haiku-latest"
	case "openai":
		return "gpt-4o-mini"
	case "gemini", "google":
		return "gemini-2.0-flash"
	case "ollama", "lmstudio":
		return "llama3"
	default:
		return ""
	}
}

// Names lists the accepted provider names.
func Names() []string {
	return []string{"anthropic", "openai", "gemini", "ollama"}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
