package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI generates text with the Chat Completions API.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates an OpenAI generator. OPENAI_API_KEY must be set;
// GITGUARD_OPENAI_BASE_URL overrides the endpoint.
func NewOpenAI(model string) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, &authError{message: "OPENAI_API_KEY environment variable is not set"}
	}
	return &OpenAI{
		apiKey:  key,
		model:   model,
		baseURL: envOr("GITGUARD_OPENAI_BASE_URL", defaultOpenAIURL),
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, req Request) (Response, error) {
	resp, err := chatCompletion(ctx, o.client, o.baseURL, o.apiKey, o.model, req)
	if err != nil {
		return Response{}, fmt.Errorf("openai: %w", err)
	}
	return resp, nil
}

// chatCompletion performs one OpenAI-compatible chat request. An empty
// apiKey sends no Authorization header.
func chatCompletion(ctx context.Context, client *http.Client, url, apiKey, model string, req Request) (Response, error) {
	body := openaiRequest{
		Model: model,
		Messages: []openaiMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens: maxTokens(req),
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	header := http.Header{}
	if apiKey != "" {
		header.Set("Authorization", "Bearer "+apiKey)
	}

	var result openaiResponse
	if err := postJSON(ctx, client, url, header, body, &result); err != nil {
		return Response{}, err
	}
	if len(result.Choices) == 0 {
		return Response{}, errors.New("no choices in response")
	}
	if result.Choices[0].Message.Content == "" {
		return Response{}, errors.New("empty text content in API response")
	}
	return Response{
		Content:    result.Choices[0].Message.Content,
		TokensUsed: result.Usage.TotalTokens,
	}, nil
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}
