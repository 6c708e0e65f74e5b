package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"cryptoscout/internal/domain/analysis"
	"cryptoscout/internal/infra/ai/prompt"
)

const defaultMaxTokens = 1024

// Client is one council backend speaking any OpenAI-compatible chat API
// (OpenRouter, DeepSeek, llama.cpp server, ...), selected by base URL.
type Client struct {
	client    *openai.Client
	id        string
	model     string
	temp      float32
	maxTokens int
}

func New(id, baseURL, apiKey, model string, temperature float64, maxTokens int) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if temperature == 0 {
		temperature = 0.3
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{
		client:    openai.NewClientWithConfig(cfg),
		id:        id,
		model:     model,
		temp:      float32(temperature),
		maxTokens: maxTokens,
	}
}

func (c *Client) ID() string { return c.id }

// Generate implements the analysis.Backend port. API-level failures are
// wrapped with analysis.ErrBackendRejected so the invoker can tell them
// apart from transport errors.
func (c *Client) Generate(ctx context.Context, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temp,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System()},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens.
	if strings.HasPrefix(c.model, "o1") || strings.HasPrefix(c.model, "o3") ||
		strings.HasPrefix(c.model, "o4") || strings.HasPrefix(c.model, "gpt-5") {
		req.MaxCompletionTokens = c.maxTokens
	} else {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: %s: %v", analysis.ErrBackendRejected, c.model, err)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", analysis.ErrBackendRejected, c.model)
	}
	return resp.Choices[0].Message.Content, nil
}
