package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cryptoscout/internal/domain/analysis"
	"cryptoscout/internal/infra/ai/prompt"
)

// Client talks to a local Ollama daemon through its native /api/chat
// endpoint. The chat options (num_predict in particular) are not reachable
// through the OpenAI compatibility layer, hence the dedicated client.
type Client struct {
	id         string
	baseURL    string
	model      string
	temp       float64
	numPredict int
	httpc      *http.Client
}

func New(id, baseURL, model string, temperature float64, numPredict int) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if temperature == 0 {
		temperature = 0.3
	}
	if numPredict <= 0 {
		numPredict = 512
	}
	return &Client{
		id:         id,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		temp:       temperature,
		numPredict: numPredict,
		// No client timeout: the per-call deadline comes from ctx.
		httpc: &http.Client{},
	}
}

func (c *Client) ID() string { return c.id }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Generate implements the analysis.Backend port.
func (c *Client) Generate(ctx context.Context, userPrompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System()},
			{Role: "user", Content: userPrompt},
		},
		Stream:  false,
		Options: chatOptions{Temperature: c.temp, NumPredict: c.numPredict},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: ollama %s: status %d: %s",
			analysis.ErrBackendRejected, c.model, resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode ollama response: %v", analysis.ErrBackendRejected, err)
	}
	return out.Message.Content, nil
}
