package llmquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/supplysync/supplysync-backend/pkg/config"
)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response   string `json:"response"`
	Model      string `json:"model"`
	CreatedAt  string `json:"created_at"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`
}

// OllamaClient talks to an Ollama-compatible generate endpoint.
type OllamaClient struct {
	http  *http.Client
	url   string
	model string
}

// NewOllamaClient builds a generation client from config. The per-request
// deadline is carried by the caller's context, so the underlying HTTP
// client has no timeout of its own.
func NewOllamaClient(cfg config.LLMConfig) (*OllamaClient, error) {
	if cfg.GenerateURL == "" {
		return nil, fmt.Errorf("generate url is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &OllamaClient{
		http:  &http.Client{},
		url:   cfg.GenerateURL,
		model: cfg.Model,
	}, nil
}

// Model returns the configured model name.
func (c *OllamaClient) Model() string {
	return c.model
}

// Generate sends the prompt and returns the raw generated text.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("generation service returned %d: %s", resp.StatusCode, string(payload))
	}

	var decoded generateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return decoded.Response, nil
}
