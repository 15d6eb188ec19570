package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kannou1/PFE/internal/config"
	"github.com/kannou1/PFE/internal/types"
)

// OpenAIAdapter speaks the OpenAI chat completions API, which Ollama also serves.
type OpenAIAdapter struct {
	cfg config.CompletionConfig
}

func NewOpenAIAdapter(cfg config.CompletionConfig) *OpenAIAdapter {
	return &OpenAIAdapter{cfg: cfg}
}

func (a *OpenAIAdapter) Name() string { return "openai" }

func (a *OpenAIAdapter) BuildRequest(ctx context.Context, req Request) (*http.Request, error) {
	body := openAIRequestBody{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		Stream:      false,
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = &req.MaxTokens
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal openai request: %w", err)
	}

	url := strings.TrimRight(a.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}
	for k, v := range a.cfg.Headers {
		if v != "" {
			httpReq.Header.Set(k, v)
		}
	}
	return httpReq, nil
}

func (a *OpenAIAdapter) ParseResponse(body []byte) (string, error) {
	var resp openAIResponseBody
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrResponseShape, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return "", ErrResponseShape
	}
	return resp.Choices[0].Message.Content, nil
}

type openAIRequestBody struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
	Stream      bool            `json:"stream"`
}

type openAIResponseBody struct {
	Model   string `json:"model"`
	Choices []struct {
		Index        int            `json:"index"`
		Message      *types.Message `json:"message"`
		FinishReason string         `json:"finish_reason"`
	} `json:"choices"`
}
