// internal/providers/genai/completion.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"workspace-assistant/internal/common/config"
	"workspace-assistant/internal/common/logger"
)

var (
	ErrCompletionFailed  = errors.New("GENERATION_FAILED")
	ErrCompletionTimeout = errors.New("GENERATION_TIMEOUT")
)

// CompletionClient calls the provider's text generation endpoint. Unlike
// embeddings, completion failures are fatal to the query, so the caller
// decides what to do with the error.
type CompletionClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	maxRetries  int
	maxTokens   int
	temperature float64
	log         logger.Logger
}

type completionRequest struct {
	SystemPrompt string  `json:"system_prompt"`
	UserMessage  string  `json:"user_message"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

type completionResponse struct {
	Text string `json:"text"`
}

func NewCompletionClient(cfg config.GenAIConfig, log logger.Logger) *CompletionClient {
	return &CompletionClient{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		httpClient:  &http.Client{Timeout: time.Duration(cfg.CompletionTimeout) * time.Millisecond},
		maxRetries:  cfg.MaxRetries,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		log:         log,
	}
}

// Complete generates an answer from a system prompt and user message.
func (c *CompletionClient) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	body, err := json.Marshal(completionRequest{
		SystemPrompt: systemPrompt,
		UserMessage:  userMessage,
		MaxTokens:    c.maxTokens,
		Temperature:  c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrCompletionFailed, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(100*(1<<(attempt-2))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrCompletionTimeout
			}
		}

		text, err := c.doComplete(ctx, body)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ErrCompletionTimeout
		}
		lastErr = err
		c.log.WithError(err).Warn("completion attempt failed", map[string]interface{}{
			"attempt": attempt,
		})
	}
	return "", fmt.Errorf("%w: %v", ErrCompletionFailed, lastErr)
}

func (c *CompletionClient) doComplete(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ai/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generate endpoint returned %d: %s", resp.StatusCode, string(payload))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if out.Text == "" {
		return "", errors.New("generate response contained no text")
	}
	return out.Text, nil
}
