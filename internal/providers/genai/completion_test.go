package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"workspace-assistant/internal/common/config"
	"workspace-assistant/internal/common/logger"
)

func completionConfig(baseURL string) config.GenAIConfig {
	return config.GenAIConfig{
		BaseURL:           baseURL,
		APIKey:            "test-key",
		CompletionTimeout: 5000,
		MaxRetries:        2,
		MaxTokens:         800,
		Temperature:       0.7,
	}
}

func TestComplete_Success(t *testing.T) {
	var received completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(completionResponse{Text: "the answer"})
	}))
	defer srv.Close()

	c := NewCompletionClient(completionConfig(srv.URL), logger.NewNoOpLogger())

	text, err := c.Complete(context.Background(), "system prompt", "user message")

	assert.NoError(t, err)
	assert.Equal(t, "the answer", text)
	assert.Equal(t, "system prompt", received.SystemPrompt)
	assert.Equal(t, "user message", received.UserMessage)
	assert.Equal(t, 800, received.MaxTokens)
	assert.InDelta(t, 0.7, received.Temperature, 0.001)
}

func TestComplete_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(completionResponse{Text: "recovered"})
	}))
	defer srv.Close()

	c := NewCompletionClient(completionConfig(srv.URL), logger.NewNoOpLogger())

	text, err := c.Complete(context.Background(), "s", "u")

	assert.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 2, calls)
}

func TestComplete_ExhaustedRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCompletionClient(completionConfig(srv.URL), logger.NewNoOpLogger())

	_, err := c.Complete(context.Background(), "s", "u")

	assert.ErrorIs(t, err, ErrCompletionFailed)
	assert.Equal(t, 3, calls)
}

func TestComplete_EmptyTextIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completionResponse{})
	}))
	defer srv.Close()

	c := NewCompletionClient(completionConfig(srv.URL), logger.NewNoOpLogger())

	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrCompletionFailed)
}

func TestComplete_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := NewCompletionClient(completionConfig(srv.URL), logger.NewNoOpLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, "s", "u")
	assert.ErrorIs(t, err, ErrCompletionTimeout)
}
