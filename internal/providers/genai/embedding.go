// internal/providers/genai/embedding.go
package genai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"workspace-assistant/internal/common/config"
	"workspace-assistant/internal/common/logger"
)

var (
	ErrEmbeddingFailed  = errors.New("EMBEDDING_FAILED")
	ErrEmbeddingTimeout = errors.New("EMBEDDING_TIMEOUT")
)

// EmbeddingClient calls the provider's embedding endpoint with retries and
// keeps a Redis cache in front of it. The cache is best effort: any cache
// error falls through to the HTTP call.
type EmbeddingClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	cache      *redis.Client
	cacheTTL   time.Duration
	log        logger.Logger
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func NewEmbeddingClient(cfg config.GenAIConfig, cache *redis.Client, log logger.Logger) *EmbeddingClient {
	return &EmbeddingClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: time.Duration(cfg.EmbedTimeout) * time.Millisecond},
		maxRetries: cfg.MaxRetries,
		cache:      cache,
		cacheTTL:   time.Duration(cfg.EmbedCacheTTL) * time.Second,
		log:        log,
	}
}

// Embed returns the embedding vector for text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	if embedding, ok := c.fromCache(ctx, key); ok {
		return embedding, nil
	}

	embedding, err := c.embedWithRetry(ctx, text)
	if err != nil {
		return nil, err
	}

	c.toCache(ctx, key, embedding)
	return embedding, nil
}

func (c *EmbeddingClient) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrEmbeddingFailed, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(100*(1<<(attempt-2))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrEmbeddingTimeout
			}
		}

		embedding, err := c.doEmbed(ctx, body)
		if err == nil {
			return embedding, nil
		}
		if ctx.Err() != nil {
			return nil, ErrEmbeddingTimeout
		}
		lastErr = err
		c.log.WithError(err).Warn("embedding attempt failed", map[string]interface{}{
			"attempt": attempt,
		})
	}
	return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, lastErr)
}

func (c *EmbeddingClient) doEmbed(ctx context.Context, body []byte) ([]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ai/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embed endpoint returned %d: %s", resp.StatusCode, string(payload))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, errors.New("embed response contained no vector")
	}
	return out.Embedding, nil
}

func (c *EmbeddingClient) fromCache(ctx context.Context, key string) ([]float32, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Warn("embedding cache read failed", nil)
		}
		return nil, false
	}
	var embedding []float32
	if err := json.Unmarshal(raw, &embedding); err != nil {
		return nil, false
	}
	return embedding, true
}

func (c *EmbeddingClient) toCache(ctx context.Context, key string, embedding []float32) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(embedding)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.cacheTTL).Err(); err != nil {
		c.log.WithError(err).Warn("embedding cache write failed", nil)
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "ai:embed:" + hex.EncodeToString(sum[:])
}
