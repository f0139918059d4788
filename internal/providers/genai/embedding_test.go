package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"workspace-assistant/internal/common/config"
	"workspace-assistant/internal/common/logger"
)

func embedConfig(baseURL string) config.GenAIConfig {
	return config.GenAIConfig{
		BaseURL:       baseURL,
		APIKey:        "test-key",
		EmbedTimeout:  2000,
		MaxRetries:    2,
		EmbedCacheTTL: 60,
	}
}

func embedServer(t *testing.T, calls *int, failFirst int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		assert.Equal(t, "/api/ai/embed", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if *calls <= failFirst {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var req embedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Text)

		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
}

func TestEmbed_Success(t *testing.T) {
	calls := 0
	srv := embedServer(t, &calls, 0)
	defer srv.Close()

	c := NewEmbeddingClient(embedConfig(srv.URL), nil, logger.NewNoOpLogger())

	embedding, err := c.Embed(context.Background(), "hello world")

	assert.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
	assert.Equal(t, 1, calls)
}

func TestEmbed_RetriesTransientFailures(t *testing.T) {
	calls := 0
	srv := embedServer(t, &calls, 1)
	defer srv.Close()

	c := NewEmbeddingClient(embedConfig(srv.URL), nil, logger.NewNoOpLogger())

	embedding, err := c.Embed(context.Background(), "hello world")

	assert.NoError(t, err)
	assert.Len(t, embedding, 3)
	assert.Equal(t, 2, calls)
}

func TestEmbed_ExhaustedRetries(t *testing.T) {
	calls := 0
	srv := embedServer(t, &calls, 100)
	defer srv.Close()

	c := NewEmbeddingClient(embedConfig(srv.URL), nil, logger.NewNoOpLogger())

	_, err := c.Embed(context.Background(), "hello world")

	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Equal(t, 3, calls)
}

func TestEmbed_CacheHitSkipsHTTP(t *testing.T) {
	calls := 0
	srv := embedServer(t, &calls, 0)
	defer srv.Close()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cached, _ := json.Marshal([]float32{9, 8, 7})
	mr.Set(cacheKey("hello world"), string(cached))

	c := NewEmbeddingClient(embedConfig(srv.URL), cache, logger.NewNoOpLogger())

	embedding, err := c.Embed(context.Background(), "hello world")

	assert.NoError(t, err)
	assert.Equal(t, []float32{9, 8, 7}, embedding)
	assert.Equal(t, 0, calls)
}

func TestEmbed_CacheMissPopulatesCache(t *testing.T) {
	calls := 0
	srv := embedServer(t, &calls, 0)
	defer srv.Close()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c := NewEmbeddingClient(embedConfig(srv.URL), cache, logger.NewNoOpLogger())

	_, err := c.Embed(context.Background(), "hello world")
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)

	raw, err := mr.Get(cacheKey("hello world"))
	assert.NoError(t, err)

	var stored []float32
	assert.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, stored)
	assert.Positive(t, mr.TTL(cacheKey("hello world")))
}

func TestEmbed_CacheErrorFallsThroughToHTTP(t *testing.T) {
	calls := 0
	srv := embedServer(t, &calls, 0)
	defer srv.Close()

	cache, mock := redismock.NewClientMock()
	mock.ExpectGet(cacheKey("hello world")).SetErr(errors.New("connection refused"))

	c := NewEmbeddingClient(embedConfig(srv.URL), cache, logger.NewNoOpLogger())

	embedding, err := c.Embed(context.Background(), "hello world")

	assert.NoError(t, err)
	assert.Len(t, embedding, 3)
	assert.Equal(t, 1, calls)
}

func TestEmbed_CancelledContext(t *testing.T) {
	calls := 0
	srv := embedServer(t, &calls, 0)
	defer srv.Close()

	c := NewEmbeddingClient(embedConfig(srv.URL), nil, logger.NewNoOpLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Embed(ctx, "hello world")
	assert.ErrorIs(t, err, ErrEmbeddingTimeout)
}
