// cmd/assistant-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"workspace-assistant/internal/assistant"
	"workspace-assistant/internal/assistant/enrichment"
	"workspace-assistant/internal/assistant/filter"
	"workspace-assistant/internal/assistant/retrieval"
	"workspace-assistant/internal/common/config"
	"workspace-assistant/internal/common/database"
	"workspace-assistant/internal/common/logger"
	"workspace-assistant/internal/common/observability"
	"workspace-assistant/internal/providers/genai"
	"workspace-assistant/internal/providers/metadata"
	"workspace-assistant/internal/providers/search"
	"workspace-assistant/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assistant server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("assistant-server")
	defer obs.Shutdown()
	if cfg.Tracing.Enabled {
		obs.EnableTracing("assistant-server", cfg.Tracing.JaegerEndpoint)
	}

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var es *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return es.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		// Redis only backs the embedding cache; run without it.
		zapLog.Warn("redis unavailable, embedding cache disabled", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Wire providers and pipeline ---
	embedder := genai.NewEmbeddingClient(cfg.APIs.GenAI, redisClientOrNil(rdb), log)
	completer := genai.NewCompletionClient(cfg.APIs.GenAI, log)
	searcher := search.NewESSearcher(es.Client, cfg.Database.Elasticsearch.Index, log)
	store := metadata.NewPostgresStore(pg.DB, log)

	pipeline := assistant.NewPipeline(
		filter.NewBuilder(cfg.Retrieval),
		retrieval.NewRetriever(embedder, searcher, log),
		enrichment.NewEnricher(store, log),
		completer,
		log,
	)

	srv, err := server.New(cfg.Server, pipeline, log)
	if err != nil {
		zapLog.Fatal("server setup failed", zap.Error(err))
	}

	srv.AddHealthCheck("postgres", pg.Ping)
	srv.AddHealthCheck("elasticsearch", func(context.Context) error { return es.Ping() })
	if rdb != nil {
		srv.AddHealthCheck("redis", rdb.Ping)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			zapLog.Error("server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("assistant server stopped")
}

func redisClientOrNil(c *database.RedisClient) *redis.Client {
	if c == nil {
		return nil
	}
	return c.Client
}
