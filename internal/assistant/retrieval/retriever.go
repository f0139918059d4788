// internal/assistant/retrieval/retriever.go
package retrieval

import (
	"context"

	"workspace-assistant/internal/common/logger"
	"workspace-assistant/internal/common/metrics"
	"workspace-assistant/internal/models"
)

// Embedder converts text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs a similarity search constrained by a metadata filter.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, filter models.RetrievalFilter, limit int) ([]models.RawHit, error)
}

// Retriever embeds the query and fetches candidate messages. Provider
// failures are transient by contract: they degrade to empty results instead
// of failing the whole query.
type Retriever struct {
	embedder Embedder
	searcher Searcher
	log      logger.Logger
}

func NewRetriever(embedder Embedder, searcher Searcher, log logger.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		log:      log,
	}
}

// Retrieve returns up to limit hits matching the filter. Aggregate query
// types are matched broadly, narrative types embed the query text itself.
func (r *Retriever) Retrieve(ctx context.Context, query string, analysis models.QueryAnalysis, filter models.RetrievalFilter, limit int) []models.RawHit {
	embedding := r.embed(ctx, embeddingText(query, analysis))

	hits, err := r.searcher.Search(ctx, embedding, filter, limit)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("search").Inc()
		r.log.WithError(err).Warn("search failed, returning no results", map[string]interface{}{
			"workspace_id": filter.WorkspaceID,
			"query_type":   string(analysis.Type),
		})
		return nil
	}
	return hits
}

func (r *Retriever) embed(ctx context.Context, text string) []float32 {
	embedding, err := r.embedder.Embed(ctx, text)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("embedding").Inc()
		r.log.WithError(err).Warn("embedding failed, falling back to filter-only search", nil)
		return nil
	}
	return embedding
}

// embeddingText picks what gets embedded. Aggregate queries do not care
// about semantic closeness to the question wording, so they use a broad
// probe phrase and lean on the filter instead.
func embeddingText(query string, analysis models.QueryAnalysis) string {
	if analysis.Type.IsAggregate() {
		return "messages in channel"
	}
	if query == "" {
		return "recent messages"
	}
	return query
}
