// internal/providers/search/elasticsearch.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"

	"workspace-assistant/internal/common/logger"
	"workspace-assistant/internal/models"
)

var (
	ErrSearchFailed  = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout = errors.New("SEARCH_TIMEOUT")
)

// ESSearcher runs similarity search against the message index. With an
// embedding it issues a kNN query constrained by the metadata filter; with
// an empty embedding it falls back to a pure filter query sorted newest
// first.
type ESSearcher struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

func NewESSearcher(client *elasticsearch.Client, index string, log logger.Logger) *ESSearcher {
	return &ESSearcher{client: client, index: index, log: log}
}

type esHit struct {
	Source models.RawHit `json:"_source"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

func (s *ESSearcher) Search(ctx context.Context, embedding []float32, filter models.RetrievalFilter, limit int) ([]models.RawHit, error) {
	body, err := json.Marshal(buildQuery(embedding, filter, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: marshal query: %v", ErrSearchFailed, err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		payload, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("%w: search returned %s: %s", ErrSearchFailed, res.Status(), string(payload))
	}

	var decoded esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	hits := make([]models.RawHit, 0, len(decoded.Hits.Hits))
	for _, h := range decoded.Hits.Hits {
		hits = append(hits, h.Source)
	}
	return hits, nil
}

func buildQuery(embedding []float32, filter models.RetrievalFilter, limit int) map[string]interface{} {
	filters := metadataFilters(filter)

	if len(embedding) == 0 {
		return map[string]interface{}{
			"size": limit,
			"query": map[string]interface{}{
				"bool": map[string]interface{}{"filter": filters},
			},
			"sort": []map[string]interface{}{
				{"metadata.created_at": map[string]interface{}{"order": "desc"}},
			},
		}
	}

	return map[string]interface{}{
		"size": limit,
		"knn": map[string]interface{}{
			"field":          "embedding",
			"query_vector":   embedding,
			"k":              limit,
			"num_candidates": limit * 2,
			"filter":         filters,
		},
	}
}

func metadataFilters(filter models.RetrievalFilter) []map[string]interface{} {
	filters := []map[string]interface{}{
		{"term": map[string]interface{}{"metadata.workspace_id": filter.WorkspaceID}},
	}
	if filter.ChannelName != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"metadata.channel_name": filter.ChannelName},
		})
	}
	if filter.Username != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"metadata.username": filter.Username},
		})
	}

	createdAt := map[string]interface{}{}
	if filter.CreatedAtGTE != nil {
		createdAt["gte"] = filter.CreatedAtGTE
	}
	if filter.CreatedAtLTE != nil {
		createdAt["lte"] = filter.CreatedAtLTE
	}
	if len(createdAt) > 0 {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"metadata.created_at": createdAt},
		})
	}
	return filters
}
