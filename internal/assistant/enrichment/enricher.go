// internal/assistant/enrichment/enricher.go
package enrichment

import (
	"context"
	"sync"

	"workspace-assistant/internal/common/logger"
	"workspace-assistant/internal/common/metrics"
	"workspace-assistant/internal/models"
)

// MetadataStore resolves channel and user display metadata in batches.
type MetadataStore interface {
	Channels(ctx context.Context, workspaceID string, ids []string) ([]models.ChannelInfo, error)
	Users(ctx context.Context, ids []string) ([]models.UserInfo, error)
}

// Enricher joins raw hits with channel and user metadata and drops hits
// that are not the latest version or have been deleted. Metadata lookup
// failures degrade: messages keep flowing with names left unresolved.
type Enricher struct {
	store MetadataStore
	log   logger.Logger
}

func NewEnricher(store MetadataStore, log logger.Logger) *Enricher {
	return &Enricher{store: store, log: log}
}

// Enrich returns message contexts in the same order as the input hits.
func (e *Enricher) Enrich(ctx context.Context, workspaceID string, hits []models.RawHit) []models.MessageContext {
	if len(hits) == 0 {
		return nil
	}

	channelIDs, userIDs := distinctIDs(hits)
	channels, users := e.lookup(ctx, workspaceID, channelIDs, userIDs)

	out := make([]models.MessageContext, 0, len(hits))
	for _, hit := range hits {
		if !hit.Metadata.IsLatest || hit.Metadata.IsDeleted {
			continue
		}

		content := hit.Content
		if hit.Metadata.OriginalMessageContent != "" {
			content = hit.Metadata.OriginalMessageContent
		}

		mc := models.MessageContext{
			Content:   content,
			CreatedAt: hit.Metadata.CreatedAt,
			ChannelID: hit.Metadata.ChannelID,
			UserID:    hit.Metadata.UserID,
			Version:   hit.Metadata.Version,
			IsLatest:  hit.Metadata.IsLatest,
			IsDeleted: hit.Metadata.IsDeleted,
		}
		if ch, ok := channels[hit.Metadata.ChannelID]; ok {
			mc.ChannelName = ch.Name
		}
		if u, ok := users[hit.Metadata.UserID]; ok {
			user := u
			mc.User = &user
		}
		out = append(out, mc)
	}
	return out
}

// lookup runs both metadata queries concurrently. Either side failing only
// costs display names, so errors are logged and swallowed.
func (e *Enricher) lookup(ctx context.Context, workspaceID string, channelIDs, userIDs []string) (map[string]models.ChannelInfo, map[string]models.UserInfo) {
	channels := make(map[string]models.ChannelInfo)
	users := make(map[string]models.UserInfo)

	var wg sync.WaitGroup
	var mu sync.Mutex

	if len(channelIDs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := e.store.Channels(ctx, workspaceID, channelIDs)
			if err != nil {
				metrics.ProviderFailures.WithLabelValues("metadata").Inc()
				e.log.WithError(err).Warn("channel metadata lookup failed", map[string]interface{}{
					"workspace_id": workspaceID,
				})
				return
			}
			mu.Lock()
			for _, ch := range found {
				channels[ch.ID] = ch
			}
			mu.Unlock()
		}()
	}

	if len(userIDs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := e.store.Users(ctx, userIDs)
			if err != nil {
				metrics.ProviderFailures.WithLabelValues("metadata").Inc()
				e.log.WithError(err).Warn("user metadata lookup failed", nil)
				return
			}
			mu.Lock()
			for _, u := range found {
				users[u.ID] = u
			}
			mu.Unlock()
		}()
	}

	wg.Wait()
	return channels, users
}

func distinctIDs(hits []models.RawHit) (channelIDs, userIDs []string) {
	seenCh := make(map[string]bool)
	seenUser := make(map[string]bool)

	for _, hit := range hits {
		if id := hit.Metadata.ChannelID; id != "" && !seenCh[id] {
			seenCh[id] = true
			channelIDs = append(channelIDs, id)
		}
		if id := hit.Metadata.UserID; id != "" && !seenUser[id] {
			seenUser[id] = true
			userIDs = append(userIDs, id)
		}
	}
	return channelIDs, userIDs
}
