// internal/assistant/filter/builder.go
package filter

import (
	"time"

	"workspace-assistant/internal/common/config"
	"workspace-assistant/internal/models"
)

// Builder turns a query analysis plus request context into a retrieval
// filter and a result cap. Now is injectable so timeframe windows can be
// pinned in tests.
type Builder struct {
	cfg config.RetrievalConfig
	Now func() time.Time
}

func NewBuilder(cfg config.RetrievalConfig) *Builder {
	return &Builder{cfg: cfg, Now: time.Now}
}

// Build constructs the filter. The caller's channel always wins over any
// channel mentioned in the query text, and only the first extracted user is
// used. Timeframe phrases other than "today" and "recent" produce no time
// bounds; retrieval stays unbounded rather than guessing at windows.
func (b *Builder) Build(analysis models.QueryAnalysis, workspaceID, channelName string) models.RetrievalFilter {
	f := models.RetrievalFilter{WorkspaceID: workspaceID}

	switch {
	case channelName != "":
		f.ChannelName = channelName
	case len(analysis.Entities.Channels) > 0:
		f.ChannelName = analysis.Entities.Channels[0]
	}

	if len(analysis.Entities.Users) > 0 {
		f.Username = analysis.Entities.Users[0]
	}

	switch analysis.Entities.Timeframe {
	case "today":
		now := b.Now()
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := start.Add(24*time.Hour - time.Millisecond)
		f.CreatedAtGTE = &start
		f.CreatedAtLTE = &end
	case "recent":
		now := b.Now()
		start := now.Add(-24 * time.Hour)
		f.CreatedAtGTE = &start
		f.CreatedAtLTE = &now
	}

	return f
}

// ResultCap returns the retrieval limit for a query type. Aggregate types
// scan deep; narrative types only need what fits a generation prompt.
func (b *Builder) ResultCap(queryType models.QueryType) int {
	switch queryType {
	case models.QueryTypeCount:
		return b.cfg.CountLimit
	case models.QueryTypeStatistical:
		return b.cfg.StatisticalLimit
	case models.QueryTypeChannelContext:
		return b.cfg.ChannelLimit
	default:
		return b.cfg.DefaultLimit
	}
}
