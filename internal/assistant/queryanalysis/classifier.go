// internal/assistant/queryanalysis/classifier.go
package queryanalysis

import (
	"strings"

	"workspace-assistant/internal/models"
)

// Analyze runs entity extraction and classification over a query and derives
// the downstream context requirements.
func Analyze(query string) models.QueryAnalysis {
	entities := ExtractEntities(query)
	queryType := classify(strings.ToLower(query), entities)

	return models.QueryAnalysis{
		Type:     queryType,
		Entities: entities,
		ContextRequirements: models.ContextRequirements{
			NeedsWorkspaceContext: queryType == models.QueryTypeWorkspaceInfo,
			NeedsChannelContext:   queryType == models.QueryTypeChannelContext || len(entities.Channels) > 0,
			NeedsUserContext:      queryType == models.QueryTypeUserContext || len(entities.Users) > 0,
			NeedsTimeContext:      entities.Timeframe != "",
		},
	}
}

// classify resolves the query type in two stages: explicit phrase patterns
// in priority order, then entity-based heuristics as a fallback.
func classify(lowered string, entities models.EntitySet) models.QueryType {
	for _, entry := range typePatterns {
		for _, re := range entry.Patterns {
			if re.MatchString(lowered) {
				return entry.Type
			}
		}
	}

	switch {
	case len(entities.Channels) > 0:
		return models.QueryTypeChannelContext
	case len(entities.Users) > 0:
		return models.QueryTypeUserContext
	case strings.Contains(lowered, "workspace"):
		return models.QueryTypeWorkspaceInfo
	}
	return models.QueryTypeGeneralAssistance
}

// WantsAscending reports whether a statistical query asks for the bottom of
// the ranking rather than the top.
func WantsAscending(query string) bool {
	lowered := strings.ToLower(query)
	return strings.Contains(lowered, "least") || strings.Contains(lowered, "fewest")
}
