// internal/assistant/aggregation/aggregator.go
package aggregation

import (
	"sort"

	"workspace-assistant/internal/models"
)

// topUsers caps how many entries a statistical ranking returns.
const topUsers = 5

// Aggregate computes the aggregate result for count and statistical query
// types over already-enriched messages. Other query types return nil.
func Aggregate(queryType models.QueryType, messages []models.MessageContext, ascending bool) *models.AggregatedResult {
	switch queryType {
	case models.QueryTypeCount:
		count := len(messages)
		return &models.AggregatedResult{Count: &count}
	case models.QueryTypeStatistical:
		return &models.AggregatedResult{Statistics: rankUsers(messages, ascending)}
	default:
		return nil
	}
}

// rankUsers groups messages per user and orders the groups by message count,
// descending by default. Ties keep first-occurrence order, which makes the
// ranking deterministic for identical inputs.
func rankUsers(messages []models.MessageContext, ascending bool) []models.UserActivity {
	counts := make(map[string]*models.UserActivity)
	var order []string

	for _, mc := range messages {
		if mc.UserID == "" {
			continue
		}
		entry, ok := counts[mc.UserID]
		if !ok {
			entry = &models.UserActivity{UserID: mc.UserID}
			counts[mc.UserID] = entry
			order = append(order, mc.UserID)
		}
		entry.Count++
		if entry.Username == "" && mc.User != nil {
			entry.Username = mc.User.Username
		}
	}

	ranked := make([]models.UserActivity, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, *counts[id])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ascending {
			return ranked[i].Count < ranked[j].Count
		}
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > topUsers {
		ranked = ranked[:topUsers]
	}
	return ranked
}
