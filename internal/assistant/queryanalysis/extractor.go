// internal/assistant/queryanalysis/extractor.go
package queryanalysis

import (
	"regexp"
	"strings"

	"workspace-assistant/internal/models"
)

// ExtractEntities pulls channel names, usernames and a timeframe phrase out
// of a free-form query. Matching is case-insensitive and results are
// lower-cased and de-duplicated, preserving first-seen order.
func ExtractEntities(query string) models.EntitySet {
	lowered := strings.ToLower(query)

	return models.EntitySet{
		Channels:  collectMatches(lowered, channelPatterns),
		Users:     collectMatches(lowered, userPatterns),
		Timeframe: firstTimeframe(lowered),
	}
}

func collectMatches(lowered string, patterns []*regexp.Regexp) []string {
	var out []string
	seen := make(map[string]bool)

	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(lowered, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" || entityStopwords[name] || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func firstTimeframe(lowered string) string {
	for _, re := range timeframePatterns {
		if m := re.FindString(lowered); m != "" {
			return m
		}
	}
	return ""
}
