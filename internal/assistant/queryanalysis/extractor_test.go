package queryanalysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEntities_Channels(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "hash prefix",
			query:    "How many messages today in #general",
			expected: []string{"general"},
		},
		{
			name:     "hash prefix is case folded",
			query:    "What happened in #General-Updates",
			expected: []string{"general-updates"},
		},
		{
			name:     "channel keyword",
			query:    "show me channel engineering",
			expected: []string{"engineering"},
		},
		{
			name:     "in the X phrasing",
			query:    "what was said in the random channel",
			expected: []string{"random"},
		},
		{
			name:     "multiple channels deduplicated",
			query:    "compare #general with channel general and #random",
			expected: []string{"general", "random"},
		},
		{
			name:     "no channel",
			query:    "what can you do",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := ExtractEntities(tt.query)
			assert.Equal(t, tt.expected, entities.Channels)
		})
	}
}

func TestExtractEntities_Users(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "at mention",
			query:    "What did @alice say about deployment",
			expected: []string{"alice"},
		},
		{
			name:     "user keyword",
			query:    "recent activity for user bob",
			expected: []string{"bob"},
		},
		{
			name:     "from phrasing",
			query:    "messages from carol this week",
			expected: []string{"carol"},
		},
		{
			name:     "did X send phrasing without mention",
			query:    "how many messages did bob send",
			expected: []string{"bob"},
		},
		{
			name:     "timeframe word is not a user",
			query:    "messages from yesterday",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := ExtractEntities(tt.query)
			assert.Equal(t, tt.expected, entities.Users)
		})
	}
}

func TestExtractEntities_Timeframe(t *testing.T) {
	tests := []struct {
		query    string
		expected string
	}{
		{"How many messages today in #general", "today"},
		{"what happened yesterday", "yesterday"},
		{"summarize this week", "this week"},
		{"stats for last week", "last week"},
		{"activity over this month", "this month"},
		{"messages in the last 7 days", "last 7 days"},
		{"show me recent messages", "recent"},
		{"today beats yesterday in priority today", "today"},
		{"what can you do", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			entities := ExtractEntities(tt.query)
			assert.Equal(t, tt.expected, entities.Timeframe)
		})
	}
}
