// internal/models/query.go
package models

import "time"

// QueryType classifies what kind of answer a workspace question expects.
// It drives the retrieval result cap, the instruction bundle and whether
// the answer is computed (aggregate) or generated (narrative).
type QueryType string

const (
	QueryTypeWorkspaceInfo     QueryType = "workspace_info"
	QueryTypeChannelContext    QueryType = "channel_context"
	QueryTypeUserContext       QueryType = "user_context"
	QueryTypeGeneralAssistance QueryType = "general_assistance"
	QueryTypeCount             QueryType = "count_query"
	QueryTypeStatistical       QueryType = "statistical_query"
	QueryTypeSummary           QueryType = "summary_query"
	QueryTypeTopic             QueryType = "topic_query"
)

// IsAggregate reports whether the query is answered by computed numbers
// instead of a generated completion.
func (t QueryType) IsAggregate() bool {
	return t == QueryTypeCount || t == QueryTypeStatistical
}

// EntitySet holds the channel names, usernames and timeframe phrase pulled
// out of the raw query text. Channel and user values are lower-cased and
// deduplicated. Timeframe keeps the first matched raw phrase verbatim; it
// is interpreted later by the filter builder, not here.
type EntitySet struct {
	Channels  []string `json:"channels"`
	Users     []string `json:"users"`
	Timeframe string   `json:"timeframe,omitempty"`
}

// ContextRequirements marks which kinds of context the generation step
// should be told to consider.
type ContextRequirements struct {
	NeedsWorkspaceContext bool `json:"needsWorkspaceContext"`
	NeedsChannelContext   bool `json:"needsChannelContext"`
	NeedsUserContext      bool `json:"needsUserContext"`
	NeedsTimeContext      bool `json:"needsTimeContext"`
}

// QueryAnalysis is the immutable classification result, produced once per
// request.
type QueryAnalysis struct {
	Type                QueryType           `json:"type"`
	Entities            EntitySet           `json:"entities"`
	ContextRequirements ContextRequirements `json:"contextRequirements"`
}

// RetrievalFilter is the structured filter handed to the similarity-search
// provider. Username is a raw string; resolving it to a user id is the
// provider's responsibility.
type RetrievalFilter struct {
	WorkspaceID  string     `json:"workspace_id"`
	ChannelName  string     `json:"channel_name,omitempty"`
	Username     string     `json:"username,omitempty"`
	CreatedAtGTE *time.Time `json:"created_at_gte,omitempty"`
	CreatedAtLTE *time.Time `json:"created_at_lte,omitempty"`
}

// UserActivity is one row of a per-user statistics leaderboard.
type UserActivity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Count    int    `json:"count"`
}

// AggregatedResult carries the computed answer for count and statistical
// queries. Exactly one of the two fields is populated.
type AggregatedResult struct {
	Count      *int           `json:"count,omitempty"`
	Statistics []UserActivity `json:"statistics,omitempty"`
}

// InstructionBundle is the static role and behavior text selected by query
// type and composed into the generation system prompt.
type InstructionBundle struct {
	Role                string
	Base                string
	FormatInstructions  string
	ContextInstructions string
	ErrorInstructions   string
}
