// internal/models/request.go
package models

// RequestUser is the optional identity of the asking user, supplied by the
// chat UI.
type RequestUser struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// AssistantRequest is the caller-facing request body.
type AssistantRequest struct {
	Message     string       `json:"message"`
	WorkspaceID string       `json:"workspace_id"`
	UserID      string       `json:"user_id"`
	ChannelName string       `json:"channel_name,omitempty"`
	User        *RequestUser `json:"user,omitempty"`
}

// ResponseMetadata describes how the answer was produced.
type ResponseMetadata struct {
	QueryType        QueryType         `json:"queryType"`
	MessageCount     *int              `json:"messageCount,omitempty"`
	AggregatedResult *AggregatedResult `json:"aggregatedResult,omitempty"`
	Analysis         QueryAnalysis     `json:"analysis"`
}

// AssistantResponse is the caller-facing success payload.
type AssistantResponse struct {
	Message  string           `json:"message"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ErrorResponse is the caller-facing failure payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
