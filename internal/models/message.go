// internal/models/message.go
package models

import "time"

// HitMetadata is the metadata block stored alongside each indexed message.
type HitMetadata struct {
	ChannelID              string    `json:"channel_id"`
	UserID                 string    `json:"user_id"`
	CreatedAt              time.Time `json:"created_at"`
	Version                int       `json:"version,omitempty"`
	IsLatest               bool      `json:"is_latest"`
	IsDeleted              bool      `json:"is_deleted,omitempty"`
	OriginalMessageContent string    `json:"original_message_content,omitempty"`
}

// RawHit is one record returned by the similarity-search provider, decoded
// into a typed structure at the retrieval boundary.
type RawHit struct {
	Content  string      `json:"content"`
	Metadata HitMetadata `json:"metadata"`
}

// UserInfo is the resolved identity attached to an enriched message.
type UserInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ChannelInfo is one row of a batch channel lookup.
type ChannelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MessageContext is an enriched hit. Only hits with IsLatest true and
// IsDeleted false survive enrichment; that gate is what keeps stale or
// retracted message text out of generated answers.
type MessageContext struct {
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	ChannelID   string    `json:"channel_id,omitempty"`
	ChannelName string    `json:"channel_name,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	User        *UserInfo `json:"user,omitempty"`
	Version     int       `json:"version,omitempty"`
	IsLatest    bool      `json:"is_latest"`
	IsDeleted   bool      `json:"is_deleted"`
}
