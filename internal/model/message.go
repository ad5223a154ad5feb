package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a conversation message. Rows are never updated.
type Message struct {
	ID             uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ConversationID string `json:"conversation_id" gorm:"size:64;index;not null"`

	Role    Role   `json:"role" gorm:"size:16;not null"`
	Content string `json:"content" gorm:"type:text;not null"`

	// LLM metadata, set on assistant messages
	Provider  string `json:"provider,omitempty" gorm:"size:32"`
	Model     string `json:"model,omitempty" gorm:"size:100"`
	TokensIn  int    `json:"tokens_in,omitempty"`
	TokensOut int    `json:"tokens_out,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ListMessagesResponse is the response for listing messages.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
	Total    int64     `json:"total"`
}
