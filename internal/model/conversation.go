// Package model defines data structures for the investor finder.
package model

import (
	"regexp"
	"time"
)

var conversationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidConversationID reports whether id is 1 to 64 letters, digits, dashes
// or underscores. Generated UUIDs always qualify.
func ValidConversationID(id string) bool {
	return conversationIDPattern.MatchString(id)
}

// Conversation represents a chat thread and the investor search state it has
// accumulated.
type Conversation struct {
	ID               string            `json:"id" gorm:"primaryKey;size:64"`
	UserID           string            `json:"user_id,omitempty" gorm:"size:64;index"`
	Title            string            `json:"title" gorm:"size:200"`
	SectorsDiscussed []string          `json:"sectors_discussed" gorm:"serializer:json"`
	Metadata         map[string]string `json:"metadata,omitempty" gorm:"serializer:json"`
	// InvestorPage is the zero-based page of stored investors last shown.
	InvestorPage int       `json:"investor_page"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"index"`

	MessageCount  int64    `json:"message_count" gorm:"-"`
	InvestorCount int64    `json:"investor_count" gorm:"-"`
	LastMessage   *Message `json:"last_message,omitempty" gorm:"-"`
}

// ConversationDetail is a conversation with its full history and investors.
type ConversationDetail struct {
	Conversation
	Messages  []Message  `json:"messages"`
	Investors []Investor `json:"investors"`
}

// ListConversationsResponse is the response for listing conversations.
type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
	Total         int64          `json:"total"`
	HasMore       bool           `json:"has_more"`
}
