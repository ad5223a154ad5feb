package model

import (
	"time"
)

// Investor is a person or firm surfaced by the search path.
type Investor struct {
	ID              uint64    `json:"id,omitempty" gorm:"primaryKey;autoIncrement"`
	Name            string    `json:"name" gorm:"size:200;not null"`
	NameLower       string    `json:"-" gorm:"size:200;index"`
	Title           string    `json:"title,omitempty" gorm:"size:300"`
	Company         string    `json:"company,omitempty" gorm:"size:200"`
	Email           string    `json:"email,omitempty" gorm:"size:200"`
	ProfileURL      string    `json:"profile_url,omitempty" gorm:"size:500;index"`
	Location        string    `json:"location,omitempty" gorm:"size:200"`
	Bio             string    `json:"bio,omitempty" gorm:"type:text"`
	InvestmentFocus []string  `json:"investment_focus,omitempty" gorm:"serializer:json"`
	Source          string    `json:"source,omitempty" gorm:"size:50"`
	Enriched        bool      `json:"enriched"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// ConversationInvestor links an investor to the conversation that found it.
type ConversationInvestor struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	ConversationID string    `gorm:"size:64;not null;uniqueIndex:idx_conversation_investor"`
	InvestorID     uint64    `gorm:"not null;uniqueIndex:idx_conversation_investor"`
	Position       int       `gorm:"not null"`
	CreatedAt      time.Time
}

// InvestorQuery describes what the search path looks for.
type InvestorQuery struct {
	Sectors  []string `json:"sectors"`
	Stage    string   `json:"stage,omitempty"`
	Location string   `json:"location"`
}

// SearchResult is one hit returned by a search provider.
type SearchResult struct {
	ID             uint64    `json:"-" gorm:"primaryKey;autoIncrement"`
	ConversationID string    `json:"-" gorm:"size:64;index"`
	Title          string    `json:"title" gorm:"size:500"`
	URL            string    `json:"url" gorm:"size:1000"`
	Snippet        string    `json:"snippet" gorm:"type:text"`
	Source         string    `json:"source" gorm:"size:50"`
	CreatedAt      time.Time `json:"-"`
}

// ExportRequest carries investors posted directly for export.
type ExportRequest struct {
	Investors []Investor `json:"investors"`
}
