package model

import "time"

// User is an account able to obtain bearer tokens.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"size:100"`
	PasswordHash string    `json:"-" gorm:"size:100;not null"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// RegisterRequest is the request to create an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the request to obtain a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a signed bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ProviderUsage records one provider call.
type ProviderUsage struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	Category       string    `gorm:"size:16;index"`
	Provider       string    `gorm:"size:32;index"`
	ConversationID string    `gorm:"size:64"`
	LatencyMs      int64
	TokensIn       int
	TokensOut      int
	Success        bool
	Error          string    `gorm:"size:500"`
	CreatedAt      time.Time `gorm:"index"`
}
