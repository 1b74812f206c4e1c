package domain

import "time"

// Session is an authenticated dashboard user as reported by the hosted auth provider
type Session struct {
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}
