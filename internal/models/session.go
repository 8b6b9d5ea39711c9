// internal/models/session.go
package models

import "time"

// Session is an authenticated sign-in, stored in Redis under its token ID.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	User      User      `json:"user"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired reports whether the session is past its expiry at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
