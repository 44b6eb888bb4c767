package domain

import "time"

// Session backs refresh-token validity. The record's existence is the
// capability: deleting it blocks every refresh token that references it,
// while outstanding access tokens keep working until their own TTL elapses.
type Session struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Valid     bool      `json:"valid"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
