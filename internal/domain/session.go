package domain

import "time"

// Session is the server-side identity snapshot bound to an opaque token.
// The snapshot, not a live user lookup, is what the access-control middleware
// consults on each request; it is refreshed only by the status endpoints.
type Session struct {
	Token      string    `json:"-"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
	IsApproved bool      `json:"is_approved"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSessionSnapshot builds a session snapshot from a user record.
func NewSessionSnapshot(u *User) *Session {
	return &Session{
		UserID:     u.UserID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		IsApproved: u.IsApproved,
		IsActive:   u.IsActive,
		CreatedAt:  time.Now().UTC(),
	}
}
