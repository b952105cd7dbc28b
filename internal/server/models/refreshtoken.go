package models

import "time"

type RefreshToken struct {
	UserID    string
	SessionID string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// ResetToken is a stored password reset capability. Only the SHA-256 of the
// token handed to the user is kept.
type ResetToken struct {
	UserID    string
	TokenHash string
	Expires   time.Time
	CreatedAt time.Time
}
