// Package models defines server-only records: sign-in accounts and the
// refresh tokens issued to them. Shared documents live in internal/models.
package models

import "time"

// Account holds sign-in credentials. Its ID is the user id every profile
// and dream document is keyed by.
type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// RefreshToken is a server-stored, single-use token that mints a new
// access token.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
