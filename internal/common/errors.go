// Package common defines shared constants and sentinel errors used across
// client and server layers of dreamsync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorPermissionDenied = errors.New("permission denied")
	ErrorInvalidArgument  = errors.New("invalid argument")
	ErrorUnavailable      = errors.New("service unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Client-side flow errors.
	ErrNotSignedIn     = errors.New("not signed in")
	ErrReportRejected  = errors.New("report rejected")
	ErrUsernameTaken   = errors.New("username taken")
	ErrPermissionGated = errors.New("contacts permission denied")
)
