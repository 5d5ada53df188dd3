// Package preferences keeps the client's key-value settings: session state
// and feature toggles.
package preferences

import (
	"context"
)

// Well-known keys.
const (
	KeyLoginStatus  = "login_status"
	KeyUserID       = "user_id"
	KeyUsername     = "username"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyEmail        = "email"

	// Feature toggles.
	KeyPublicByDefault = "public_by_default"
	KeyContactsAllowed = "contacts_allowed"
)

// Repository stores raw values. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// GetString returns the value of key as a string; missing keys are "".
func GetString(ctx context.Context, r Repository, key string) (string, error) {
	v, err := r.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func SetString(ctx context.Context, r Repository, key, value string) error {
	return r.Set(ctx, key, []byte(value))
}

// GetBool reports whether key holds "true"; missing keys are false.
func GetBool(ctx context.Context, r Repository, key string) (bool, error) {
	v, err := GetString(ctx, r, key)
	return v == "true", err
}

func SetBool(ctx context.Context, r Repository, key string, value bool) error {
	if value {
		return SetString(ctx, r, key, "true")
	}
	return SetString(ctx, r, key, "false")
}
