// Package accounts stores sign-in accounts and the refresh tokens issued
// to them.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/server/models"
)

type Repository interface {
	// Create stores a new account. A taken email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	Get(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// Delete removes the account and every refresh token issued to it.
	Delete(ctx context.Context, id string) error

	// CreateRefreshToken stores token for userID, expiring at now+validity.
	CreateRefreshToken(ctx context.Context, userID, token string, validity time.Duration) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	// DeleteRefreshToken is a no-op for unknown tokens.
	DeleteRefreshToken(ctx context.Context, token string) error
}
