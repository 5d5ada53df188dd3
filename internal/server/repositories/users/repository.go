// Package users stores profile documents and their social-graph list
// fields. List mutations have set semantics on every backend.
package users

import (
	"context"

	"github.com/dmitrijs2005/dreamsync/internal/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.UserProfile, error)

	// GetByUsername returns the first profile with the exact username.
	GetByUsername(ctx context.Context, username string) (*models.UserProfile, error)

	// Save creates the profile or merges its scalar fields into the stored
	// one. List fields and ban info are never written by Save, and an
	// existing creation date is kept.
	Save(ctx context.Context, u *models.UserProfile) (*models.UserProfile, error)

	// Update applies a partial write and returns the stored profile.
	Update(ctx context.Context, id string, up models.ProfileUpdate) (*models.UserProfile, error)

	// AddToList unions values into list of profile id.
	AddToList(ctx context.Context, id string, list models.UserList, values ...string) error

	// RemoveFromList removes values from list of profile id.
	RemoveFromList(ctx context.Context, id string, list models.UserList, values ...string) error

	// SearchByUsernamePrefix returns at most limit profiles whose username
	// lies in [prefix, models.UsernamePrefixUpper(prefix)), ordered by
	// username.
	SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*models.UserProfile, error)

	// FindByPhoneNumbers accepts at most common.ContactsBatchSize numbers.
	FindByPhoneNumbers(ctx context.Context, phones []string) ([]*models.UserProfile, error)

	Delete(ctx context.Context, id string) error
}
