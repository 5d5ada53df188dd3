// Package dreams persists dream records in the local SQLite store.
package dreams

import (
	"context"

	"github.com/dmitrijs2005/dreamsync/internal/client/models"
)

// Repository is the local record store. Get and Delete return
// common.ErrorNotFound for an unknown id.
type Repository interface {
	Get(ctx context.Context, id string) (*models.DreamRecord, error)
	// List returns every record, latest dream date first.
	List(ctx context.Context) ([]*models.DreamRecord, error)
	// Save inserts the record or replaces the one with the same id.
	Save(ctx context.Context, r *models.DreamRecord) error
	Delete(ctx context.Context, id string) error
}
