// Package dreams stores dream documents on the server. Every backend keeps
// soft-deleted documents and hides them from queries.
package dreams

import (
	"context"

	"github.com/dmitrijs2005/dreamsync/internal/models"
)

type Repository interface {
	// Query returns non-deleted documents of q.OwnerID matching q.
	Query(ctx context.Context, q models.DreamQuery) ([]*models.DreamDocument, error)
	// Upsert creates the document keyed by d.DocID or overwrites its dream
	// fields, clearing the deleted flag. Likes, shares and the creation time
	// of an existing document are kept. The stored document is returned.
	Upsert(ctx context.Context, d *models.DreamDocument) (*models.DreamDocument, error)
	// MarkDeleted flags every document of ownerID whose local id is dreamID
	// and returns how many were flagged.
	MarkDeleted(ctx context.Context, ownerID, dreamID string) (int, error)
	// Get returns one document, deleted or not.
	Get(ctx context.Context, ownerID, docID string) (*models.DreamDocument, error)
	// SetLike adds or removes userID from the document's like set.
	SetLike(ctx context.Context, ownerID, docID, userID string, liked bool) (*models.DreamDocument, error)
	// DeleteByOwner physically removes every document of ownerID.
	DeleteByOwner(ctx context.Context, ownerID string) (int, error)
}
