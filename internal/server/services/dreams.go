package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/dmitrijs2005/dreamsync/internal/server/notify"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/repomanager"
)

// DreamService guards the dream collections. Owners read and write their
// own documents; everyone else sees public, non-deleted ones.
type DreamService struct {
	repomanager repomanager.RepositoryManager
	publisher
}

func NewDreamService(m repomanager.RepositoryManager, n notify.Notifier, logger logging.Logger) *DreamService {
	logger = logger.With("module", "dreams")
	return &DreamService{repomanager: m, publisher: publisher{notifier: n, logger: logger}}
}

// Query lists q.OwnerID's documents. Callers other than the owner only get
// public documents.
func (s *DreamService) Query(ctx context.Context, callerID string, q models.DreamQuery) ([]*models.DreamDocument, error) {
	if q.OwnerID == "" {
		return nil, fmt.Errorf("query without owner: %w", common.ErrorInvalidArgument)
	}
	if q.OwnerID != callerID {
		q.PublicOnly = true
	}
	return s.repomanager.Repositories().Dreams.Query(ctx, q)
}

// Upsert stores one of the caller's dreams under its deterministic key.
func (s *DreamService) Upsert(ctx context.Context, callerID string, d *models.DreamDocument) (*models.DreamDocument, error) {
	if d.OwnerID == "" {
		d.OwnerID = callerID
	}
	if d.OwnerID != callerID {
		return nil, common.ErrorPermissionDenied
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInvalidArgument, err)
	}
	key := models.DreamDocumentID(d.OwnerID, d.DreamID)
	if d.DocID != "" && d.DocID != key {
		return nil, fmt.Errorf("document key %s does not match dream %s: %w", d.DocID, d.DreamID, common.ErrorInvalidArgument)
	}
	d.DocID = key
	d.Normalize()

	stored, err := s.repomanager.Repositories().Dreams.Upsert(ctx, d)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.DreamTopic(stored.OwnerID, stored.DocID))
	return stored, nil
}

// MarkDeleted soft-deletes every caller document carrying dreamID.
func (s *DreamService) MarkDeleted(ctx context.Context, callerID, dreamID string) (int, error) {
	if dreamID == "" {
		return 0, fmt.Errorf("empty dream id: %w", common.ErrorInvalidArgument)
	}
	n, err := s.repomanager.Repositories().Dreams.MarkDeleted(ctx, callerID, dreamID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish(ctx, notify.DreamTopic(callerID, models.DreamDocumentID(callerID, dreamID)))
	}
	return n, nil
}

// Get returns one document. Owners also see their deleted documents; other
// callers get ErrorNotFound for anything they may not see.
func (s *DreamService) Get(ctx context.Context, callerID, ownerID, docID string) (*models.DreamDocument, error) {
	d, err := s.repomanager.Repositories().Dreams.Get(ctx, ownerID, docID)
	if err != nil {
		return nil, err
	}
	if ownerID != callerID && (!d.Public || d.Deleted) {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

// SetLike adds or removes the caller's like on a visible document.
func (s *DreamService) SetLike(ctx context.Context, callerID, ownerID, docID string, liked bool) (*models.DreamDocument, error) {
	if _, err := s.Get(ctx, callerID, ownerID, docID); err != nil {
		return nil, err
	}
	d, err := s.repomanager.Repositories().Dreams.SetLike(ctx, ownerID, docID, callerID, liked)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.DreamTopic(ownerID, docID))
	return d, nil
}

// Watch streams the document to send until ctx is done. A document that
// becomes invisible ends the stream with ErrorNotFound.
func (s *DreamService) Watch(ctx context.Context, callerID, ownerID, docID string, send func(*models.DreamDocument) error) error {
	err := watch(ctx, s.notifier, notify.DreamTopic(ownerID, docID),
		func(ctx context.Context) (*models.DreamDocument, error) {
			return s.Get(ctx, callerID, ownerID, docID)
		}, send)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Warn(ctx, "dream watch ended", "owner", ownerID, "doc", docID, "error", err)
	}
	return err
}
