package dreams

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/models"
)

// MemoryRepository keeps documents in a map. It is safe for concurrent use.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]*models.DreamDocument
	now  func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string]*models.DreamDocument), now: time.Now}
}

func clone(d *models.DreamDocument) *models.DreamDocument {
	c := *d
	c.LikedBy = append([]string{}, d.LikedBy...)
	c.SharedWith = append([]string{}, d.SharedWith...)
	return &c
}

// Snapshot returns a deep copy of every stored document.
func (r *MemoryRepository) Snapshot() map[string]*models.DreamDocument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := make(map[string]*models.DreamDocument, len(r.docs))
	for id, d := range r.docs {
		snap[id] = clone(d)
	}
	return snap
}

// Restore replaces the stored documents with snap.
func (r *MemoryRepository) Restore(snap map[string]*models.DreamDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = snap
}

func (r *MemoryRepository) Query(_ context.Context, q models.DreamQuery) ([]*models.DreamDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.DreamDocument, 0)
	for _, d := range r.docs {
		if q.Matches(d) {
			result = append(result, clone(d))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if q.Order == models.OrderDateDesc {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, d *models.DreamDocument) (*models.DreamDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	existing, ok := r.docs[d.DocID]
	if !ok {
		stored := clone(d)
		stored.LikedBy = models.Dedup(d.LikedBy)
		stored.SharedWith = models.Dedup(d.SharedWith)
		stored.Deleted = false
		stored.CreatedAt = now
		stored.UpdatedAt = now
		r.docs[d.DocID] = stored
		return clone(stored), nil
	}
	if existing.OwnerID != d.OwnerID {
		return nil, common.ErrorPermissionDenied
	}

	existing.Title = d.Title
	existing.Date = d.Date
	existing.Description = d.Description
	existing.Severity = d.Severity
	existing.Archived = d.Archived
	existing.TitleVisible = d.TitleVisible
	existing.Public = d.Public
	existing.Deleted = false
	existing.UpdatedAt = now
	return clone(existing), nil
}

func (r *MemoryRepository) MarkDeleted(_ context.Context, ownerID, dreamID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, d := range r.docs {
		if d.OwnerID == ownerID && d.DreamID == dreamID {
			d.Deleted = true
			d.UpdatedAt = r.now()
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) Get(_ context.Context, ownerID, docID string) (*models.DreamDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.docs[docID]
	if !ok || d.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return clone(d), nil
}

func (r *MemoryRepository) SetLike(_ context.Context, ownerID, docID, userID string, liked bool) (*models.DreamDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[docID]
	if !ok || d.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	if liked {
		d.LikedBy = models.Union(d.LikedBy, userID)
	} else {
		d.LikedBy = models.Remove(d.LikedBy, userID)
	}
	return clone(d), nil
}

func (r *MemoryRepository) DeleteByOwner(_ context.Context, ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, d := range r.docs {
		if d.OwnerID == ownerID {
			delete(r.docs, id)
			n++
		}
	}
	return n, nil
}
