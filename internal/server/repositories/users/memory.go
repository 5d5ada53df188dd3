package users

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/models"
)

// MemoryRepository keeps profiles in a map. Snapshot and Restore let a
// caller roll back a group of writes.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.UserProfile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.UserProfile)}
}

func clone(u *models.UserProfile) *models.UserProfile {
	c := *u
	c.Friends = append([]string{}, u.Friends...)
	c.FriendRequests = append([]string{}, u.FriendRequests...)
	c.Blocked = append([]string{}, u.Blocked...)
	c.AppsUsed = append([]string{}, u.AppsUsed...)
	if u.CreatedAt != nil {
		t := *u.CreatedAt
		c.CreatedAt = &t
	}
	if u.BannedUntil != nil {
		t := *u.BannedUntil
		c.BannedUntil = &t
	}
	return &c
}

// Snapshot returns a deep copy of every stored profile.
func (r *MemoryRepository) Snapshot() map[string]*models.UserProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := make(map[string]*models.UserProfile, len(r.users))
	for id, u := range r.users {
		snap[id] = clone(u)
	}
	return snap
}

// Restore replaces the stored profiles with snap.
func (r *MemoryRepository) Restore(snap map[string]*models.UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = snap
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) sorted(match func(*models.UserProfile) bool) []*models.UserProfile {
	result := make([]*models.UserProfile, 0)
	for _, u := range r.users {
		if match(u) {
			result = append(result, clone(u))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Username != result[j].Username {
			return result[i].Username < result[j].Username
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := r.sorted(func(u *models.UserProfile) bool { return u.Username == username })
	if len(found) == 0 {
		return nil, common.ErrorNotFound
	}
	return found[0], nil
}

func (r *MemoryRepository) Save(_ context.Context, u *models.UserProfile) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		stored = models.NewUserProfile(u.ID, "", "")
		r.users[u.ID] = stored
	}
	stored.Username = u.Username
	stored.Email = u.Email
	stored.Description = u.Description
	stored.ProfilePictureURL = u.ProfilePictureURL
	stored.Streak = u.Streak
	stored.Score = u.Score
	stored.PhoneNumber = u.PhoneNumber
	stored.CountryCode = u.CountryCode
	if stored.CreatedAt == nil && u.CreatedAt != nil {
		t := *u.CreatedAt
		stored.CreatedAt = &t
	}
	return clone(stored), nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, up models.ProfileUpdate) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	up.Apply(stored)
	return clone(stored), nil
}

func (r *MemoryRepository) mutateList(id string, list models.UserList, fn func([]string) []string) error {
	if !list.Valid() {
		return fmt.Errorf("unknown list %q: %w", list, common.ErrorInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	stored.SetValues(list, fn(stored.Values(list)))
	return nil
}

func (r *MemoryRepository) AddToList(_ context.Context, id string, list models.UserList, values ...string) error {
	return r.mutateList(id, list, func(cur []string) []string { return models.Union(cur, values...) })
}

func (r *MemoryRepository) RemoveFromList(_ context.Context, id string, list models.UserList, values ...string) error {
	return r.mutateList(id, list, func(cur []string) []string { return models.Remove(cur, values...) })
}

func (r *MemoryRepository) SearchByUsernamePrefix(_ context.Context, prefix string, limit int) ([]*models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	upper := models.UsernamePrefixUpper(prefix)
	result := r.sorted(func(u *models.UserProfile) bool {
		return strings.Compare(u.Username, prefix) >= 0 && strings.Compare(u.Username, upper) < 0
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *MemoryRepository) FindByPhoneNumbers(_ context.Context, phones []string) ([]*models.UserProfile, error) {
	if len(phones) > common.ContactsBatchSize {
		return nil, fmt.Errorf("%d phone numbers in one query: %w", len(phones), common.ErrorInvalidArgument)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(u *models.UserProfile) bool {
		return u.PhoneNumber != "" && models.Contains(phones, u.PhoneNumber)
	}), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.users, id)
	return nil
}
