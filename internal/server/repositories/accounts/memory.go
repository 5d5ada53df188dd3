package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/server/models"
)

type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	tokens   map[string]models.RefreshToken
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts: make(map[string]models.Account),
		tokens:   make(map[string]models.RefreshToken),
		now:      time.Now,
	}
}

// MemorySnapshot is a copy of the repository contents.
type MemorySnapshot struct {
	accounts map[string]models.Account
	tokens   map[string]models.RefreshToken
}

func (r *MemoryRepository) Snapshot() MemorySnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := MemorySnapshot{
		accounts: make(map[string]models.Account, len(r.accounts)),
		tokens:   make(map[string]models.RefreshToken, len(r.tokens)),
	}
	for k, v := range r.accounts {
		s.accounts[k] = v
	}
	for k, v := range r.tokens {
		s.tokens[k] = v
	}
	return s
}

func (r *MemoryRepository) Restore(s MemorySnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts, r.tokens = s.accounts, s.tokens
}

func (r *MemoryRepository) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	if _, ok := r.accounts[a.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	a.CreatedAt = r.now()
	r.accounts[a.ID] = *a
	return a, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.accounts, id)
	for token, t := range r.tokens {
		if t.UserID == id {
			delete(r.tokens, token)
		}
	}
	return nil
}

func (r *MemoryRepository) CreateRefreshToken(_ context.Context, userID, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = models.RefreshToken{UserID: userID, Token: token, Expires: r.now().Add(validity)}
	return nil
}

func (r *MemoryRepository) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) DeleteRefreshToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}
