package repomanager

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/models"
	servermodels "github.com/dmitrijs2005/dreamsync/internal/server/models"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/dreams"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process. Transactions are
// serialized with each other and rolled back by restoring snapshots. Writes
// made through Repositories wait for a running transaction, so a rollback
// never discards them. Reads are not isolated from a running transaction.
type MemoryRepositoryManager struct {
	txMu     sync.RWMutex
	dreams   *dreams.MemoryRepository
	users    *users.MemoryRepository
	accounts *accounts.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		dreams:   dreams.NewMemoryRepository(),
		users:    users.NewMemoryRepository(),
		accounts: accounts.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Repositories() Repositories {
	return Repositories{
		Dreams:   gatedDreams{Repository: m.dreams, mu: &m.txMu},
		Users:    gatedUsers{Repository: m.users, mu: &m.txMu},
		Accounts: gatedAccounts{Repository: m.accounts, mu: &m.txMu},
	}
}

func (m *MemoryRepositoryManager) RunInTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	dreamSnap := m.dreams.Snapshot()
	userSnap := m.users.Snapshot()
	accountSnap := m.accounts.Snapshot()

	err := fn(ctx, Repositories{Dreams: m.dreams, Users: m.users, Accounts: m.accounts})
	if err != nil {
		m.dreams.Restore(dreamSnap)
		m.users.Restore(userSnap)
		m.accounts.Restore(accountSnap)
		return err
	}
	return nil
}

func (m *MemoryRepositoryManager) Close() error { return nil }

// The gated wrappers hold the read side of txMu for the duration of a write.

type gatedDreams struct {
	dreams.Repository
	mu *sync.RWMutex
}

func (g gatedDreams) Upsert(ctx context.Context, d *models.DreamDocument) (*models.DreamDocument, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.Upsert(ctx, d)
}

func (g gatedDreams) MarkDeleted(ctx context.Context, ownerID, dreamID string) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.MarkDeleted(ctx, ownerID, dreamID)
}

func (g gatedDreams) SetLike(ctx context.Context, ownerID, docID, userID string, liked bool) (*models.DreamDocument, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.SetLike(ctx, ownerID, docID, userID, liked)
}

func (g gatedDreams) DeleteByOwner(ctx context.Context, ownerID string) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.DeleteByOwner(ctx, ownerID)
}

type gatedUsers struct {
	users.Repository
	mu *sync.RWMutex
}

func (g gatedUsers) Save(ctx context.Context, u *models.UserProfile) (*models.UserProfile, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.Save(ctx, u)
}

func (g gatedUsers) Update(ctx context.Context, id string, up models.ProfileUpdate) (*models.UserProfile, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.Update(ctx, id, up)
}

func (g gatedUsers) AddToList(ctx context.Context, id string, list models.UserList, values ...string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.AddToList(ctx, id, list, values...)
}

func (g gatedUsers) RemoveFromList(ctx context.Context, id string, list models.UserList, values ...string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.RemoveFromList(ctx, id, list, values...)
}

func (g gatedUsers) Delete(ctx context.Context, id string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.Delete(ctx, id)
}

type gatedAccounts struct {
	accounts.Repository
	mu *sync.RWMutex
}

func (g gatedAccounts) Create(ctx context.Context, a *servermodels.Account) (*servermodels.Account, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.Create(ctx, a)
}

func (g gatedAccounts) Delete(ctx context.Context, id string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.Delete(ctx, id)
}

func (g gatedAccounts) CreateRefreshToken(ctx context.Context, userID, token string, validity time.Duration) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.CreateRefreshToken(ctx, userID, token, validity)
}

func (g gatedAccounts) DeleteRefreshToken(ctx context.Context, token string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Repository.DeleteRefreshToken(ctx, token)
}
