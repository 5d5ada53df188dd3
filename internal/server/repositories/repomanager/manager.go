// Package repomanager wires the dream, user and account repositories of one
// storage backend and runs grouped writes atomically.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/dreams"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/users"
)

// Backend names accepted by the store setting.
const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Repositories groups the repositories bound to one store handle.
type Repositories struct {
	Dreams   dreams.Repository
	Users    users.Repository
	Accounts accounts.Repository
}

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Repositories() Repositories
	// RunInTx runs fn with repositories whose writes commit together or not
	// at all. fn may be retried by backends with optimistic transactions.
	RunInTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend                  string
	DatabaseDSN              string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
}

// New opens the backend named by opts.Backend.
func New(ctx context.Context, opts Options) (RepositoryManager, error) {
	switch opts.Backend {
	case BackendPostgres, "":
		return OpenPostgres(opts.DatabaseDSN)
	case BackendFirestore:
		return OpenFirestore(ctx, opts.FirestoreProjectID, opts.FirestoreCredentialsFile)
	case BackendMemory:
		return NewMemoryRepositoryManager(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}
