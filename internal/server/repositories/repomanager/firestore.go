package repomanager

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/dreams"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/users"
	"google.golang.org/api/option"
)

// FirestoreRepositoryManager stores documents in Cloud Firestore using the
// collection layout of the mobile app.
type FirestoreRepositoryManager struct {
	client   *firestore.Client
	dreams   *dreams.FirestoreRepository
	users    *users.FirestoreRepository
	accounts *accounts.FirestoreRepository
}

// OpenFirestore connects to projectID. An empty credentialsFile uses
// application default credentials.
func OpenFirestore(ctx context.Context, projectID, credentialsFile string) (*FirestoreRepositoryManager, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client error: %w", err)
	}
	return NewFirestoreRepositoryManager(client), nil
}

func NewFirestoreRepositoryManager(client *firestore.Client) *FirestoreRepositoryManager {
	return &FirestoreRepositoryManager{
		client:   client,
		dreams:   dreams.NewFirestoreRepository(client),
		users:    users.NewFirestoreRepository(client),
		accounts: accounts.NewFirestoreRepository(client),
	}
}

// RunMigrations is a no-op; Firestore is schemaless.
func (m *FirestoreRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *FirestoreRepositoryManager) Repositories() Repositories {
	return Repositories{Dreams: m.dreams, Users: m.users, Accounts: m.accounts}
}

// RunInTx binds users and accounts to a Firestore transaction. Dream writes
// made inside fn are not part of the transaction.
func (m *FirestoreRepositoryManager) RunInTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return m.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, Repositories{
			Dreams:   m.dreams,
			Users:    m.users.WithTx(tx),
			Accounts: m.accounts.WithTx(tx),
		})
	})
}

func (m *FirestoreRepositoryManager) Close() error {
	return m.client.Close()
}
