package accounts

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	accountsCollection = "Accounts"
	tokensCollection   = "RefreshTokens"
)

type accountDoc struct {
	Email        string    `firestore:"email"`
	PasswordHash []byte    `firestore:"passwordHash"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

type tokenDoc struct {
	UserID  string    `firestore:"userId"`
	Expires time.Time `firestore:"expires"`
}

// FirestoreRepository keeps Accounts/{id} and RefreshTokens/{token}.
type FirestoreRepository struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func NewFirestoreRepository(client *firestore.Client) *FirestoreRepository {
	return &FirestoreRepository{client: client}
}

// WithTx returns a repository bound to tx.
func (r *FirestoreRepository) WithTx(tx *firestore.Transaction) *FirestoreRepository {
	return &FirestoreRepository{client: r.client, tx: tx}
}

func mapError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	}
	return fmt.Errorf("firestore error: %w", err)
}

func (r *FirestoreRepository) get(ctx context.Context, ref *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	if r.tx != nil {
		return r.tx.Get(ref)
	}
	return ref.Get(ctx)
}

func (r *FirestoreRepository) create(ctx context.Context, ref *firestore.DocumentRef, data any) error {
	if r.tx != nil {
		return r.tx.Create(ref, data)
	}
	_, err := ref.Create(ctx, data)
	return err
}

func (r *FirestoreRepository) delete(ctx context.Context, ref *firestore.DocumentRef) error {
	if r.tx != nil {
		return r.tx.Delete(ref)
	}
	_, err := ref.Delete(ctx)
	return err
}

func (r *FirestoreRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	q := r.client.Collection(accountsCollection).Where("email", "==", a.Email).Limit(1)
	var snaps []*firestore.DocumentSnapshot
	var err error
	if r.tx != nil {
		snaps, err = r.tx.Documents(q).GetAll()
	} else {
		snaps, err = q.Documents(ctx).GetAll()
	}
	if err != nil {
		return nil, mapError(err)
	}
	if len(snaps) > 0 {
		return nil, common.ErrorAlreadyExists
	}

	a.CreatedAt = time.Now().UTC()
	doc := accountDoc{Email: a.Email, PasswordHash: a.PasswordHash, CreatedAt: a.CreatedAt}
	if err := r.create(ctx, r.client.Collection(accountsCollection).Doc(a.ID), doc); err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func toAccount(snap *firestore.DocumentSnapshot) (*models.Account, error) {
	var doc accountDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", snap.Ref.ID, err)
	}
	return &models.Account{ID: snap.Ref.ID, Email: doc.Email, PasswordHash: doc.PasswordHash, CreatedAt: doc.CreatedAt}, nil
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	snap, err := r.get(ctx, r.client.Collection(accountsCollection).Doc(id))
	if err != nil {
		return nil, mapError(err)
	}
	return toAccount(snap)
}

func (r *FirestoreRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	snaps, err := r.client.Collection(accountsCollection).Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(err)
	}
	if len(snaps) == 0 {
		return nil, common.ErrorNotFound
	}
	return toAccount(snaps[0])
}

func (r *FirestoreRepository) Delete(ctx context.Context, id string) error {
	q := r.client.Collection(tokensCollection).Where("userId", "==", id)
	var tokens []*firestore.DocumentSnapshot
	var err error
	if r.tx != nil {
		tokens, err = r.tx.Documents(q).GetAll()
	} else {
		tokens, err = q.Documents(ctx).GetAll()
	}
	if err != nil {
		return mapError(err)
	}
	for _, t := range tokens {
		if err := r.delete(ctx, t.Ref); err != nil {
			return mapError(err)
		}
	}
	if err := r.delete(ctx, r.client.Collection(accountsCollection).Doc(id)); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *FirestoreRepository) CreateRefreshToken(ctx context.Context, userID, token string, validity time.Duration) error {
	doc := tokenDoc{UserID: userID, Expires: time.Now().Add(validity)}
	if err := r.create(ctx, r.client.Collection(tokensCollection).Doc(token), doc); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *FirestoreRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	snap, err := r.get(ctx, r.client.Collection(tokensCollection).Doc(token))
	if err != nil {
		return nil, mapError(err)
	}
	var doc tokenDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode refresh token: %w", err)
	}
	return &models.RefreshToken{UserID: doc.UserID, Token: token, Expires: doc.Expires}, nil
}

func (r *FirestoreRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := r.delete(ctx, r.client.Collection(tokensCollection).Doc(token)); err != nil {
		return mapError(err)
	}
	return nil
}
