package users

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "Users"

// FirestoreRepository stores profiles as Users/{id}. When tx is set every
// read and write goes through the transaction.
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
	if status.Code(err) == codes.NotFound {
		return common.ErrorNotFound
	}
	return fmt.Errorf("firestore error: %w", err)
}

func (r *FirestoreRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(id)
}

func (r *FirestoreRepository) get(ctx context.Context, ref *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	if r.tx != nil {
		return r.tx.Get(ref)
	}
	return ref.Get(ctx)
}

func (r *FirestoreRepository) update(ctx context.Context, ref *firestore.DocumentRef, updates []firestore.Update) error {
	if r.tx != nil {
		return r.tx.Update(ref, updates)
	}
	_, err := ref.Update(ctx, updates)
	return err
}

func (r *FirestoreRepository) set(ctx context.Context, ref *firestore.DocumentRef, data map[string]any) error {
	if r.tx != nil {
		return r.tx.Set(ref, data, firestore.MergeAll)
	}
	_, err := ref.Set(ctx, data, firestore.MergeAll)
	return err
}

func (r *FirestoreRepository) documents(ctx context.Context, q firestore.Query) *firestore.DocumentIterator {
	if r.tx != nil {
		return r.tx.Documents(q)
	}
	return q.Documents(ctx)
}

func fromSnapshot(snap *firestore.DocumentSnapshot) (*models.UserProfile, error) {
	u := &models.UserProfile{}
	if err := snap.DataTo(u); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	if u.ID == "" {
		u.ID = snap.Ref.ID
	}
	u.Normalize()
	return u, nil
}

func (r *FirestoreRepository) collect(ctx context.Context, q firestore.Query) ([]*models.UserProfile, error) {
	iter := r.documents(ctx, q)
	defer iter.Stop()

	result := make([]*models.UserProfile, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapError(err)
		}
		u, err := fromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, nil
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	snap, err := r.get(ctx, r.doc(id))
	if err != nil {
		return nil, mapError(err)
	}
	return fromSnapshot(snap)
}

func (r *FirestoreRepository) GetByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	found, err := r.collect(ctx, r.client.Collection(usersCollection).Where("username", "==", username).Limit(1))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, common.ErrorNotFound
	}
	return found[0], nil
}

// profileFields is the merge written by Save. Lists and ban state are only
// initialised on a new profile.
func profileFields(u *models.UserProfile, exists bool) map[string]any {
	data := map[string]any{
		"userUID":         u.ID,
		"username":        u.Username,
		"userEmail":       u.Email,
		"userDescription": u.Description,
		"pfp":             u.ProfilePictureURL,
		"streak":          u.Streak,
		"score":           u.Score,
		"phoneNumber":     u.PhoneNumber,
		"countryCode":     u.CountryCode,
	}
	if !exists {
		data["friends"] = []string{}
		data["friendRequestsReceived"] = []string{}
		data["usersBlocked"] = []string{}
		data["appsUsed"] = []string{}
		data["isBanned"] = false
		data["banReason"] = ""
	}
	return data
}

func profileUpdates(up models.ProfileUpdate) []firestore.Update {
	var updates []firestore.Update
	add := func(path string, value any) {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if up.Username != nil {
		add("username", models.NormalizeUsername(*up.Username))
	}
	if up.Description != nil {
		add("userDescription", *up.Description)
	}
	if up.ProfilePictureURL != nil {
		add("pfp", *up.ProfilePictureURL)
	}
	if up.Streak != nil {
		add("streak", *up.Streak)
	}
	if up.Score != nil {
		add("score", *up.Score)
	}
	if up.PhoneNumber != nil {
		add("phoneNumber", *up.PhoneNumber)
	}
	if up.CountryCode != nil {
		add("countryCode", *up.CountryCode)
	}
	if up.CreatedAt != nil {
		add("creationDate", *up.CreatedAt)
	}
	return updates
}

func (r *FirestoreRepository) Save(ctx context.Context, u *models.UserProfile) (*models.UserProfile, error) {
	ref := r.doc(u.ID)
	existing, err := r.get(ctx, ref)
	exists := err == nil && existing.Exists()
	if err != nil && status.Code(err) != codes.NotFound {
		return nil, mapError(err)
	}

	data := profileFields(u, exists)
	if u.CreatedAt != nil {
		var stored *models.UserProfile
		if exists {
			if stored, err = fromSnapshot(existing); err != nil {
				return nil, err
			}
		}
		if stored == nil || stored.CreatedAt == nil {
			data["creationDate"] = *u.CreatedAt
		}
	}
	if err := r.set(ctx, ref, data); err != nil {
		return nil, mapError(err)
	}
	if r.tx != nil {
		// Transactions cannot read after writing; return what was written.
		merged := *u
		merged.Normalize()
		return &merged, nil
	}
	return r.Get(ctx, u.ID)
}

// Update reads the profile before writing so it also works inside a
// transaction, and returns the profile with up applied.
func (r *FirestoreRepository) Update(ctx context.Context, id string, up models.ProfileUpdate) (*models.UserProfile, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.CreatedAt != nil {
		up.CreatedAt = nil
	}

	updates := profileUpdates(up)
	if len(updates) == 0 {
		return current, nil
	}
	if err := r.update(ctx, r.doc(id), updates); err != nil {
		return nil, mapError(err)
	}
	up.Apply(current)
	return current, nil
}

func (r *FirestoreRepository) AddToList(ctx context.Context, id string, list models.UserList, values ...string) error {
	return r.mutateList(ctx, id, list, firestore.ArrayUnion(toAny(models.Dedup(values))...))
}

func (r *FirestoreRepository) RemoveFromList(ctx context.Context, id string, list models.UserList, values ...string) error {
	return r.mutateList(ctx, id, list, firestore.ArrayRemove(toAny(values)...))
}

func (r *FirestoreRepository) mutateList(ctx context.Context, id string, list models.UserList, value any) error {
	if !list.Valid() {
		return fmt.Errorf("unknown list %q: %w", list, common.ErrorInvalidArgument)
	}
	if err := r.update(ctx, r.doc(id), []firestore.Update{{Path: string(list), Value: value}}); err != nil {
		return mapError(err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func (r *FirestoreRepository) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*models.UserProfile, error) {
	q := r.client.Collection(usersCollection).
		Where("username", ">=", prefix).
		Where("username", "<", models.UsernamePrefixUpper(prefix)).
		OrderBy("username", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.collect(ctx, q)
}

func (r *FirestoreRepository) FindByPhoneNumbers(ctx context.Context, phones []string) ([]*models.UserProfile, error) {
	if len(phones) > common.ContactsBatchSize {
		return nil, fmt.Errorf("%d phone numbers in one query: %w", len(phones), common.ErrorInvalidArgument)
	}
	if len(phones) == 0 {
		return []*models.UserProfile{}, nil
	}
	return r.collect(ctx, r.client.Collection(usersCollection).Where("phoneNumber", "in", phones))
}

func (r *FirestoreRepository) Delete(ctx context.Context, id string) error {
	ref := r.doc(id)
	var err error
	if r.tx != nil {
		err = r.tx.Delete(ref, firestore.Exists)
	} else {
		_, err = ref.Delete(ctx, firestore.Exists)
	}
	if err != nil {
		return mapError(err)
	}
	return nil
}
