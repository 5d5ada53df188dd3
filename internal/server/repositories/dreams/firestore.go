package dreams

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

// Collection layout: UserDreams/{owner}/dreams/{doc}.
const (
	ownersCollection = "UserDreams"
	dreamsCollection = "dreams"
)

// FirestoreRepository stores dreams in Cloud Firestore.
type FirestoreRepository struct {
	client *firestore.Client
}

func NewFirestoreRepository(client *firestore.Client) *FirestoreRepository {
	return &FirestoreRepository{client: client}
}

func (r *FirestoreRepository) collection(ownerID string) *firestore.CollectionRef {
	return r.client.Collection(ownersCollection).Doc(ownerID).Collection(dreamsCollection)
}

func mapError(err error) error {
	if status.Code(err) == codes.NotFound {
		return common.ErrorNotFound
	}
	return fmt.Errorf("firestore error: %w", err)
}

func fromSnapshot(snap *firestore.DocumentSnapshot) (*models.DreamDocument, error) {
	d := &models.DreamDocument{}
	if err := snap.DataTo(d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
	}
	d.DocID = snap.Ref.ID
	d.Normalize()
	return d, nil
}

// filter is one Where clause of a dream query.
type filter struct {
	path  string
	op    string
	value any
}

// queryPlan turns q into Where clauses and the field results are ordered by,
// newest first.
func queryPlan(q models.DreamQuery) ([]filter, string) {
	filters := []filter{{"deleted", "==", false}}
	if q.PublicOnly {
		filters = append(filters, filter{"isPublic", "==", true})
	}
	if !q.From.IsZero() {
		filters = append(filters, filter{"date", ">=", q.From})
	}
	if !q.To.IsZero() {
		filters = append(filters, filter{"date", "<", q.To})
	}
	if q.Order == models.OrderDateDesc {
		return filters, "date"
	}
	return filters, "createdAt"
}

func (r *FirestoreRepository) Query(ctx context.Context, q models.DreamQuery) ([]*models.DreamDocument, error) {
	filters, orderBy := queryPlan(q)
	query := r.collection(q.OwnerID).Query
	for _, f := range filters {
		query = query.Where(f.path, f.op, f.value)
	}
	query = query.OrderBy(orderBy, firestore.Desc)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	result := make([]*models.DreamDocument, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapError(err)
		}
		d, err := fromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

// upsertFields is the merge written by Upsert. Likes, shares and the
// creation time are only part of it when the document is new.
func upsertFields(d *models.DreamDocument, exists bool) map[string]any {
	fields := map[string]any{
		"author":           d.OwnerID,
		"uuid":             d.DreamID,
		"name":             d.Title,
		"date":             d.Date,
		"dreamDescription": d.Description,
		"nightmareScale":   d.Severity,
		"isArchived":       d.Archived,
		"titleVisible":     d.TitleVisible,
		"isPublic":         d.Public,
		"deleted":          false,
		"updatedAt":        firestore.ServerTimestamp,
	}
	if !exists {
		fields["likedBy"] = models.Dedup(d.LikedBy)
		fields["sharedWith"] = models.Dedup(d.SharedWith)
		fields["createdAt"] = firestore.ServerTimestamp
	}
	return fields
}

// Upsert creates or merges the document inside one transaction.
func (r *FirestoreRepository) Upsert(ctx context.Context, d *models.DreamDocument) (*models.DreamDocument, error) {
	ref := r.collection(d.OwnerID).Doc(d.DocID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		exists := err == nil && snap.Exists()
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		fields := upsertFields(d, exists)
		return tx.Set(ref, fields, firestore.MergeAll)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return r.Get(ctx, d.OwnerID, d.DocID)
}

func (r *FirestoreRepository) MarkDeleted(ctx context.Context, ownerID, dreamID string) (int, error) {
	snaps, err := r.collection(ownerID).Where("uuid", "==", dreamID).Documents(ctx).GetAll()
	if err != nil {
		return 0, mapError(err)
	}
	for _, snap := range snaps {
		_, err := snap.Ref.Update(ctx, []firestore.Update{
			{Path: "deleted", Value: true},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
		if err != nil {
			return 0, mapError(err)
		}
	}
	return len(snaps), nil
}

func (r *FirestoreRepository) Get(ctx context.Context, ownerID, docID string) (*models.DreamDocument, error) {
	snap, err := r.collection(ownerID).Doc(docID).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return fromSnapshot(snap)
}

func likeUpdate(userID string, liked bool) firestore.Update {
	var value any = firestore.ArrayRemove(userID)
	if liked {
		value = firestore.ArrayUnion(userID)
	}
	return firestore.Update{Path: "likedBy", Value: value}
}

func (r *FirestoreRepository) SetLike(ctx context.Context, ownerID, docID, userID string, liked bool) (*models.DreamDocument, error) {
	_, err := r.collection(ownerID).Doc(docID).Update(ctx, []firestore.Update{likeUpdate(userID, liked)})
	if err != nil {
		return nil, mapError(err)
	}
	return r.Get(ctx, ownerID, docID)
}

func (r *FirestoreRepository) DeleteByOwner(ctx context.Context, ownerID string) (int, error) {
	refs, err := r.collection(ownerID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, mapError(err)
	}
	for _, ref := range refs {
		if _, err := ref.Delete(ctx); err != nil {
			return 0, mapError(err)
		}
	}
	return len(refs), nil
}
