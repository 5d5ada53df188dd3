package dreams

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFirestore_MapError(t *testing.T) {
	assert.ErrorIs(t, mapError(status.Error(codes.NotFound, "no document")), common.ErrorNotFound)

	cause := status.Error(codes.Unavailable, "backend down")
	err := mapError(cause)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorContains(t, err, "firestore error")
}

func TestFirestore_QueryPlan(t *testing.T) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	tests := []struct {
		name    string
		q       models.DreamQuery
		filters []filter
		orderBy string
	}{
		{
			name:    "own journal",
			q:       models.DreamQuery{OwnerID: "u1", Order: models.OrderCreatedDesc},
			filters: []filter{{"deleted", "==", false}},
			orderBy: "createdAt",
		},
		{
			name: "friend feed day",
			q:    models.DreamQuery{OwnerID: "u2", PublicOnly: true, From: from, To: to, Order: models.OrderDateDesc},
			filters: []filter{
				{"deleted", "==", false},
				{"isPublic", "==", true},
				{"date", ">=", from},
				{"date", "<", to},
			},
			orderBy: "date",
		},
		{
			name:    "open ended range",
			q:       models.DreamQuery{OwnerID: "u2", From: from},
			filters: []filter{{"deleted", "==", false}, {"date", ">=", from}},
			orderBy: "createdAt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters, orderBy := queryPlan(tt.q)
			assert.Equal(t, tt.filters, filters)
			assert.Equal(t, tt.orderBy, orderBy)
		})
	}
}

func TestFirestore_UpsertFields(t *testing.T) {
	d := newDream("u1", "d1", time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	d.Public = true
	d.LikedBy = []string{"u2", "u2"}

	created := upsertFields(d, false)
	assert.Equal(t, "u1", created["author"])
	assert.Equal(t, "d1", created["uuid"])
	assert.Equal(t, true, created["isPublic"])
	assert.Equal(t, false, created["deleted"])
	assert.Equal(t, []string{"u2"}, created["likedBy"])
	assert.Equal(t, firestore.ServerTimestamp, created["createdAt"])

	merged := upsertFields(d, true)
	for _, key := range []string{"likedBy", "sharedWith", "createdAt"} {
		assert.NotContains(t, merged, key)
	}
	assert.Equal(t, firestore.ServerTimestamp, merged["updatedAt"])
}

func TestFirestore_LikeUpdate(t *testing.T) {
	like := likeUpdate("u2", true)
	assert.Equal(t, "likedBy", like.Path)
	assert.Equal(t, firestore.ArrayUnion("u2"), like.Value)

	unlike := likeUpdate("u2", false)
	assert.Equal(t, firestore.ArrayRemove("u2"), unlike.Value)
}

// emulatorClient connects to the Firestore emulator named by
// FIRESTORE_EMULATOR_HOST.
func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}
	client, err := firestore.NewClient(context.Background(), "dreamsync-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestFirestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewFirestoreRepository(emulatorClient(t))
	owner := uuid.NewString()
	day := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	public := newDream(owner, "d1", day)
	public.Public = true
	public.Severity = 0.9
	private := newDream(owner, "d2", day.Add(time.Hour))

	stored, err := repo.Upsert(ctx, public)
	require.NoError(t, err)
	assert.Equal(t, public.DocID, stored.DocID)
	assert.Equal(t, "t-d1", stored.Title)
	assert.InDelta(t, 0.9, stored.Severity, 1e-9)
	assert.True(t, stored.Date.Equal(day))
	assert.False(t, stored.CreatedAt.IsZero())
	assert.Empty(t, stored.LikedBy)
	_, err = repo.Upsert(ctx, private)
	require.NoError(t, err)

	liked, err := repo.SetLike(ctx, owner, public.DocID, "u2", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, liked.LikedBy)

	public.Title = "renamed"
	again, err := repo.Upsert(ctx, public)
	require.NoError(t, err)
	assert.Equal(t, "renamed", again.Title)
	assert.Equal(t, []string{"u2"}, again.LikedBy)
	assert.True(t, again.CreatedAt.Equal(stored.CreatedAt))

	unliked, err := repo.SetLike(ctx, owner, public.DocID, "u2", false)
	require.NoError(t, err)
	assert.Empty(t, unliked.LikedBy)

	from, to := models.DayRange(day)
	feed, err := repo.Query(ctx, models.DreamQuery{OwnerID: owner, PublicOnly: true, From: from, To: to, Order: models.OrderDateDesc})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "d1", feed[0].DreamID)

	n, err := repo.MarkDeleted(ctx, owner, "d2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	all, err := repo.Query(ctx, models.DreamQuery{OwnerID: owner})
	require.NoError(t, err)
	require.Len(t, all, 1)

	gone, err := repo.Get(ctx, owner, private.DocID)
	require.NoError(t, err)
	assert.True(t, gone.Deleted)

	n, err = repo.DeleteByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = repo.Get(ctx, owner, public.DocID)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}
