package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDreamService_UpsertAssignsDeterministicKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.dreams.Upsert(ctx, "u1", dream("", "d1", false))
	require.NoError(t, err)
	b, err := f.dreams.Upsert(ctx, "u1", dream("u1", "d1", false))
	require.NoError(t, err)
	assert.Equal(t, models.DreamDocumentID("u1", "d1"), a.DocID)
	assert.Equal(t, a.DocID, b.DocID)

	got, err := f.dreams.Query(ctx, "u1", models.DreamQuery{OwnerID: "u1"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDreamService_UpsertRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dreams.Upsert(ctx, "u1", dream("u2", "d1", false))
	assert.ErrorIs(t, err, common.ErrorPermissionDenied)

	bad := dream("u1", "d1", false)
	bad.Severity = 2
	_, err = f.dreams.Upsert(ctx, "u1", bad)
	assert.ErrorIs(t, err, common.ErrorInvalidArgument)
	assert.ErrorIs(t, err, models.ErrSeverityRange)

	wrongKey := dream("u1", "d1", false)
	wrongKey.DocID = "random"
	_, err = f.dreams.Upsert(ctx, "u1", wrongKey)
	assert.ErrorIs(t, err, common.ErrorInvalidArgument)
}

func TestDreamService_SoftDeleteHidesFromQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stored, err := f.dreams.Upsert(ctx, "u1", dream("u1", "d1", true))
	require.NoError(t, err)

	n, err := f.dreams.MarkDeleted(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.dreams.Query(ctx, "u1", models.DreamQuery{OwnerID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, got)

	direct, err := f.dreams.Get(ctx, "u1", "u1", stored.DocID)
	require.NoError(t, err)
	assert.True(t, direct.Deleted)

	_, err = f.dreams.Get(ctx, "u2", "u1", stored.DocID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDreamService_OthersSeePublicOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dreams.Upsert(ctx, "u1", dream("u1", "public", true))
	require.NoError(t, err)
	private, err := f.dreams.Upsert(ctx, "u1", dream("u1", "private", false))
	require.NoError(t, err)

	got, err := f.dreams.Query(ctx, "u2", models.DreamQuery{OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "public", got[0].DreamID)

	_, err = f.dreams.SetLike(ctx, "u2", "u1", private.DocID, true)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDreamService_SetLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.dreams.Upsert(ctx, "u1", dream("u1", "d1", true))
	require.NoError(t, err)

	liked, err := f.dreams.SetLike(ctx, "u2", "u1", d.DocID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, liked.LikedBy)

	unliked, err := f.dreams.SetLike(ctx, "u2", "u1", d.DocID, false)
	require.NoError(t, err)
	assert.Empty(t, unliked.LikedBy)
}

func TestDreamService_WatchStreamsChanges(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := f.dreams.Upsert(ctx, "u1", dream("u1", "d1", true))
	require.NoError(t, err)

	updates := make(chan *models.DreamDocument, 4)
	done := make(chan error, 1)
	go func() {
		done <- f.dreams.Watch(ctx, "u2", "u1", d.DocID, func(doc *models.DreamDocument) error {
			updates <- doc
			return nil
		})
	}()

	first := <-updates
	assert.Empty(t, first.LikedBy)

	require.Eventually(t, func() bool { return f.hub.Subscribers("dream:u1/"+d.DocID) == 1 }, time.Second, 5*time.Millisecond)
	_, err = f.dreams.SetLike(ctx, "u2", "u1", d.DocID, true)
	require.NoError(t, err)

	select {
	case next := <-updates:
		assert.Equal(t, []string{"u2"}, next.LikedBy)
	case <-time.After(time.Second):
		t.Fatal("no update after like")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not end on cancel")
	}
}
