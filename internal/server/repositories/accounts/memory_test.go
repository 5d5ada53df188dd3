package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_AccountLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Create(ctx, &models.Account{ID: "u1", Email: "a@b.c"})
	require.NoError(t, err)
	_, err = r.Create(ctx, &models.Account{ID: "u2", Email: "a@b.c"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	a, err := r.GetByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "u1", a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	require.NoError(t, r.CreateRefreshToken(ctx, "u1", "t1", time.Hour))
	tok, err := r.FindRefreshToken(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)

	require.NoError(t, r.Delete(ctx, "u1"))
	_, err = r.FindRefreshToken(ctx, "t1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.Get(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.CreateRefreshToken(ctx, "u1", "t1", time.Hour))

	snap := r.Snapshot()
	require.NoError(t, r.DeleteRefreshToken(ctx, "t1"))
	r.Restore(snap)

	_, err := r.FindRefreshToken(ctx, "t1")
	require.NoError(t, err)
}
