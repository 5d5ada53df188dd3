package repomanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RunInTxRestoresOnError(t *testing.T) {
	ctx := context.Background()
	m, err := New(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)

	users := m.Repositories().Users
	_, err = users.Save(ctx, models.NewUserProfile("a", "alice", ""))
	require.NoError(t, err)
	_, err = users.Save(ctx, models.NewUserProfile("b", "bob", ""))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.RunInTx(ctx, func(ctx context.Context, r Repositories) error {
		if err := r.Users.AddToList(ctx, "a", models.ListFriends, "b"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	a, err := users.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, a.Friends)

	err = m.RunInTx(ctx, func(ctx context.Context, r Repositories) error {
		return r.Users.AddToList(ctx, "a", models.ListFriends, "b")
	})
	require.NoError(t, err)
	a, err = users.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, a.Friends)
	require.NoError(t, m.Close())
}

func TestMemory_WritesOutsideTxSurviveRollback(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRepositoryManager()
	users := m.Repositories().Users
	for _, u := range []*models.UserProfile{
		models.NewUserProfile("a", "alice", ""),
		models.NewUserProfile("b", "bob", ""),
	} {
		_, err := users.Save(ctx, u)
		require.NoError(t, err)
	}

	inTx := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- m.RunInTx(ctx, func(ctx context.Context, r Repositories) error {
			if err := r.Users.AddToList(ctx, "a", models.ListFriends, "b"); err != nil {
				return err
			}
			close(inTx)
			<-release
			return errors.New("rolled back")
		})
	}()
	<-inTx

	written := make(chan error, 1)
	go func() {
		written <- users.AddToList(ctx, "b", models.ListFriendRequests, "a")
	}()

	select {
	case <-written:
		t.Fatal("write finished while a transaction was running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	require.Error(t, <-txDone)
	require.NoError(t, <-written)

	a, err := users.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, a.Friends)
	b, err := users.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, b.FriendRequests)
}
