package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_StartSessionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pair, err := f.auth.SignUp(ctx, "Willi@Example.com", "secret1")
	require.NoError(t, err)

	first, err := f.users.StartSession(ctx, pair.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{common.AppIdentifier}, first.AppsUsed)
	assert.Equal(t, "willi@example.com", first.Email)
	require.NotNil(t, first.CreatedAt)

	second, err := f.users.StartSession(ctx, pair.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{common.AppIdentifier}, second.AppsUsed)
	assert.True(t, first.CreatedAt.Equal(*second.CreatedAt))
}

func TestUserService_StartSessionBackfillsExistingProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pair, err := f.auth.SignUp(ctx, "a@b.c", "secret1")
	require.NoError(t, err)
	legacy := models.NewUserProfile(pair.UserID, "legacy", "a@b.c")
	_, err = f.rm.Repositories().Users.Save(ctx, legacy)
	require.NoError(t, err)
	require.NoError(t, f.rm.Repositories().Users.AddToList(ctx, pair.UserID, models.ListAppsUsed, "OtherApp"))

	got, err := f.users.StartSession(ctx, pair.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"OtherApp", common.AppIdentifier}, got.AppsUsed)
	assert.NotNil(t, got.CreatedAt)
	assert.Equal(t, "legacy", got.Username)
}

func TestUserService_StartSessionWithoutAccount(t *testing.T) {
	f := newFixture(t)
	got, err := f.users.StartSession(context.Background(), "external-id")
	require.NoError(t, err)
	assert.Nil(t, got.CreatedAt)
	assert.Equal(t, []string{common.AppIdentifier}, got.AppsUsed)
}

func TestUserService_SaveGuardsOwnershipAndUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "u1", "willi")

	_, err := f.users.Save(ctx, "u2", models.NewUserProfile("u1", "x", ""))
	assert.ErrorIs(t, err, common.ErrorPermissionDenied)

	_, err = f.users.Save(ctx, "u2", models.NewUserProfile("u2", "Willi", ""))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	saved, err := f.users.Save(ctx, "u2", models.NewUserProfile("", " Wilma ", ""))
	require.NoError(t, err)
	assert.Equal(t, "u2", saved.ID)
	assert.Equal(t, "wilma", saved.Username)
}

func TestUserService_CheckUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "u1", "willi")

	ok, err := f.users.CheckUsername(ctx, "WILLI")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.users.CheckUsername(ctx, "wilma")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.users.CheckUsername(ctx, "  ")
	assert.ErrorIs(t, err, common.ErrorInvalidArgument)
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "u1", "willi")
	f.addUser(t, "u2", "wilma")

	taken := "wilma"
	_, err := f.users.UpdateProfile(ctx, "u1", models.ProfileUpdate{Username: &taken})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	desc := "lucid"
	streak := 3
	got, err := f.users.UpdateProfile(ctx, "u1", models.ProfileUpdate{Description: &desc, Streak: &streak})
	require.NoError(t, err)
	assert.Equal(t, "lucid", got.Description)
	assert.Equal(t, 3, got.Streak)
}

func TestUserService_SearchIsCaseInsensitivePrefixAndPaged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, name := range []string{"willi", "wilma", "wim", "bob"} {
		f.addUser(t, string(rune('a'+i)), name)
	}

	got, err := f.users.Search(ctx, "WI", 100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, u := range got {
		assert.GreaterOrEqual(t, u.Username, "wi")
		assert.Less(t, u.Username, models.UsernamePrefixUpper("wi"))
	}

	got, err = f.users.Search(ctx, "zz", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.users.Search(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserService_FindByPhones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := models.NewUserProfile("u1", "willi", "")
	u.PhoneNumber = "+1"
	_, err := f.rm.Repositories().Users.Save(ctx, u)
	require.NoError(t, err)

	got, err := f.users.FindByPhones(ctx, []string{"+1", "+1", "+2"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = f.users.FindByPhones(ctx, make([]string, 31))
	require.NoError(t, err, "duplicates collapse before the batch limit")

	many := make([]string, 31)
	for i := range many {
		many[i] = string(rune('A' + i))
	}
	_, err = f.users.FindByPhones(ctx, many)
	assert.ErrorIs(t, err, common.ErrorInvalidArgument)
}

func TestUserService_DeleteAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pair, err := f.auth.SignUp(ctx, "a@b.c", "secret1")
	require.NoError(t, err)
	_, err = f.users.StartSession(ctx, pair.UserID)
	require.NoError(t, err)
	_, err = f.dreams.Upsert(ctx, pair.UserID, dream(pair.UserID, "d1", true))
	require.NoError(t, err)

	f.pics.err = errors.New("s3 down")
	require.NoError(t, f.users.DeleteAccount(ctx, pair.UserID))
	assert.Equal(t, []string{pair.UserID}, f.pics.deleted)

	_, err = f.users.Get(ctx, pair.UserID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	docs, err := f.dreams.Query(ctx, pair.UserID, models.DreamQuery{OwnerID: pair.UserID})
	require.NoError(t, err)
	assert.Empty(t, docs)
	_, err = f.auth.SignIn(ctx, "a@b.c", "secret1")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUserService_ProfilePictureUploadURL(t *testing.T) {
	f := newFixture(t)
	upload, public, err := f.users.ProfilePictureUploadURL(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://upload/u1", upload)
	assert.Equal(t, "https://public/u1", public)
}

func TestUserService_WatchEndsOnCancel(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "willi")

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan *models.UserProfile, 2)
	done := make(chan error, 1)
	go func() {
		done <- f.users.Watch(ctx, "u1", func(u *models.UserProfile) error {
			got <- u
			return nil
		})
	}()

	assert.Equal(t, "willi", (<-got).Username)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch still running")
	}
}
