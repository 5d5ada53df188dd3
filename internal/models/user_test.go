package models

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNewUserProfile_EmptySets(t *testing.T) {
	u := NewUserProfile("id1", "  WilliAM ", "w@example.com")

	assert.Equal(t, "william", u.Username)
	for _, l := range []UserList{ListFriends, ListFriendRequests, ListBlocked, ListAppsUsed} {
		assert.NotNil(t, u.Values(l), string(l))
		assert.Empty(t, u.Values(l), string(l))
	}
}

func TestSetHelpers(t *testing.T) {
	set := []string{"a", "b"}

	got := Union(set, "b", "c", "c", "")
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("Union mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"a", "b"}, set, "input untouched")

	got = Remove([]string{"a", "b", "a"}, "a")
	if diff := cmp.Diff([]string{"b"}, got); diff != "" {
		t.Fatalf("Remove mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{}, Remove(nil, "x"))
	assert.Equal(t, []string{"x", "y"}, Dedup([]string{"x", "y", "x"}))
}

func TestProfileUpdate_Apply(t *testing.T) {
	desc := "lucid dreamer"
	name := "NewName"
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	u := NewUserProfile("id1", "old", "")

	up := ProfileUpdate{Description: &desc, Username: &name, CreatedAt: &created}
	assert.False(t, up.Empty())
	up.Apply(u)

	assert.Equal(t, "lucid dreamer", u.Description)
	assert.Equal(t, "newname", u.Username)
	if assert.NotNil(t, u.CreatedAt) {
		assert.True(t, u.CreatedAt.Equal(created))
	}
	assert.True(t, ProfileUpdate{}.Empty())

	later := created.AddDate(1, 0, 0)
	ProfileUpdate{CreatedAt: &later}.Apply(u)
	assert.True(t, u.CreatedAt.Equal(created))
}

func TestBanActive(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	assert.False(t, (&UserProfile{}).BanActive(now))
	assert.True(t, (&UserProfile{Banned: true}).BanActive(now))
	assert.True(t, (&UserProfile{Banned: true, BannedUntil: &later}).BanActive(now))
	assert.False(t, (&UserProfile{Banned: true, BannedUntil: &earlier}).BanActive(now))
}

func TestUsernamePrefixUpper(t *testing.T) {
	upper := UsernamePrefixUpper("wi")
	assert.True(t, "wi" < upper)
	assert.True(t, "willi" < upper)
	assert.False(t, "wj" < upper)
}
