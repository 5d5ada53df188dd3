package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/dmitrijs2005/dreamsync/internal/server/notify"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	rm     *repomanager.MemoryRepositoryManager
	hub    *notify.Hub
	dreams *DreamService
	users  *UserService
	social *SocialService
	auth   *AuthService
	pics   *fakePictures
}

type fakePictures struct {
	deleted []string
	err     error
}

func (f *fakePictures) UploadURL(_ context.Context, userID string) (string, string, error) {
	return "https://upload/" + userID, "https://public/" + userID, f.err
}

func (f *fakePictures) Delete(_ context.Context, userID string) error {
	f.deleted = append(f.deleted, userID)
	return f.err
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rm := repomanager.NewMemoryRepositoryManager()
	hub := notify.NewHub()
	t.Cleanup(func() { _ = hub.Close() })
	logger := logging.Nop()
	pics := &fakePictures{}
	return &fixture{
		rm:     rm,
		hub:    hub,
		dreams: NewDreamService(rm, hub, logger),
		users:  NewUserService(rm, hub, pics, 2, logger),
		social: NewSocialService(rm, hub, logger),
		auth: NewAuthService(rm, AuthConfig{
			SecretKey:                    "k",
			AccessTokenValidityDuration:  time.Hour,
			RefreshTokenValidityDuration: 2 * time.Hour,
		}, logger),
		pics: pics,
	}
}

func (f *fixture) addUser(t *testing.T, id, username string) {
	t.Helper()
	_, err := f.rm.Repositories().Users.Save(context.Background(), models.NewUserProfile(id, username, id+"@example.com"))
	require.NoError(t, err)
}

func dream(owner, id string, public bool) *models.DreamDocument {
	return &models.DreamDocument{
		OwnerID:  owner,
		DreamID:  id,
		Title:    "title " + id,
		Date:     time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC),
		Severity: 0.5,
		Public:   public,
	}
}
