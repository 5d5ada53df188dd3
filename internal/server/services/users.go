package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/dmitrijs2005/dreamsync/internal/server/notify"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/repomanager"
)

// PictureStore holds profile pictures.
type PictureStore interface {
	UploadURL(ctx context.Context, userID string) (uploadURL, publicURL string, err error)
	Delete(ctx context.Context, userID string) error
}

// UserService reads and writes profile documents. Any signed-in user may
// read a profile; only its owner writes it.
type UserService struct {
	repomanager    repomanager.RepositoryManager
	pictures       PictureStore
	searchPageSize int
	publisher
}

func NewUserService(m repomanager.RepositoryManager, n notify.Notifier, pictures PictureStore, searchPageSize int, logger logging.Logger) *UserService {
	logger = logger.With("module", "users")
	if searchPageSize <= 0 {
		searchPageSize = 20
	}
	return &UserService{
		repomanager:    m,
		pictures:       pictures,
		searchPageSize: searchPageSize,
		publisher:      publisher{notifier: n, logger: logger},
	}
}

func (s *UserService) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	return s.repomanager.Repositories().Users.Get(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	name := models.NormalizeUsername(username)
	if name == "" {
		return nil, fmt.Errorf("empty username: %w", common.ErrorInvalidArgument)
	}
	return s.repomanager.Repositories().Users.GetByUsername(ctx, name)
}

// CheckUsername reports whether nobody holds username.
func (s *UserService) CheckUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return true, nil
	case err != nil:
		return false, err
	}
	return false, nil
}

// ensureUsernameFree fails with common.ErrorAlreadyExists when username
// belongs to someone other than callerID.
func (s *UserService) ensureUsernameFree(ctx context.Context, callerID, username string) error {
	if username == "" {
		return nil
	}
	holder, err := s.repomanager.Repositories().Users.GetByUsername(ctx, username)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if holder.ID != callerID {
		return fmt.Errorf("username %q: %w", username, common.ErrorAlreadyExists)
	}
	return nil
}

// Save creates or merges the caller's own profile.
func (s *UserService) Save(ctx context.Context, callerID string, u *models.UserProfile) (*models.UserProfile, error) {
	if u.ID == "" {
		u.ID = callerID
	}
	if u.ID != callerID {
		return nil, common.ErrorPermissionDenied
	}
	u.Username = models.NormalizeUsername(u.Username)
	if err := s.ensureUsernameFree(ctx, callerID, u.Username); err != nil {
		return nil, err
	}
	stored, err := s.repomanager.Repositories().Users.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.UserTopic(callerID))
	return stored, nil
}

// UpdateProfile applies a partial write to the caller's profile.
func (s *UserService) UpdateProfile(ctx context.Context, callerID string, up models.ProfileUpdate) (*models.UserProfile, error) {
	if up.Username != nil {
		name := models.NormalizeUsername(*up.Username)
		if name == "" {
			return nil, fmt.Errorf("empty username: %w", common.ErrorInvalidArgument)
		}
		if err := s.ensureUsernameFree(ctx, callerID, name); err != nil {
			return nil, err
		}
		up.Username = &name
	}
	stored, err := s.repomanager.Repositories().Users.Update(ctx, callerID, up)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.UserTopic(callerID))
	return stored, nil
}

// StartSession runs the profile migrations due at sign-in: the profile
// exists, lists this app in AppsUsed and carries a creation date taken from
// the account. Running it again changes nothing.
func (s *UserService) StartSession(ctx context.Context, callerID string) (*models.UserProfile, error) {
	err := s.repomanager.RunInTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		profile, err := r.Users.Get(ctx, callerID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		var email string
		var created *models.ProfileUpdate
		account, err := r.Accounts.Get(ctx, callerID)
		switch {
		case err == nil:
			email = account.Email
			at := account.CreatedAt
			created = &models.ProfileUpdate{CreatedAt: &at}
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		if profile == nil {
			fresh := models.NewUserProfile(callerID, "", email)
			if created != nil {
				fresh.CreatedAt = created.CreatedAt
			}
			if _, err := r.Users.Save(ctx, fresh); err != nil {
				return err
			}
		} else if profile.CreatedAt == nil && created != nil {
			if _, err := r.Users.Update(ctx, callerID, *created); err != nil {
				return err
			}
		}

		if profile == nil || !models.Contains(profile.AppsUsed, common.AppIdentifier) {
			return r.Users.AddToList(ctx, callerID, models.ListAppsUsed, common.AppIdentifier)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.UserTopic(callerID))
	return s.Get(ctx, callerID)
}

// Search returns one page of profiles whose username starts with query.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]*models.UserProfile, error) {
	prefix := models.NormalizeUsername(query)
	if prefix == "" {
		return []*models.UserProfile{}, nil
	}
	if limit <= 0 || limit > s.searchPageSize {
		limit = s.searchPageSize
	}
	return s.repomanager.Repositories().Users.SearchByUsernamePrefix(ctx, prefix, limit)
}

// FindByPhones looks up one batch of at most common.ContactsBatchSize
// phone numbers.
func (s *UserService) FindByPhones(ctx context.Context, phones []string) ([]*models.UserProfile, error) {
	return s.repomanager.Repositories().Users.FindByPhoneNumbers(ctx, models.Dedup(phones))
}

// ProfilePictureUploadURL presigns the upload of the caller's picture.
func (s *UserService) ProfilePictureUploadURL(ctx context.Context, callerID string) (string, string, error) {
	if s.pictures == nil {
		return "", "", common.ErrorUnavailable
	}
	return s.pictures.UploadURL(ctx, callerID)
}

// DeleteAccount removes the caller's dreams, picture, profile and account.
func (s *UserService) DeleteAccount(ctx context.Context, callerID string) error {
	r := s.repomanager.Repositories()
	n, err := r.Dreams.DeleteByOwner(ctx, callerID)
	if err != nil {
		return err
	}
	if s.pictures != nil {
		if err := s.pictures.Delete(ctx, callerID); err != nil {
			s.logger.Warn(ctx, "profile picture not deleted", "user_id", callerID, "error", err)
		}
	}
	err = s.repomanager.RunInTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Users.Delete(ctx, callerID); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		if err := r.Accounts.Delete(ctx, callerID); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "account deleted", "user_id", callerID, "dreams", n)
	s.publish(ctx, notify.UserTopic(callerID))
	return nil
}

// Watch streams profile userID to send until ctx is done.
func (s *UserService) Watch(ctx context.Context, userID string, send func(*models.UserProfile) error) error {
	return watch(ctx, s.notifier, notify.UserTopic(userID), func(ctx context.Context) (*models.UserProfile, error) {
		return s.Get(ctx, userID)
	}, send)
}
