package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/dmitrijs2005/dreamsync/internal/netx"
)

const pictureContentType = "image/jpeg"

// UserDirectory reads and edits profile documents.
type UserDirectory struct {
	remote     DirectoryRemote
	httpClient *http.Client
	logger     logging.Logger
}

func NewUserDirectory(remote DirectoryRemote, httpClient *http.Client, logger logging.Logger) *UserDirectory {
	return &UserDirectory{remote: remote, httpClient: httpClient, logger: logger.With("module", "directory")}
}

func (d *UserDirectory) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	return d.remote.GetUser(ctx, id)
}

// GetByUsername returns the first profile with the given username.
func (d *UserDirectory) GetByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	return d.remote.GetUserByUsername(ctx, models.NormalizeUsername(username))
}

// Save creates the profile or merges it into the stored one.
func (d *UserDirectory) Save(ctx context.Context, u *models.UserProfile) (*models.UserProfile, error) {
	u.Normalize()
	saved, err := d.remote.SaveUser(ctx, u)
	if err != nil {
		d.logger.Error(ctx, "save profile", "user", u.ID, "error", err)
		return nil, err
	}
	return saved, nil
}

// StartSession runs the sign-in profile migrations and returns the
// migrated profile. It is safe to call on every sign-in.
func (d *UserDirectory) StartSession(ctx context.Context, userID string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, common.ErrNotSignedIn
	}
	u, err := d.remote.StartSession(ctx)
	if err != nil {
		d.logger.Error(ctx, "start session", "user", userID, "error", err)
		return nil, err
	}
	return u, nil
}

// CheckUsername reports whether no profile uses username yet.
func (d *UserDirectory) CheckUsername(ctx context.Context, username string) (bool, error) {
	name := models.NormalizeUsername(username)
	if name == "" {
		return false, fmt.Errorf("empty username: %w", common.ErrorInvalidArgument)
	}
	return d.remote.CheckUsername(ctx, name)
}

// Register claims username for the signed-in user.
func (d *UserDirectory) Register(ctx context.Context, userID, username string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, common.ErrNotSignedIn
	}
	name := models.NormalizeUsername(username)
	free, err := d.CheckUsername(ctx, name)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, fmt.Errorf("%q: %w", name, common.ErrUsernameTaken)
	}
	return d.update(ctx, "register username", models.ProfileUpdate{Username: &name})
}

func (d *UserDirectory) UpdateDescription(ctx context.Context, description string) (*models.UserProfile, error) {
	description = strings.TrimSpace(description)
	return d.update(ctx, "update description", models.ProfileUpdate{Description: &description})
}

// SetPhoneNumber stores the number with separators stripped.
func (d *UserDirectory) SetPhoneNumber(ctx context.Context, countryCode, number string) (*models.UserProfile, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return nil, fmt.Errorf("phone number %q: %w", number, common.ErrorInvalidArgument)
	}
	code := strings.TrimSpace(countryCode)
	return d.update(ctx, "set phone number", models.ProfileUpdate{PhoneNumber: &digits, CountryCode: &code})
}

func (d *UserDirectory) update(ctx context.Context, action string, up models.ProfileUpdate) (*models.UserProfile, error) {
	u, err := d.remote.UpdateProfile(ctx, up)
	if err != nil {
		d.logger.Error(ctx, action, "error", err)
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return u, nil
}

// BanStatus describes a user's ban at a point in time.
type BanStatus struct {
	Banned bool
	Reason string
	Until  *time.Time
}

// BanStatus reports whether userID is banned at now.
func (d *UserDirectory) BanStatus(ctx context.Context, userID string, now time.Time) (BanStatus, error) {
	u, err := d.remote.GetUser(ctx, userID)
	if err != nil {
		return BanStatus{}, err
	}
	if !u.BanActive(now) {
		return BanStatus{}, nil
	}
	return BanStatus{Banned: true, Reason: u.BanReason, Until: u.BannedUntil}, nil
}

// ProfilePictureUpload stores a JPEG as the signed-in user's picture and
// points the profile at it.
func (d *UserDirectory) ProfilePictureUpload(ctx context.Context, userID string, jpeg []byte) (*models.UserProfile, error) {
	if userID == "" {
		return nil, common.ErrNotSignedIn
	}
	if len(jpeg) == 0 {
		return nil, fmt.Errorf("empty picture: %w", common.ErrorInvalidArgument)
	}
	uploadURL, publicURL, err := d.remote.ProfilePictureUploadURL(ctx)
	if err != nil {
		d.logger.Error(ctx, "picture upload url", "error", err)
		return nil, err
	}
	if err := netx.PutObject(ctx, d.httpClient, uploadURL, pictureContentType, jpeg); err != nil {
		d.logger.Error(ctx, "picture upload", "error", err)
		return nil, fmt.Errorf("upload picture: %w", err)
	}
	return d.update(ctx, "set picture", models.ProfileUpdate{ProfilePictureURL: &publicURL})
}

// WatchUser streams the profile until ctx is cancelled.
func (d *UserDirectory) WatchUser(ctx context.Context, userID string) (<-chan *models.UserProfile, error) {
	return d.remote.WatchUser(ctx, userID)
}

// DeleteAccount removes the signed-in user's dreams, profile and picture.
func (d *UserDirectory) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return common.ErrNotSignedIn
	}
	if err := d.remote.DeleteAccount(ctx); err != nil {
		d.logger.Error(ctx, "delete account", "user", userID, "error", err)
		return err
	}
	d.logger.Info(ctx, "account deleted", "user", userID)
	return nil
}
