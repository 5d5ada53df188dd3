package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/client/repositories/preferences"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
)

const loginStatusSignedIn = "signed_in"

// sessionKeys are cleared on sign-out.
var sessionKeys = []string{
	preferences.KeyLoginStatus,
	preferences.KeyUserID,
	preferences.KeyUsername,
	preferences.KeyEmail,
	preferences.KeyAccessToken,
	preferences.KeyRefreshToken,
}

// AuthService opens sessions against the server and keeps them in the
// local preferences so a restart resumes the same user.
type AuthService struct {
	remote SessionRemote
	prefs  preferences.Repository
	logger logging.Logger
}

func NewAuthService(remote SessionRemote, prefs preferences.Repository, logger logging.Logger) *AuthService {
	a := &AuthService{remote: remote, prefs: prefs, logger: logger.With("module", "auth")}
	remote.OnRefresh(func(access, refresh string) {
		ctx := context.Background()
		if err := a.saveTokens(ctx, access, refresh); err != nil {
			a.logger.Error(ctx, "persist refreshed tokens", "error", err)
		}
	})
	return a
}

func (a *AuthService) saveTokens(ctx context.Context, access, refresh string) error {
	if err := preferences.SetString(ctx, a.prefs, preferences.KeyAccessToken, access); err != nil {
		return err
	}
	return preferences.SetString(ctx, a.prefs, preferences.KeyRefreshToken, refresh)
}

func (a *AuthService) persist(ctx context.Context, userID, email string) error {
	access, refresh := a.remote.Tokens()
	if err := a.saveTokens(ctx, access, refresh); err != nil {
		return err
	}
	if err := preferences.SetString(ctx, a.prefs, preferences.KeyUserID, userID); err != nil {
		return err
	}
	if err := preferences.SetString(ctx, a.prefs, preferences.KeyEmail, email); err != nil {
		return err
	}
	return preferences.SetString(ctx, a.prefs, preferences.KeyLoginStatus, loginStatusSignedIn)
}

// SignUp creates an account, optionally claiming username, and signs in.
func (a *AuthService) SignUp(ctx context.Context, email string, password []byte, username string) (string, error) {
	userID, err := a.remote.SignUp(ctx, email, string(password), username)
	if err != nil {
		return "", fmt.Errorf("sign up: %w", err)
	}
	if err := a.persist(ctx, userID, email); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	if username != "" {
		_ = preferences.SetString(ctx, a.prefs, preferences.KeyUsername, username)
	}
	a.logger.Info(ctx, "signed up", "user", userID)
	return userID, nil
}

func (a *AuthService) SignIn(ctx context.Context, email string, password []byte) (string, error) {
	userID, err := a.remote.SignIn(ctx, email, string(password))
	if err != nil {
		return "", fmt.Errorf("sign in: %w", err)
	}
	if err := a.persist(ctx, userID, email); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	a.logger.Info(ctx, "signed in", "user", userID)
	return userID, nil
}

// Restore loads a saved session into the remote client. It returns the
// user id, or "" when nobody is signed in.
func (a *AuthService) Restore(ctx context.Context) (string, error) {
	status, err := preferences.GetString(ctx, a.prefs, preferences.KeyLoginStatus)
	if err != nil {
		return "", err
	}
	if status != loginStatusSignedIn {
		return "", nil
	}
	userID, err := preferences.GetString(ctx, a.prefs, preferences.KeyUserID)
	if err != nil {
		return "", err
	}
	access, err := preferences.GetString(ctx, a.prefs, preferences.KeyAccessToken)
	if err != nil {
		return "", err
	}
	refresh, err := preferences.GetString(ctx, a.prefs, preferences.KeyRefreshToken)
	if err != nil {
		return "", err
	}
	a.remote.SetTokens(access, refresh)
	return userID, nil
}

// RememberUsername caches the signed-in user's username for the prompt.
func (a *AuthService) RememberUsername(ctx context.Context, username string) error {
	return preferences.SetString(ctx, a.prefs, preferences.KeyUsername, username)
}

// Username returns the cached username, if any.
func (a *AuthService) Username(ctx context.Context) string {
	name, _ := preferences.GetString(ctx, a.prefs, preferences.KeyUsername)
	return name
}

// SignOut forgets the session locally. Dreams stay on the device.
func (a *AuthService) SignOut(ctx context.Context) error {
	a.remote.SetTokens("", "")
	for _, k := range sessionKeys {
		if err := a.prefs.Delete(ctx, k); err != nil {
			return fmt.Errorf("clear %s: %w", k, err)
		}
	}
	return nil
}

// Ping checks that the server answers.
func (a *AuthService) Ping(ctx context.Context) error {
	return a.remote.Ping(ctx)
}
