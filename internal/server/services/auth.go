package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/server/auth"
	"github.com/dmitrijs2005/dreamsync/internal/server/models"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// AuthConfig carries the token settings of AuthService.
type AuthConfig struct {
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
}

// AuthService is the development sign-in provider: email and password
// accounts, JWT access tokens and rotated refresh tokens.
type AuthService struct {
	repomanager                  repomanager.RepositoryManager
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewAuthService(m repomanager.RepositoryManager, cfg AuthConfig, logger logging.Logger) *AuthService {
	return &AuthService{
		repomanager:                  m,
		logger:                       logger.With("module", "auth"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("empty email: %w", common.ErrorInvalidArgument)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	var pair *TokenPair
	err = s.repomanager.RunInTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if _, err := r.Accounts.Create(ctx, account); err != nil {
			return err
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, account.ID, r)
		return genErr
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Error(ctx, "sign up failed", "error", err)
		return nil, common.ErrorInternal
	}
	s.logger.Info(ctx, "account created", "user_id", account.ID)
	return pair, nil
}

// SignIn verifies the credentials and returns a new TokenPair.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	r := s.repomanager.Repositories()
	account, err := r.Accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if err := auth.CheckPassword(account.PasswordHash, password); err != nil {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, account.ID, r)
}

// RefreshToken validates a refresh token, rotates it transactionally and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	r := s.repomanager.Repositories()
	token, err := r.Accounts.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		_ = r.Accounts.DeleteRefreshToken(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	err = s.repomanager.RunInTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Accounts.DeleteRefreshToken(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, r)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// IssueAccessToken mints an access token for userID without an account
// lookup. Used by the token command to stand in for an external provider.
func (s *AuthService) IssueAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *AuthService) generateTokenPair(ctx context.Context, userID string, r repomanager.Repositories) (*TokenPair, error) {
	access, err := s.IssueAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := r.Accounts.CreateRefreshToken(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{UserID: userID, AccessToken: access, RefreshToken: refresh}, nil
}
