package service

import (
	"context"
	"errors"

	"github.com/madac4/doCreate-server/internal/cache"
	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/repository"
	"github.com/madac4/doCreate-server/internal/token"
)

// TokenPair holds a freshly minted access/refresh token pair
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles login, logout, token refresh and session lookups
type AuthService struct {
	users    repository.UserRepository
	sessions cache.SessionStore
	tokens   *token.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepository, sessions cache.SessionStore, tokens *token.Manager) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
	}
}

// Login verifies credentials, stores the session and mints a token pair.
// Unknown email and wrong password produce the same error on purpose.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, TokenPair{}, domain.ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}

	if !token.ComparePassword(user.Password, password) {
		return nil, TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	if err := s.sessions.Set(ctx, user); err != nil {
		return nil, TokenPair{}, err
	}

	return user, pair, nil
}

// Logout removes the session cache entry for the user
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.sessions.Delete(ctx, userID)
}

// Refresh verifies the refresh token and mints a new pair. A validly signed
// token is still rejected when the session cache has no entry for its user:
// logout revokes the whole session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, TokenPair, error) {
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, domain.ErrRefreshSession
	}

	user, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, TokenPair{}, domain.ErrRefreshSession
		}
		return nil, TokenPair{}, err
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	return user, pair, nil
}

// Session resolves an access token into the cached session user.
// Used by the authentication gate on every protected route.
func (s *AuthService) Session(ctx context.Context, accessToken string) (*domain.User, error) {
	userID, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	return s.sessions.Get(ctx, userID)
}

func (s *AuthService) mintPair(user *domain.User) (TokenPair, error) {
	access, err := s.tokens.SignAccessToken(user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := s.tokens.SignRefreshToken(user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
