package user

import (
	"context"
	"errors"
	"fmt"

	"traceaq/models"
	"traceaq/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SignIn checks the credentials and issues a session token. Every credential
// failure is reported as models.ErrAuth.
func (s *DefaultUserService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrAuth
		}
		s.Logger.Error("SignIn: failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrAuth
	}

	token, exp, err := s.Tokens.GenerateToken(u.ID, u.Email, s.SessionTTL)
	if err != nil {
		s.Logger.Error("SignIn: failed to sign token", zap.Error(err))
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	if err := s.Cache.Set(ctx, utils.AuthCachePrefix+utils.HashToken(token), u.ID, s.SessionTTL); err != nil {
		s.Logger.Error("SignIn: failed to cache token", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}
	return &models.Session{Token: token, UserID: u.ID, Email: u.Email, ExpiresAt: exp}, nil
}

// Authenticate resolves a token to its session. Tokens that were signed out are rejected.
func (s *DefaultUserService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, models.ErrAuth
	}
	sub, email, err := s.Tokens.ValidateToken(token)
	if err != nil {
		return nil, models.ErrAuth
	}
	cached, err := s.Cache.Get(ctx, utils.AuthCachePrefix+utils.HashToken(token))
	if err != nil {
		if errors.Is(err, utils.ErrCacheMiss) {
			return nil, models.ErrAuth
		}
		return nil, fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}
	if cached != sub {
		return nil, models.ErrAuth
	}
	return &models.Session{Token: token, UserID: sub, Email: email}, nil
}

// SignOut revokes the token. Unknown tokens are ignored.
func (s *DefaultUserService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.Cache.Del(ctx, utils.AuthCachePrefix+utils.HashToken(token)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
