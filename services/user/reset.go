package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"traceaq/models"
	"traceaq/services/validation"
	"traceaq/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const resetCodeDigits = 6

// RequestPasswordReset emails a reset code when the account exists. It never
// tells the caller whether it did.
func (s *DefaultUserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.Logger.Error("RequestPasswordReset: failed to fetch user", zap.Error(err))
		}
		return nil
	}

	code, err := utils.GenerateNumericCode(resetCodeDigits)
	if err != nil {
		s.Logger.Error("RequestPasswordReset: failed to generate code", zap.Error(err))
		return nil
	}
	key := utils.ResetCodePrefix + u.Email
	if err := s.Cache.Set(ctx, key, utils.HashToken(code), utils.ResetCodeTTL); err != nil {
		s.Logger.Error("RequestPasswordReset: failed to store code", zap.Error(err))
		return nil
	}
	if err := s.Cache.Del(ctx, key+utils.ResetAttemptsSuffix); err != nil {
		s.Logger.Warn("RequestPasswordReset: failed to reset attempt counter", zap.Error(err))
	}
	if err := s.Mailer.SendResetCode(ctx, u.Email, code); err != nil {
		s.Logger.Error("RequestPasswordReset: failed to queue email", zap.Error(err))
	}
	return nil
}

// VerifyResetCode checks a reset code. With a new password it also replaces the
// password and consumes the code. After utils.MaxResetAttempts wrong codes the
// pending code is dropped and a new one has to be requested.
func (s *DefaultUserService) VerifyResetCode(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	key := utils.ResetCodePrefix + email
	stored, err := s.Cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, utils.ErrCacheMiss) {
			return models.ErrInvalidResetCode
		}
		return fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(utils.HashToken(code))) != 1 {
		s.recordFailedReset(ctx, key)
		return models.ErrInvalidResetCode
	}
	if newPassword == "" {
		return nil
	}

	if r := validation.Password(newPassword); !r.Valid {
		return &models.ValidationError{Fields: map[string]string{string(models.FieldPassword): r.Message}}
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrInvalidResetCode
		}
		return fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, string(hashed)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.dropResetCode(ctx, key)
	s.Logger.Info("Password reset", zap.String("userID", u.ID))
	return nil
}

func (s *DefaultUserService) recordFailedReset(ctx context.Context, key string) {
	n, err := s.Cache.Incr(ctx, key+utils.ResetAttemptsSuffix, utils.ResetCodeTTL)
	if err != nil {
		s.Logger.Error("VerifyResetCode: failed to count attempt", zap.Error(err))
		return
	}
	if n >= utils.MaxResetAttempts {
		s.Logger.Warn("Reset code burned after repeated failures", zap.Int64("attempts", n))
		s.dropResetCode(ctx, key)
	}
}

func (s *DefaultUserService) dropResetCode(ctx context.Context, key string) {
	for _, k := range []string{key, key + utils.ResetAttemptsSuffix} {
		if err := s.Cache.Del(ctx, k); err != nil {
			s.Logger.Warn("Failed to clear reset code", zap.String("key", k), zap.Error(err))
		}
	}
}
