package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"traceaq/models"
	"traceaq/services/validation"
	"traceaq/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an account and returns its id. A taken email yields models.ErrConflict.
func (s *DefaultUserService) SignUp(ctx context.Context, email, password string, profile models.UserProfile) (string, error) {
	email = normalizeEmail(email)
	fields := map[string]string{}
	if r := validation.Email(email); !r.Valid {
		fields[string(models.FieldEmail)] = r.Message
	}
	if r := validation.Password(password); !r.Valid {
		fields[string(models.FieldPassword)] = r.Message
	}
	if len(fields) > 0 {
		return "", &models.ValidationError{Fields: fields}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	displayName := strings.TrimSpace(profile.FirstName + " " + profile.LastName)
	u := &models.User{
		ID:             utils.NewUserID(),
		Email:          email,
		FirstName:      strings.TrimSpace(profile.FirstName),
		LastName:       strings.TrimSpace(profile.LastName),
		DisplayName:    displayName,
		PasswordHash:   string(hashed),
		MarketingOptIn: profile.MarketingOptIn,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return "", fmt.Errorf("an account with this email %w", models.ErrConflict)
		}
		s.Logger.Error("SignUp: failed to create user", zap.Error(err))
		return "", fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}
	s.Logger.Info("User signed up", zap.String("userID", u.ID))
	return u.ID, nil
}

func (s *DefaultUserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.GetByID(ctx, id)
}
