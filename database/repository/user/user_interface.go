package userRepo

import (
	"context"

	"traceaq/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// Create inserts a new user. A taken email yields models.ErrConflict.
	Create(ctx context.Context, user *models.User) error
	// GetByID returns models.ErrNotFound when no user matches.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
