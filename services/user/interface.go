package user

import (
	"context"
	"time"

	userRepo "traceaq/database/repository/user"
	"traceaq/models"
	"traceaq/utils"

	"go.uber.org/zap"
)

type UserService interface {
	// Registration and authentication
	SignUp(ctx context.Context, email, password string, profile models.UserProfile) (string, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	Authenticate(ctx context.Context, token string) (*models.Session, error)
	SignOut(ctx context.Context, token string) error

	// Password reset
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code, newPassword string) error

	GetUser(ctx context.Context, id string) (*models.User, error)
}

// ResetMailer delivers password reset codes.
type ResetMailer interface {
	SendResetCode(ctx context.Context, email, code string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo       userRepo.UserRepository
	Tokens     *utils.TokenIssuer
	Cache      utils.KVStore
	Mailer     ResetMailer
	SessionTTL time.Duration
	Logger     *zap.Logger
}

func NewUserService(repo userRepo.UserRepository, tokens *utils.TokenIssuer, cache utils.KVStore, mailer ResetMailer, sessionTTL time.Duration, logger *zap.Logger) *DefaultUserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &DefaultUserService{
		Repo:       repo,
		Tokens:     tokens,
		Cache:      cache,
		Mailer:     mailer,
		SessionTTL: sessionTTL,
		Logger:     logger,
	}
}
