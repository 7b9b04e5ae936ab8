package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oakleaf-games/tictactoe-arena/internal/apperror"
	"github.com/oakleaf-games/tictactoe-arena/internal/entity"
	"github.com/oakleaf-games/tictactoe-arena/internal/pkg"
)

type userRepo interface {
	Save(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateLastSignedIn(ctx context.Context, id string, at time.Time) error
}

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type userService struct {
	logger *slog.Logger

	userRepo userRepo
	auth     AuthService
}

func NewUserService(logger *slog.Logger, userRepo userRepo, auth AuthService) UserService {
	return &userService{
		logger:   logger,
		userRepo: userRepo,
		auth:     auth,
	}
}

func (that *userService) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	_, err := that.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperror.ErrEmailTaken
	}
	if !errors.Is(err, apperror.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := that.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()

	user := &entity.User{
		ID:           pkg.NewUserID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         entity.RoleUser,
		CreatedAt:    now,
		LastSignedIn: now,
	}

	if err = that.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return user, nil
}

// Login - verifies credentials. The same error covers a missing user and a
// wrong password, so callers can't probe which emails are registered.
func (that *userService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	log := that.logger.With("method", "Login")

	user, err := that.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, apperror.ErrUserNotFound) {
		return nil, apperror.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !that.auth.VerifyPassword(password, user.PasswordHash) {
		return nil, apperror.ErrInvalidCredentials
	}

	user.LastSignedIn = time.Now().UTC()
	if err = that.userRepo.UpdateLastSignedIn(ctx, user.ID, user.LastSignedIn); err != nil {
		log.Warn("failed to update last sign-in time", "userID", user.ID, "error", err)
	}

	return user, nil
}

func (that *userService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := that.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}
