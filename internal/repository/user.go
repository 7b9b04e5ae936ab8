package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oakleaf-games/tictactoe-arena/internal/apperror"
	"github.com/oakleaf-games/tictactoe-arena/internal/entity"
)

type UserRepository interface {
	Save(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateLastSignedIn(ctx context.Context, id string, at time.Time) error
}

type userRepository struct {
	conn *sql.DB
}

func NewUserRepository(conn *sql.DB) UserRepository {
	return &userRepository{
		conn: conn,
	}
}

func (that *userRepository) Save(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (id, name, email, password_hash, role, created_at, last_signed_in)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.LastSignedIn)
	if err != nil {
		return fmt.Errorf("can't save user: %w", err)
	}

	return nil
}

func (that *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT id, name, email, password_hash, role, created_at, last_signed_in
		FROM users WHERE id = ?`

	return that.findOne(ctx, query, id)
}

func (that *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT id, name, email, password_hash, role, created_at, last_signed_in
		FROM users WHERE email = ?`

	return that.findOne(ctx, query, email)
}

func (that *userRepository) UpdateLastSignedIn(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_signed_in = ? WHERE id = ?`

	_, err := that.conn.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("can't update user: %w", err)
	}

	return nil
}

func (that *userRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var user entity.User

	err := that.conn.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.LastSignedIn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find user: %w", err)
	}

	return &user, nil
}
