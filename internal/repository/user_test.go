package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakleaf-games/tictactoe-arena/internal/apperror"
	"github.com/oakleaf-games/tictactoe-arena/internal/entity"
	"github.com/oakleaf-games/tictactoe-arena/internal/repository/storage"
)

func newTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	db, err := storage.NewSQLite(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, db.Init(context.Background()))

	return db
}

func newTestUser(id, email string) *entity.User {
	now := time.Now().UTC().Truncate(time.Second)

	return &entity.User{
		ID:           id,
		Name:         "Alice",
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Role:         entity.RoleUser,
		CreatedAt:    now,
		LastSignedIn: now,
	}
}

func TestUserRepository_Save(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	userRepo := NewUserRepository(db.Connection)

	// Given: a new user
	user := newTestUser("user_1", "alice@example.com")

	// When: Save is called
	err := userRepo.Save(ctx, user)

	// Then: the user can be found by id and by email
	require.NoError(t, err)

	byID, err := userRepo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
	assert.Equal(t, user.PasswordHash, byID.PasswordHash)
	assert.Equal(t, entity.RoleUser, byID.Role)

	byEmail, err := userRepo.FindByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepository_Save_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	userRepo := NewUserRepository(db.Connection)

	require.NoError(t, userRepo.Save(ctx, newTestUser("user_1", "alice@example.com")))

	// When: a second user reuses the email
	err := userRepo.Save(ctx, newTestUser("user_2", "alice@example.com"))

	// Then: the unique constraint rejects the insert
	require.Error(t, err)
}

func TestUserRepository_Find_NotFound(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	userRepo := NewUserRepository(db.Connection)

	_, err := userRepo.FindByID(ctx, "missing")
	require.ErrorIs(t, err, apperror.ErrUserNotFound)

	_, err = userRepo.FindByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, apperror.ErrUserNotFound)
}

func TestUserRepository_UpdateLastSignedIn(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	userRepo := NewUserRepository(db.Connection)

	user := newTestUser("user_1", "alice@example.com")
	require.NoError(t, userRepo.Save(ctx, user))

	// When: the sign-in timestamp moves forward
	later := user.LastSignedIn.Add(time.Hour)
	err := userRepo.UpdateLastSignedIn(ctx, user.ID, later)

	// Then: the stored timestamp reflects the new value
	require.NoError(t, err)

	stored, err := userRepo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.LastSignedIn.Equal(later))
}
