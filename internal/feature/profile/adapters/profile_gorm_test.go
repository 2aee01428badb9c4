package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chatbot_backend/internal/feature/profile/domain/entity"
	"chatbot_backend/internal/feature/profile/usecase"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entity.Profile{}))
	return db
}

func TestProfileRepository_CreateAndFind(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	p := &entity.Profile{UserID: 1, Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)

	got, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	_, err = repo.FindByUserID(ctx, 2)
	assert.ErrorIs(t, err, usecase.ErrProfileNotFound)
}

func TestProfileRepository_OnePerUser(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Profile{UserID: 1, Name: "Alice"}))
	err := repo.Create(ctx, &entity.Profile{UserID: 1, Name: "Again"})

	assert.ErrorIs(t, err, usecase.ErrProfileAlreadyExists)

	require.NoError(t, repo.Create(ctx, &entity.Profile{UserID: 2, Name: "Bob"}))
}

func str(s string) *string { return &s }

func TestProfileRepository_UpdateWritesOnlyPresentFields(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Profile{UserID: 1, Name: "Alice", Bio: "hello", AvatarURL: "https://example.com/a.png"}))

	got, err := repo.UpdateByUserID(ctx, 1, entity.Fields{Bio: str("")})
	require.NoError(t, err)
	assert.Empty(t, got.Bio)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "https://example.com/a.png", got.AvatarURL)

	got, err = repo.UpdateByUserID(ctx, 1, entity.Fields{})
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}

func TestProfileRepository_UpdateAfterDeleteDoesNotRecreate(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Profile{UserID: 1, Name: "Alice"}))
	_, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByUserID(ctx, 1))

	_, err = repo.UpdateByUserID(ctx, 1, entity.Fields{Bio: str("late write")})
	assert.ErrorIs(t, err, usecase.ErrProfileNotFound)

	_, err = repo.FindByUserID(ctx, 1)
	assert.ErrorIs(t, err, usecase.ErrProfileNotFound)
}

func TestProfileRepository_InterleavedPartialUpdatesKeepBothFields(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Profile{UserID: 1, Name: "Alice", Bio: "old"}))

	// 二つのリクエストが同じ行を読んだあとに、それぞれ別のフィールドを書き込む
	_, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	_, err = repo.FindByUserID(ctx, 1)
	require.NoError(t, err)

	_, err = repo.UpdateByUserID(ctx, 1, entity.Fields{Bio: str("new bio")})
	require.NoError(t, err)
	_, err = repo.UpdateByUserID(ctx, 1, entity.Fields{Name: str("Alicia")})
	require.NoError(t, err)

	got, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.Name)
	assert.Equal(t, "new bio", got.Bio)
}

func TestProfileRepository_DeleteIsScopedAndIdempotent(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Profile{UserID: 1, Name: "Alice"}))
	require.NoError(t, repo.Create(ctx, &entity.Profile{UserID: 2, Name: "Bob"}))

	require.NoError(t, repo.DeleteByUserID(ctx, 1))
	require.NoError(t, repo.DeleteByUserID(ctx, 1))

	_, err := repo.FindByUserID(ctx, 1)
	assert.ErrorIs(t, err, usecase.ErrProfileNotFound)

	bob, err := repo.FindByUserID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Bob", bob.Name)
}

func TestProfileRepository_NoDatabase(t *testing.T) {
	t.Parallel()

	repo := NewProfileRepository(nil)
	ctx := context.Background()

	_, err := repo.FindByUserID(ctx, 1)
	assert.ErrorIs(t, err, usecase.ErrStorageUnavailable)
	assert.ErrorIs(t, repo.Create(ctx, &entity.Profile{}), usecase.ErrStorageUnavailable)
	_, err = repo.UpdateByUserID(ctx, 1, entity.Fields{Bio: str("x")})
	assert.ErrorIs(t, err, usecase.ErrStorageUnavailable)
	assert.ErrorIs(t, repo.DeleteByUserID(ctx, 1), usecase.ErrStorageUnavailable)
}
