// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chatbot_backend/internal/feature/auth/domain/entity"
	"chatbot_backend/internal/feature/auth/usecase"
	"chatbot_backend/internal/platform/db"
)

// userRepository はUserRepositoryインターフェースのGORM実装です。
// dbがnilの場合（DATABASE_URL未設定）は全操作がusecase.ErrStorageUnavailableを返します。
type userRepository struct {
	db *gorm.DB
}

// userRepositoryがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userRepository)(nil)

// NewUserRepository は指定されたgorm.DB接続でuserRepositoryの新しいインスタンスを生成します。
func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	if r.db == nil {
		return usecase.ErrStorageUnavailable
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) first(ctx context.Context, query string, arg any) (*entity.User, error) {
	if r.db == nil {
		return nil, usecase.ErrStorageUnavailable
	}
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Save はパスワードハッシュとリセット情報を更新します。
// nilのリセット情報もNULLとして書き込むため、Selectで列を明示します。
func (r *userRepository) Save(ctx context.Context, u *entity.User) error {
	if r.db == nil {
		return usecase.ErrStorageUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(u).
		Select("password_hash", "reset_token_hash", "reset_token_expires_at").
		Updates(u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// CompletePasswordReset はトークンハッシュが一致する行だけを条件付きで更新します。
// 更新件数が0の場合、別のリクエストが先にトークンを消費しています。
func (r *userRepository) CompletePasswordReset(ctx context.Context, userID uint, tokenHash, passwordHash string) error {
	if r.db == nil {
		return usecase.ErrStorageUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ? AND reset_token_hash = ?", userID, tokenHash).
		Updates(map[string]any{
			"password_hash":          passwordHash,
			"reset_token_hash":       nil,
			"reset_token_expires_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrResetTokenConsumed
	}
	return nil
}
