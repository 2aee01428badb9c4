// Package adapters はprofileフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chatbot_backend/internal/feature/profile/domain/entity"
	"chatbot_backend/internal/feature/profile/usecase"
	"chatbot_backend/internal/platform/db"
)

// profileRepository はProfileRepositoryのGORM実装です。
type profileRepository struct {
	db *gorm.DB
}

var _ usecase.ProfileRepository = (*profileRepository)(nil)

// NewProfileRepository はprofileRepositoryを生成します。dbがnilの場合、全操作が利用不可になります。
func NewProfileRepository(db *gorm.DB) *profileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uint) (*entity.Profile, error) {
	if r.db == nil {
		return nil, usecase.ErrStorageUnavailable
	}
	var p entity.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create はプロフィールを追加します。user_idのユニーク制約違反はErrProfileAlreadyExistsになります。
func (r *profileRepository) Create(ctx context.Context, p *entity.Profile) error {
	if r.db == nil {
		return usecase.ErrStorageUnavailable
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrProfileAlreadyExists
		}
		return err
	}
	return nil
}

// UpdateByUserID は非nilのフィールドだけを条件付きUPDATEで書き込み、更新後の行を返します。
// 対象の行が存在しない場合はErrProfileNotFoundを返し、行を作り直すことはありません。
func (r *profileRepository) UpdateByUserID(ctx context.Context, userID uint, f entity.Fields) (*entity.Profile, error) {
	if r.db == nil {
		return nil, usecase.ErrStorageUnavailable
	}
	cols := f.Columns()
	if len(cols) == 0 {
		return r.FindByUserID(ctx, userID)
	}
	res := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("user_id = ?", userID).
		Updates(cols)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, usecase.ErrProfileNotFound
	}
	return r.FindByUserID(ctx, userID)
}

func (r *profileRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	if r.db == nil {
		return usecase.ErrStorageUnavailable
	}
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.Profile{}).Error
}
