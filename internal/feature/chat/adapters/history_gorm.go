// Package adapters はchatフィーチャーの履歴リポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chatbot_backend/internal/feature/chat/domain/entity"
	"chatbot_backend/internal/feature/chat/usecase"
)

// historyRepository はHistoryRepositoryのGORM実装です。
// dbがnilの場合はAvailable()がfalseになり、保存はスキップされます。
type historyRepository struct {
	db *gorm.DB
}

var _ usecase.HistoryRepository = (*historyRepository)(nil)

// NewHistoryRepository はhistoryRepositoryを生成します。
func NewHistoryRepository(db *gorm.DB) *historyRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Available() bool {
	return r.db != nil
}

func (r *historyRepository) Append(ctx context.Context, msg *entity.ChatMessage) error {
	if r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

// List は作成日時の降順、同時刻はIDの降順で返します。
func (r *historyRepository) List(ctx context.Context, userID uint, limit int) ([]entity.ChatMessage, error) {
	out := []entity.ChatMessage{}
	if r.db == nil {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByID は他のユーザーの履歴には触れません。一致しない場合はErrHistoryNotFoundです。
func (r *historyRepository) DeleteByID(ctx context.Context, userID, id uint) error {
	if r.db == nil {
		return usecase.ErrHistoryNotFound
	}
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entity.ChatMessage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrHistoryNotFound
	}
	return nil
}

// DeleteByQuestion は質問文が完全一致するうち最新の一件だけを削除します。
func (r *historyRepository) DeleteByQuestion(ctx context.Context, userID uint, question string) error {
	if r.db == nil {
		return usecase.ErrHistoryNotFound
	}
	var latest entity.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND question = ?", userID, question).
		Order("created_at DESC").
		Order("id DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecase.ErrHistoryNotFound
		}
		return err
	}
	return r.DeleteByID(ctx, userID, latest.ID)
}
