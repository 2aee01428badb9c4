package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	chatadapters "chatbot_backend/internal/feature/chat/adapters"
	"chatbot_backend/internal/feature/chat/usecase"
	"chatbot_backend/internal/platform/cache"
)

// NewHistoryRepository creates a HistoryRepository implementation.
// If Redis is available, list reads are cached in Redis in front of the database.
// Otherwise, the database repository is used directly.
func NewHistoryRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.HistoryRepository {
	repo := chatadapters.NewHistoryRepository(db)
	if rdb != nil {
		return cache.NewCachingHistoryRepository(rdb, ttl, repo, "history")
	}
	return repo
}
