// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"chatbot_backend/internal/feature/chat/domain/entity"
	"chatbot_backend/internal/feature/chat/usecase"
)

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// errStaleFill is returned inside the fill transaction when the owner's generation moved on.
var errStaleFill = errors.New("history cache generation changed")

// CachingHistoryRepository decorates a HistoryRepository with Redis caching of List results.
// Writes go to the inner repository first and then bump the owner's generation, so pages
// cached under an older generation are never read again.
// Redis failures are logged and never surface to the caller.
type CachingHistoryRepository struct {
	inner     usecase.HistoryRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.HistoryRepository = (*CachingHistoryRepository)(nil)

// NewCachingHistoryRepository decorates a HistoryRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "history".
// A nil rdb makes the decorator a pass-through.
func NewCachingHistoryRepository(rdb *redis.Client, ttl time.Duration, inner usecase.HistoryRepository, namespace string) *CachingHistoryRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "history"
	}
	return &CachingHistoryRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Available reports the inner repository's state; the cache alone cannot persist history.
func (c *CachingHistoryRepository) Available() bool {
	return c.inner.Available()
}

// Append stores the entry and invalidates the owner's cached pages.
func (c *CachingHistoryRepository) Append(ctx context.Context, msg *entity.ChatMessage) error {
	if err := c.inner.Append(ctx, msg); err != nil {
		return err
	}
	// Anonymous entries never appear in a cached list
	if msg.UserID != nil {
		c.invalidate(ctx, *msg.UserID)
	}
	return nil
}

// List retrieves history, checking cache first then falling back to the database.
// A page read from the database is cached only if no write invalidated the owner in the meantime.
func (c *CachingHistoryRepository) List(ctx context.Context, userID uint, limit int) ([]entity.ChatMessage, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.List(ctx, userID, limit)
	}

	gen, err := c.generation(ctx, c.rdb, userID)
	if err != nil {
		slog.Warn("history cache generation read failed", "error", err, "user_id", userID)
		return c.inner.List(ctx, userID, limit)
	}
	key := c.cacheKey(userID, gen, limit)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.ChatMessage
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		c.fill(ctx, userID, gen, key, b)
	}

	return out, nil
}

// fill writes a page under WATCH on the owner's generation key.
// The write is dropped when an invalidation happened after gen was read.
func (c *CachingHistoryRepository) fill(ctx context.Context, userID uint, gen int64, key string, b []byte) {
	genKey := c.generationKey(userID)
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.generation(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		slog.Debug("history cache fill skipped", "key", key)
	default:
		slog.Warn("history cache write failed", "error", err, "key", key)
	}
}

// generation returns the owner's current cache generation; a missing key is generation 0.
func (c *CachingHistoryRepository) generation(ctx context.Context, cmd getter, userID uint) (int64, error) {
	gen, err := cmd.Get(ctx, c.generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// DeleteByID removes the entry and invalidates the owner's cached pages.
func (c *CachingHistoryRepository) DeleteByID(ctx context.Context, userID, id uint) error {
	if err := c.inner.DeleteByID(ctx, userID, id); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// DeleteByQuestion removes the latest matching entry and invalidates the owner's cached pages.
func (c *CachingHistoryRepository) DeleteByQuestion(ctx context.Context, userID uint, question string) error {
	if err := c.inner.DeleteByQuestion(ctx, userID, question); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// cacheKey generates a cache key for one page of a user's history.
func (c *CachingHistoryRepository) cacheKey(userID uint, gen int64, limit int) string {
	return fmt.Sprintf("%s:%d:%d:%d", c.namespace, userID, gen, limit)
}

// generationKey lives outside the page prefix so invalidation never deletes it.
func (c *CachingHistoryRepository) generationKey(userID uint) string {
	return fmt.Sprintf("%s:gen:%d", c.namespace, userID)
}

// cacheKeyPrefix generates a prefix matching every cached page of a user.
func (c *CachingHistoryRepository) cacheKeyPrefix(userID uint) string {
	return fmt.Sprintf("%s:%d:", c.namespace, userID)
}

func (c *CachingHistoryRepository) invalidate(ctx context.Context, userID uint) {
	if c.rdb == nil {
		return
	}
	// 世代はページの削除より先に進める
	if err := c.rdb.Incr(ctx, c.generationKey(userID)).Err(); err != nil {
		slog.Warn("history cache generation bump failed", "error", err, "user_id", userID)
	}
	if err := c.deleteByPattern(ctx, c.cacheKeyPrefix(userID)+"*"); err != nil {
		slog.Warn("history cache invalidation failed", "error", err, "user_id", userID)
	}
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingHistoryRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
