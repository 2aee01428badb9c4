// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chatbot_backend/internal/app/router"
	authadapters "chatbot_backend/internal/feature/auth/adapters"
	authhandler "chatbot_backend/internal/feature/auth/transport/handler"
	authusecase "chatbot_backend/internal/feature/auth/usecase"
	chathandler "chatbot_backend/internal/feature/chat/transport/handler"
	chatusecase "chatbot_backend/internal/feature/chat/usecase"
	profileadapters "chatbot_backend/internal/feature/profile/adapters"
	profilehandler "chatbot_backend/internal/feature/profile/transport/handler"
	profileusecase "chatbot_backend/internal/feature/profile/usecase"
	"chatbot_backend/internal/platform/config"
	platformhandler "chatbot_backend/internal/platform/http/handler"
	jwtmw "chatbot_backend/internal/platform/jwt"
)

// errRedisUnavailable is reported by the health check when Redis is configured but was unreachable at startup.
var errRedisUnavailable = errors.New("redis configured but unavailable")

// NewRouterDeps wires repositories, usecases and handlers for the HTTP router.
// db and rdb may be nil; the features that need them degrade instead of failing.
func NewRouterDeps(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (router.Deps, error) {
	responder, err := NewResponder(ctx, cfg)
	if err != nil {
		return router.Deps{}, err
	}
	return newRouterDeps(cfg, db, rdb, responder), nil
}

func newRouterDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client, responder chatusecase.Responder) router.Deps {
	jwtGen := jwtmw.NewGenerator(cfg.JWTSecret, cfg.TokenTTL)

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	profileRepo := profileadapters.NewProfileRepository(db)
	historyRepo := NewHistoryRepository(rdb, db, cfg.HistoryCacheTTL)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, jwtGen, cfg.ResetTokenTTL)
	profileUC := profileusecase.NewProfileUsecase(profileRepo)
	chatUC := chatusecase.NewChatUsecase(responder, historyRepo, cfg.HistoryLimit)

	deps := router.Deps{
		Auth:            authhandler.NewAuthHandler(authUC, cfg.ResetTokenInResponse),
		Profile:         profilehandler.NewProfileHandler(profileUC),
		Chat:            chathandler.NewChatHandler(chatUC),
		Health:          platformhandler.NewHealthHandler(dbCheck(db), cacheCheck(cfg, rdb), cfg.PersistenceConfigured()),
		Verifier:        jwtGen,
		ChatRequireAuth: cfg.ChatRequireAuth,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	// DBがない場合はユーザーの実在確認ができないため、署名検証のみで通す
	if db != nil {
		deps.Resolver = authUC
	}
	return deps
}

func dbCheck(db *gorm.DB) platformhandler.Check {
	if db == nil {
		return nil
	}
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func cacheCheck(cfg *config.Config, rdb *redis.Client) platformhandler.Check {
	if rdb == nil {
		if cfg.RedisConfigured() {
			return func(context.Context) error { return errRedisUnavailable }
		}
		return nil
	}
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
