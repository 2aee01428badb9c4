package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chatbot_backend/internal/app/di"
	"chatbot_backend/internal/app/router"
	authentity "chatbot_backend/internal/feature/auth/domain/entity"
	chatentity "chatbot_backend/internal/feature/chat/domain/entity"
	profileentity "chatbot_backend/internal/feature/profile/domain/entity"
	"chatbot_backend/internal/platform/config"
	infradb "chatbot_backend/internal/platform/db"
	"chatbot_backend/internal/platform/logging"
	infraredis "chatbot_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	// JWT_SECRETチェック（開発中の注意喚起）
	if !cfg.JWTSecretFromEnv {
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db := openDB(cfg)

	// Redis
	var rdb *redisv9.Client
	if cfg.RedisConfigured() {
		tmp, err := infraredis.NewRedisClient(ctx, infraredis.Options{Addr: cfg.RedisAddr(), Password: cfg.RedisPassword})
		if err != nil {
			slog.Warn("Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	deps, err := di.NewRouterDeps(ctx, cfg, db, rdb)
	if err != nil {
		slog.Error("failed to build dependencies", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// openDB はDBに接続し、必要ならマイグレーションを実行します。
// 接続情報がなければnilを返し、永続化なしで起動を続けます。
func openDB(cfg *config.Config) *gorm.DB {
	db, err := infradb.OpenDB(cfg)
	if err != nil {
		if errors.Is(err, infradb.ErrNotConfigured) {
			slog.Warn("database is not configured; running without persistence")
			return nil
		}
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	if cfg.RunMigrations {
		if err := infradb.Migrate(db, &authentity.User{}, &profileentity.Profile{}, &chatentity.ChatMessage{}); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}
	return db
}
