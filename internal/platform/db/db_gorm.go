// Package db はGORMによるデータベース接続の生成とマイグレーションを提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chatbot_backend/internal/platform/config"
)

const (
	// DefaultConnectTimeout は起動時にDB接続をリトライする最大時間です。
	DefaultConnectTimeout = 60 * time.Second
	// DefaultRetryInterval は接続リトライの間隔です。
	DefaultRetryInterval = 3 * time.Second
)

// ErrNotConfigured は接続情報が設定されていない場合に返されます。
var ErrNotConfigured = errors.New("database is not configured")

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// gormConfig はすべてのドライバで共通のGORM設定です。
// TranslateError によりユニーク制約違反が gorm.ErrDuplicatedKey に変換されます。
func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// PostgresOpener はPostgreSQL（pgx）用のOpenerです。
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// SQLiteOpener はSQLite用のOpenerです。ローカル開発とテストで使用します。
func SQLiteOpener(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), gormConfig())
}

// ConnectWithRetry は timeout に達するまで interval ごとに接続を試みます。
func ConnectWithRetry(dsn string, timeout, interval time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("db connect failed after %v: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err)
		time.Sleep(min(interval, remaining))
	}
}

// OpenDB は設定に従ってデータベースへ接続します。
// 接続情報がない場合は ErrNotConfigured を返し、呼び出し側は永続化なしで起動を続けます。
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	if !cfg.PersistenceConfigured() {
		return nil, ErrNotConfigured
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		db, err = SQLiteOpener(cfg.SQLitePath)
	case "postgres", "":
		db, err = ConnectWithRetry(cfg.DatabaseURL, DefaultConnectTimeout, DefaultRetryInterval, PostgresOpener)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate は渡されたモデルのテーブルを作成・更新します。
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
