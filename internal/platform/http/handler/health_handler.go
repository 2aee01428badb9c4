// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// 接続状態の値
const (
	StateConnected     = "connected"
	StateDisconnected  = "disconnected"
	StateNotConfigured = "not_configured"
)

// Check は依存先への疎通確認関数です。nil の場合は未設定として扱います。
type Check func(ctx context.Context) error

// HealthResponse は /health のレスポンスです。
type HealthResponse struct {
	Status         string `json:"status"`
	Database       string `json:"database"`
	HasDatabaseURL bool   `json:"hasDatabaseUrl"`
	Cache          string `json:"cache"`
}

// HealthHandler は永続化層とキャッシュの状態を報告します。
type HealthHandler struct {
	database     Check
	cache        Check
	dbConfigured bool
	checkTimeout time.Duration
}

// NewHealthHandler は HealthHandler を生成します。
// dbConfigured は接続文字列が設定されているかどうかで、database が nil でも true になり得ます（接続失敗時）。
func NewHealthHandler(database, cache Check, dbConfigured bool) *HealthHandler {
	return &HealthHandler{
		database:     database,
		cache:        cache,
		dbConfigured: dbConfigured,
		checkTimeout: 2 * time.Second,
	}
}

func (h *HealthHandler) state(ctx context.Context, check Check, configured bool) string {
	if check == nil {
		if configured {
			return StateDisconnected
		}
		return StateNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, h.checkTimeout)
	defer cancel()
	if err := check(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		return StateDisconnected
	}
	return StateConnected
}

// Health はサービスヘルスチェック用のエンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// 依存先が落ちていてもプロセス自体は応答可能なため、常に200を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
		return
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	}

	ctx := c.Request.Context()
	resp := HealthResponse{
		Status:         "ok",
		Database:       h.state(ctx, h.database, h.dbConfigured),
		HasDatabaseURL: h.dbConfigured,
		Cache:          h.state(ctx, h.cache, false),
	}
	if resp.Database != StateConnected || resp.Cache == StateDisconnected {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}
