// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatbot_backend/internal/api"
	"chatbot_backend/internal/feature/auth/domain/entity"
	"chatbot_backend/internal/feature/auth/usecase"
	"chatbot_backend/internal/platform/validation"
)

// resetRequestedMessage はアカウントの有無に関わらず同じ文言を返します。
const resetRequestedMessage = "If the account exists, a reset token has been issued"

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録し、トークンを発行します。
	Register(ctx context.Context, name, email, password string) (*usecase.AuthResult, error)
	// Login はユーザーを認証し、成功時にトークンを返します。
	Login(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	// RequestPasswordReset はリセットトークンを発行します。未登録の場合は空文字列を返します。
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	// ConfirmPasswordReset はリセットトークンを検証し、パスワードを更新します。
	ConfirmPasswordReset(ctx context.Context, email, token, newPassword string) (*usecase.AuthResult, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
	// exposeResetToken がtrueの場合、生のリセットトークンをレスポンスに含めます。
	exposeResetToken bool
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, exposeResetToken bool) *AuthHandler {
	return &AuthHandler{auth: auth, exposeResetToken: exposeResetToken}
}

func toUserResponse(u *entity.User) api.UserResponse {
	return api.UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// respondError はユースケースのエラーをHTTPステータスに変換します。
// 内部エラーの詳細はログのみに出力し、クライアントには汎用メッセージを返します。
func respondError(c *gin.Context, op string, err error) {
	if verr, ok := validation.AsError(err); ok {
		slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: verr.Message})
		return
	}

	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		status, msg = http.StatusConflict, "Email already registered"
	case errors.Is(err, usecase.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, usecase.ErrInvalidOrExpiredReset):
		status, msg = http.StatusBadRequest, "Invalid or expired reset token"
	case errors.Is(err, usecase.ErrStorageUnavailable):
		status, msg = http.StatusServiceUnavailable, "Database not configured"
	}

	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
	} else {
		slog.Warn(op+" failed", "error", err, "remote_addr", c.ClientIP())
	}
	c.JSON(status, api.ErrorResponse{Error: msg})
}

// bind はJSONボディをバインドし、失敗時はフィールド名を含む400を返します。
func bind(c *gin.Context, op string, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: validation.Message(err)})
		return false
	}
	return true
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 必須項目の欠落、メール形式不正、短いパスワードは400
// - メール重複は409
// - 成功時はユーザーとトークン付きで201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req api.RegisterRequest
	if !bind(c, "register", &req) {
		return
	}
	res, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, "register", err)
		return
	}
	slog.Info("user register successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, api.AuthResponse{User: toUserResponse(res.User), Token: res.Token})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 未登録メールとパスワード不一致はどちらも同じ401を返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if !bind(c, "login", &req) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "login", err)
		return
	}
	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.AuthResponse{User: toUserResponse(res.User), Token: res.Token})
}

// RequestReset はパスワードリセット要求を処理します。
// アカウント列挙を防ぐため、登録の有無に関わらず同じ形のレスポンスを返します。
func (h *AuthHandler) RequestReset(c *gin.Context) {
	var req api.ResetRequestRequest
	if !bind(c, "reset request", &req) {
		return
	}
	token, err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, "reset request", err)
		return
	}
	resp := api.ResetRequestResponse{Message: resetRequestedMessage}
	if h.exposeResetToken {
		resp.Token = token
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmReset はリセットトークンによるパスワード更新を処理します。
func (h *AuthHandler) ConfirmReset(c *gin.Context) {
	var req api.ResetConfirmRequest
	if !bind(c, "reset confirm", &req) {
		return
	}
	res, err := h.auth.ConfirmPasswordReset(c.Request.Context(), req.Email, req.Token, req.Password)
	if err != nil {
		respondError(c, "reset confirm", err)
		return
	}
	slog.Info("password reset successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.AuthResponse{
		Message: "Password updated",
		User:    toUserResponse(res.User),
		Token:   res.Token,
	})
}
