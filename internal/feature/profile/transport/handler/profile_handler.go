// Package handler はprofileフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatbot_backend/internal/api"
	"chatbot_backend/internal/feature/profile/domain/entity"
	"chatbot_backend/internal/feature/profile/usecase"
	jwtmw "chatbot_backend/internal/platform/jwt"
	"chatbot_backend/internal/platform/validation"
)

// ProfileUsecase はプロフィール操作のユースケースを定義します。
type ProfileUsecase interface {
	Get(ctx context.Context, userID uint) (*entity.Profile, error)
	Create(ctx context.Context, userID uint, fields entity.Fields) (*entity.Profile, error)
	Update(ctx context.Context, userID uint, fields entity.Fields) (*entity.Profile, error)
	Delete(ctx context.Context, userID uint) error
}

// ProfileHandler は認証済みユーザー自身のプロフィールを扱います。
// 全ルートはAuthRequiredの後ろに登録されることを前提とします。
type ProfileHandler struct {
	profiles ProfileUsecase
}

// NewProfileHandler はProfileHandlerの新しいインスタンスを生成します。
func NewProfileHandler(profiles ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func toResponse(p *entity.Profile) *api.ProfileResponse {
	if p == nil {
		return nil
	}
	return &api.ProfileResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toFields(req api.ProfileRequest) entity.Fields {
	return entity.Fields{Name: req.Name, Email: req.Email, Bio: req.Bio, AvatarURL: req.AvatarURL}
}

func respondError(c *gin.Context, op string, err error) {
	if verr, ok := validation.AsError(err); ok {
		slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: verr.Message})
		return
	}

	switch {
	case errors.Is(err, usecase.ErrProfileAlreadyExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Profile already exists"})
	case errors.Is(err, usecase.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Profile not found"})
	case errors.Is(err, usecase.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "Database not configured"})
	default:
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to " + op})
		return
	}
	slog.Warn(op+" failed", "error", err, "remote_addr", c.ClientIP())
}

// userID はAuthRequiredが設定したユーザーIDを取り出します。
func userID(c *gin.Context) (uint, bool) {
	id, ok := jwtmw.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
	}
	return id, ok
}

// Get は呼び出し元のプロフィールを返します。未作成の場合は{"profile": null}です。
func (h *ProfileHandler) Get(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	p, err := h.profiles.Get(c.Request.Context(), uid)
	if err != nil {
		respondError(c, "fetch profile", err)
		return
	}
	c.JSON(http.StatusOK, api.ProfileEnvelope{Profile: toResponse(p)})
}

// Create はプロフィールを作成します。既に存在する場合は409です。
func (h *ProfileHandler) Create(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req api.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create profile validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: validation.Message(err)})
		return
	}
	p, err := h.profiles.Create(c.Request.Context(), uid, toFields(req))
	if err != nil {
		respondError(c, "create profile", err)
		return
	}
	c.JSON(http.StatusCreated, api.ProfileEnvelope{Profile: toResponse(p)})
}

// Update は送信されたフィールドだけを更新します。
// PUT /api/profile/:id でも呼ばれますが、idは無視され常に呼び出し元のプロフィールが対象です。
func (h *ProfileHandler) Update(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req api.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update profile validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: validation.Message(err)})
		return
	}
	p, err := h.profiles.Update(c.Request.Context(), uid, toFields(req))
	if err != nil {
		respondError(c, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, api.ProfileEnvelope{Profile: toResponse(p)})
}

// Delete は呼び出し元のプロフィールを削除します。
func (h *ProfileHandler) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if err := h.profiles.Delete(c.Request.Context(), uid); err != nil {
		respondError(c, "delete profile", err)
		return
	}
	c.JSON(http.StatusOK, api.OKResponse{OK: true})
}
