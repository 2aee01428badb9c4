// Package handler はchatフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatbot_backend/internal/api"
	"chatbot_backend/internal/feature/chat/domain/entity"
	"chatbot_backend/internal/feature/chat/usecase"
	jwtmw "chatbot_backend/internal/platform/jwt"
	"chatbot_backend/internal/platform/validation"
)

// ChatUsecase はチャットと履歴操作のユースケースを定義します。
type ChatUsecase interface {
	Chat(ctx context.Context, userID *uint, message string) (string, error)
	History(ctx context.Context, userID uint, limit int) ([]entity.ChatMessage, error)
	DeleteHistory(ctx context.Context, userID uint, id *uint, question string) error
}

// ChatHandler はチャットと履歴のHTTPリクエストを処理します。
type ChatHandler struct {
	chat ChatUsecase
}

// NewChatHandler はChatHandlerの新しいインスタンスを生成します。
func NewChatHandler(chat ChatUsecase) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func respondError(c *gin.Context, op string, err error) {
	if verr, ok := validation.AsError(err); ok {
		slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: verr.Message})
		return
	}

	var upstream *usecase.UpstreamError
	switch {
	case errors.As(err, &upstream):
		slog.Error("gemini api error", "status", upstream.Status, "message", upstream.Message, "error", upstream.Err)
		c.JSON(upstream.Status, api.ErrorResponse{Error: upstream.Message})
	case errors.Is(err, usecase.ErrLLMNotConfigured):
		slog.Error(op+" failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Missing GEMINI_API_KEY"})
	case errors.Is(err, usecase.ErrHistoryNotFound):
		slog.Warn(op+" failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "History entry not found"})
	default:
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}

func toHistoryItems(msgs []entity.ChatMessage) []api.HistoryItem {
	items := make([]api.HistoryItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, api.HistoryItem{
			ID:        m.ID,
			Question:  m.Question,
			Answer:    m.Answer,
			CreatedAt: m.CreatedAt,
		})
	}
	return items
}

// Chat はメッセージをモデルに転送して応答を返します。
// 認証済みの場合は履歴をユーザーに紐付けて保存し、匿名の場合は所有者なしで保存します。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("chat validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: validation.Message(err)})
		return
	}

	var owner *uint
	if uid, ok := jwtmw.UserIDFromContext(c); ok {
		owner = &uid
	}

	reply, err := h.chat.Chat(c.Request.Context(), owner, req.Message)
	if err != nil {
		respondError(c, "chat", err)
		return
	}
	c.JSON(http.StatusOK, api.ChatResponse{Reply: reply})
}

// History は呼び出し元の履歴を新しい順に返します。?limit=Nで件数を指定できます。
func (h *ChatHandler) History(c *gin.Context) {
	uid, ok := jwtmw.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "limit must be an integer"})
			return
		}
		limit = usecase.ClampLimit(n)
	}

	msgs, err := h.chat.History(c.Request.Context(), uid, limit)
	if err != nil {
		respondError(c, "list history", err)
		return
	}
	c.JSON(http.StatusOK, api.HistoryResponse{History: toHistoryItems(msgs)})
}

// DeleteHistory はIDまたは質問文で一件の履歴を削除します。
func (h *ChatHandler) DeleteHistory(c *gin.Context) {
	uid, ok := jwtmw.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req api.HistoryDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("delete history validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: validation.Message(err)})
		return
	}

	if err := h.chat.DeleteHistory(c.Request.Context(), uid, req.ID, req.Message); err != nil {
		respondError(c, "delete history", err)
		return
	}
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}
