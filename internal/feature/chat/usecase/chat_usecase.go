package usecase

import (
	"context"
	"log/slog"
	"strings"

	"chatbot_backend/internal/feature/chat/domain/entity"
	"chatbot_backend/internal/platform/validation"
)

const (
	// DefaultHistoryLimit は履歴取得件数の既定値です。
	DefaultHistoryLimit = 20
	// MaxHistoryLimit は一度に返す履歴の上限です。
	MaxHistoryLimit = 100
	// NoReply はモデルが空の応答を返した場合の代替テキストです。
	NoReply = "(no reply)"
)

// Responder は言語モデルへの問い合わせを抽象化します。
type Responder interface {
	// Reply はプロンプトに対するモデルの応答テキストを返します。
	// API側のエラーは*UpstreamErrorとして返します。
	Reply(ctx context.Context, prompt string) (string, error)
}

// HistoryRepository はチャット履歴の永続化層を抽象化します。
type HistoryRepository interface {
	// Available は履歴を保存できる状態かどうかを返します。
	Available() bool
	// Append は一件の履歴を保存します。
	Append(ctx context.Context, msg *entity.ChatMessage) error
	// List はユーザーの履歴を新しい順にlimit件まで返します。
	List(ctx context.Context, userID uint, limit int) ([]entity.ChatMessage, error)
	// DeleteByID はユーザーの履歴からIDが一致する一件を削除します。
	DeleteByID(ctx context.Context, userID, id uint) error
	// DeleteByQuestion は質問文が完全一致する最新の一件を削除します。
	DeleteByQuestion(ctx context.Context, userID uint, question string) error
}

type chatUsecase struct {
	responder    Responder
	history      HistoryRepository
	defaultLimit int
}

// NewChatUsecase はchatUsecaseを生成します。
// responderがnilの場合（APIキー未設定）、ChatはErrLLMNotConfiguredを返します。
func NewChatUsecase(responder Responder, history HistoryRepository, defaultLimit int) *chatUsecase {
	if defaultLimit <= 0 {
		defaultLimit = DefaultHistoryLimit
	}
	return &chatUsecase{
		responder:    responder,
		history:      history,
		defaultLimit: ClampLimit(defaultLimit),
	}
}

// ClampLimit はlimitを1..MaxHistoryLimitの範囲に収めます。
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// Chat はメッセージをモデルに転送し、応答を返します。
// 履歴の保存はベストエフォートで、失敗しても応答は返します。
func (u *chatUsecase) Chat(ctx context.Context, userID *uint, message string) (string, error) {
	if u.responder == nil {
		return "", ErrLLMNotConfigured
	}
	prompt := strings.TrimSpace(message)
	if prompt == "" {
		return "", validation.NewError("message", "Message is required")
	}

	reply, err := u.responder.Reply(ctx, prompt)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = NoReply
	}

	if u.history.Available() {
		msg := &entity.ChatMessage{UserID: userID, Question: prompt, Answer: reply}
		if err := u.history.Append(ctx, msg); err != nil {
			slog.Warn("failed to save chat history", "error", err)
		}
	}

	return reply, nil
}

// History はユーザーの履歴を新しい順に返します。limitが0の場合は既定値を使います。
func (u *chatUsecase) History(ctx context.Context, userID uint, limit int) ([]entity.ChatMessage, error) {
	if !u.history.Available() {
		return []entity.ChatMessage{}, nil
	}
	if limit == 0 {
		limit = u.defaultLimit
	}
	return u.history.List(ctx, userID, ClampLimit(limit))
}

// DeleteHistory はIDまたは質問文で一件の履歴を削除します。IDが優先されます。
func (u *chatUsecase) DeleteHistory(ctx context.Context, userID uint, id *uint, question string) error {
	question = strings.TrimSpace(question)
	if (id == nil || *id == 0) && question == "" {
		return validation.NewError("id", "id or message is required")
	}
	if !u.history.Available() {
		return ErrHistoryNotFound
	}
	if id != nil && *id != 0 {
		return u.history.DeleteByID(ctx, userID, *id)
	}
	return u.history.DeleteByQuestion(ctx, userID, question)
}
