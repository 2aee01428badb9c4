package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot_backend/internal/feature/chat/domain/entity"
	"chatbot_backend/internal/platform/validation"
)

type mockResponder struct {
	ReplyFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockResponder) Reply(ctx context.Context, prompt string) (string, error) {
	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, prompt)
	}
	return "hello", nil
}

type mockHistoryRepository struct {
	available            bool
	AppendFunc           func(ctx context.Context, msg *entity.ChatMessage) error
	ListFunc             func(ctx context.Context, userID uint, limit int) ([]entity.ChatMessage, error)
	DeleteByIDFunc       func(ctx context.Context, userID, id uint) error
	DeleteByQuestionFunc func(ctx context.Context, userID uint, question string) error
}

func (m *mockHistoryRepository) Available() bool { return m.available }

func (m *mockHistoryRepository) Append(ctx context.Context, msg *entity.ChatMessage) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, msg)
	}
	return nil
}

func (m *mockHistoryRepository) List(ctx context.Context, userID uint, limit int) ([]entity.ChatMessage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, limit)
	}
	return []entity.ChatMessage{}, nil
}

func (m *mockHistoryRepository) DeleteByID(ctx context.Context, userID, id uint) error {
	if m.DeleteByIDFunc != nil {
		return m.DeleteByIDFunc(ctx, userID, id)
	}
	return ErrHistoryNotFound
}

func (m *mockHistoryRepository) DeleteByQuestion(ctx context.Context, userID uint, question string) error {
	if m.DeleteByQuestionFunc != nil {
		return m.DeleteByQuestionFunc(ctx, userID, question)
	}
	return ErrHistoryNotFound
}

func uptr(v uint) *uint { return &v }

func TestClampLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, ClampLimit(-5))
	assert.Equal(t, 1, ClampLimit(0))
	assert.Equal(t, 20, ClampLimit(20))
	assert.Equal(t, MaxHistoryLimit, ClampLimit(1000))
}

func TestChatUsecase_Chat(t *testing.T) {
	t.Parallel()

	t.Run("reply is returned and stored for the user", func(t *testing.T) {
		t.Parallel()

		var stored *entity.ChatMessage
		history := &mockHistoryRepository{
			available: true,
			AppendFunc: func(_ context.Context, msg *entity.ChatMessage) error {
				stored = msg
				return nil
			},
		}
		responder := &mockResponder{
			ReplyFunc: func(_ context.Context, prompt string) (string, error) {
				assert.Equal(t, "hi there", prompt)
				return "hello!", nil
			},
		}

		reply, err := NewChatUsecase(responder, history, 0).Chat(context.Background(), uptr(3), "  hi there ")

		require.NoError(t, err)
		assert.Equal(t, "hello!", reply)
		require.NotNil(t, stored)
		assert.Equal(t, uint(3), *stored.UserID)
		assert.Equal(t, "hi there", stored.Question)
		assert.Equal(t, "hello!", stored.Answer)
	})

	t.Run("anonymous chat stores a nil owner", func(t *testing.T) {
		t.Parallel()

		var stored *entity.ChatMessage
		history := &mockHistoryRepository{
			available:  true,
			AppendFunc: func(_ context.Context, msg *entity.ChatMessage) error { stored = msg; return nil },
		}
		_, err := NewChatUsecase(&mockResponder{}, history, 0).Chat(context.Background(), nil, "hi")

		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Nil(t, stored.UserID)
	})

	t.Run("empty model reply becomes placeholder", func(t *testing.T) {
		t.Parallel()

		responder := &mockResponder{ReplyFunc: func(context.Context, string) (string, error) { return "  ", nil }}
		reply, err := NewChatUsecase(responder, &mockHistoryRepository{}, 0).Chat(context.Background(), nil, "hi")

		require.NoError(t, err)
		assert.Equal(t, NoReply, reply)
	})

	t.Run("blank message", func(t *testing.T) {
		t.Parallel()

		responder := &mockResponder{ReplyFunc: func(context.Context, string) (string, error) {
			t.Fatal("responder must not be called")
			return "", nil
		}}
		_, err := NewChatUsecase(responder, &mockHistoryRepository{}, 0).Chat(context.Background(), nil, "   ")

		assert.ErrorIs(t, err, validation.ErrInvalid)
	})

	t.Run("no api key", func(t *testing.T) {
		t.Parallel()

		_, err := NewChatUsecase(nil, &mockHistoryRepository{}, 0).Chat(context.Background(), nil, "hi")
		assert.ErrorIs(t, err, ErrLLMNotConfigured)
	})

	t.Run("upstream failure is relayed and nothing is stored", func(t *testing.T) {
		t.Parallel()

		upstream := &UpstreamError{Status: http.StatusTooManyRequests, Message: "quota exceeded"}
		history := &mockHistoryRepository{
			available: true,
			AppendFunc: func(context.Context, *entity.ChatMessage) error {
				t.Fatal("failed exchanges must not be stored")
				return nil
			},
		}
		responder := &mockResponder{ReplyFunc: func(context.Context, string) (string, error) { return "", upstream }}

		_, err := NewChatUsecase(responder, history, 0).Chat(context.Background(), uptr(1), "hi")

		var ue *UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, http.StatusTooManyRequests, ue.Status)
	})

	t.Run("history failure does not fail the chat", func(t *testing.T) {
		t.Parallel()

		history := &mockHistoryRepository{
			available:  true,
			AppendFunc: func(context.Context, *entity.ChatMessage) error { return errors.New("db down") },
		}
		reply, err := NewChatUsecase(&mockResponder{}, history, 0).Chat(context.Background(), uptr(1), "hi")

		require.NoError(t, err)
		assert.Equal(t, "hello", reply)
	})

	t.Run("unavailable history is skipped", func(t *testing.T) {
		t.Parallel()

		history := &mockHistoryRepository{
			AppendFunc: func(context.Context, *entity.ChatMessage) error {
				t.Fatal("Append must not be called")
				return nil
			},
		}
		_, err := NewChatUsecase(&mockResponder{}, history, 0).Chat(context.Background(), uptr(1), "hi")
		assert.NoError(t, err)
	})
}

func TestChatUsecase_History(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		def       int
		limit     int
		wantLimit int
	}{
		{"default", 0, 0, DefaultHistoryLimit},
		{"configured default", 15, 0, 15},
		{"explicit", 0, 5, 5},
		{"clamped high", 0, 500, MaxHistoryLimit},
		{"clamped low", 0, -2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotLimit int
			history := &mockHistoryRepository{
				available: true,
				ListFunc: func(_ context.Context, userID uint, limit int) ([]entity.ChatMessage, error) {
					assert.Equal(t, uint(2), userID)
					gotLimit = limit
					return []entity.ChatMessage{}, nil
				},
			}
			_, err := NewChatUsecase(&mockResponder{}, history, tt.def).History(context.Background(), 2, tt.limit)

			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, gotLimit)
		})
	}

	t.Run("unavailable history is empty", func(t *testing.T) {
		t.Parallel()

		items, err := NewChatUsecase(&mockResponder{}, &mockHistoryRepository{}, 0).History(context.Background(), 2, 0)

		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

func TestChatUsecase_DeleteHistory(t *testing.T) {
	t.Parallel()

	t.Run("by id takes precedence", func(t *testing.T) {
		t.Parallel()

		history := &mockHistoryRepository{
			available: true,
			DeleteByIDFunc: func(_ context.Context, userID, id uint) error {
				assert.Equal(t, uint(1), userID)
				assert.Equal(t, uint(9), id)
				return nil
			},
			DeleteByQuestionFunc: func(context.Context, uint, string) error {
				t.Fatal("question delete must not be used when id is set")
				return nil
			},
		}
		err := NewChatUsecase(&mockResponder{}, history, 0).DeleteHistory(context.Background(), 1, uptr(9), "hi")
		assert.NoError(t, err)
	})

	t.Run("by question", func(t *testing.T) {
		t.Parallel()

		history := &mockHistoryRepository{
			available: true,
			DeleteByQuestionFunc: func(_ context.Context, _ uint, question string) error {
				assert.Equal(t, "hi", question)
				return nil
			},
		}
		err := NewChatUsecase(&mockResponder{}, history, 0).DeleteHistory(context.Background(), 1, nil, " hi ")
		assert.NoError(t, err)
	})

	t.Run("neither id nor question", func(t *testing.T) {
		t.Parallel()

		err := NewChatUsecase(&mockResponder{}, &mockHistoryRepository{available: true}, 0).DeleteHistory(context.Background(), 1, nil, " ")
		assert.ErrorIs(t, err, validation.ErrInvalid)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		err := NewChatUsecase(&mockResponder{}, &mockHistoryRepository{available: true}, 0).DeleteHistory(context.Background(), 1, uptr(4), "")
		assert.ErrorIs(t, err, ErrHistoryNotFound)
	})

	t.Run("unavailable history", func(t *testing.T) {
		t.Parallel()

		err := NewChatUsecase(&mockResponder{}, &mockHistoryRepository{}, 0).DeleteHistory(context.Background(), 1, uptr(4), "")
		assert.ErrorIs(t, err, ErrHistoryNotFound)
	})
}
