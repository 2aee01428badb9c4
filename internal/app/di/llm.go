package di

import (
	"context"
	"log/slog"

	"chatbot_backend/internal/feature/chat/adapters/gemini"
	"chatbot_backend/internal/feature/chat/usecase"
	"chatbot_backend/internal/platform/config"
	infrahttp "chatbot_backend/internal/platform/http"
)

// NewResponder creates a Gemini-backed Responder with a dedicated HTTP client.
// Without an API key it returns a nil Responder, and chat requests answer
// "Missing GEMINI_API_KEY" instead of failing at startup.
func NewResponder(ctx context.Context, cfg *config.Config) (usecase.Responder, error) {
	if cfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY is not set; chat is disabled")
		return nil, nil
	}
	r, err := gemini.NewResponder(ctx, gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.GeminiModel,
		APIVersion: cfg.GeminiAPIVersion,
		HTTPClient: infrahttp.NewHTTPClient(cfg.LLMTimeout),
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
