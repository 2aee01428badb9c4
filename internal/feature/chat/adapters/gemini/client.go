// Package gemini はGoogle Gemini APIを使用したチャット応答クライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"chatbot_backend/internal/feature/chat/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// DefaultAPIVersion はGemini APIのデフォルトバージョンです。
	DefaultAPIVersion = "v1beta"
)

// Options はGeminiクライアントの設定です。
type Options struct {
	APIKey     string
	Model      string
	APIVersion string
	// BaseURL は通常空です。テストではスタブサーバーを指定します。
	BaseURL    string
	HTTPClient *http.Client
}

// Responder はGemini APIにプロンプトを転送して応答を返します。
type Responder struct {
	client *genai.Client
	model  string
}

// ResponderがResponderインターフェースを実装していることをコンパイル時に検証します。
var _ usecase.Responder = (*Responder)(nil)

// NewResponder はAPIキー認証でResponderの新しいインスタンスを生成します。
func NewResponder(ctx context.Context, opts Options) (*Responder, error) {
	if opts.APIKey == "" {
		return nil, usecase.ErrLLMNotConfigured
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.APIVersion == "" {
		opts.APIVersion = DefaultAPIVersion
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			APIVersion: opts.APIVersion,
			BaseURL:    opts.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Responder{client: client, model: opts.Model}, nil
}

// Reply はプロンプトを送信し、最初の候補のテキストを返します。
func (g *Responder) Reply(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", toUpstreamError(err)
	}
	return resp.Text(), nil
}

// toUpstreamError はSDKのエラーをクライアントへ中継できるステータスとメッセージに変換します。
func toUpstreamError(err error) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		return fromAPIError(apiErr, err)
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		return fromAPIError(*apiErrPtr, err)
	case errors.Is(err, context.DeadlineExceeded):
		return &usecase.UpstreamError{Status: http.StatusGatewayTimeout, Message: "Gemini API timed out", Err: err}
	default:
		return &usecase.UpstreamError{Status: http.StatusBadGateway, Message: "Gemini API failed", Err: err}
	}
}

func fromAPIError(apiErr genai.APIError, err error) *usecase.UpstreamError {
	status := apiErr.Code
	if status < http.StatusBadRequest || status > 599 {
		status = http.StatusBadGateway
	}
	msg := apiErr.Message
	if msg == "" {
		msg = "Gemini API failed"
	}
	return &usecase.UpstreamError{Status: status, Message: msg, Err: err}
}
