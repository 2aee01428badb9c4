// Package usecase implements the chat pass-through and the chat history operations.
package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrLLMNotConfigured is returned when no Gemini API key is set.
	ErrLLMNotConfigured = errors.New("gemini api key not configured")

	// ErrHistoryNotFound is returned when a delete matched nothing in the caller's history.
	ErrHistoryNotFound = errors.New("history entry not found")
)

// UpstreamError is a failure reported by the language model API.
// Status is the HTTP status to relay to the client.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (%d): %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
