// Package api defines the JSON request and response bodies of the HTTP API.
// Feature handlers share these shapes so every endpoint answers in the same format.
package api

import "time"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UserResponse is the public view of a user. It never includes credentials.
type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register, login and reset confirmation.
type AuthResponse struct {
	Message string       `json:"message,omitempty"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

// ResetRequestRequest is the body of POST /api/auth/reset/request.
type ResetRequestRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetRequestResponse is always success-shaped. Token is only present when
// the server is configured to hand the raw token back.
type ResetRequestResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// ResetConfirmRequest is the body of POST /api/auth/reset/confirm.
type ResetConfirmRequest struct {
	Email    string `json:"email" binding:"required"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileRequest is the body of POST and PUT /api/profile.
// Nil fields are absent from the request and leave stored values untouched.
type ProfileRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
}

// ProfileResponse is the public view of a profile.
type ProfileResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileEnvelope wraps a profile; Profile is null when none exists.
type ProfileEnvelope struct {
	Profile *ProfileResponse `json:"profile"`
}

// OKResponse is returned by DELETE /api/profile.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// HistoryItem is one stored question/answer pair.
type HistoryItem struct {
	ID        uint      `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryResponse is returned by GET /api/chat/history.
type HistoryResponse struct {
	History []HistoryItem `json:"history"`
}

// HistoryDeleteRequest selects one entry by id or by exact question text.
type HistoryDeleteRequest struct {
	ID      *uint  `json:"id"`
	Message string `json:"message"`
}

// SuccessResponse is returned by DELETE /api/chat/history.
type SuccessResponse struct {
	Success bool `json:"success"`
}
