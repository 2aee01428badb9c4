// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already registered")

	// ErrInvalidCredentials is returned by Login for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOrExpiredReset is returned for every failed reset confirmation.
	ErrInvalidOrExpiredReset = errors.New("invalid or expired reset token")

	// ErrResetTokenConsumed is returned by the repository when a reset token was used concurrently.
	ErrResetTokenConsumed = errors.New("reset token already consumed")

	// ErrStorageUnavailable is returned when no database is configured.
	ErrStorageUnavailable = errors.New("user storage unavailable")
)
