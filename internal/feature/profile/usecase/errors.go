// Package usecase implements the business logic for the profile feature.
package usecase

import "errors"

var (
	// ErrProfileNotFound is returned when the caller has no profile to update.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileAlreadyExists is returned when the caller already owns a profile.
	ErrProfileAlreadyExists = errors.New("profile already exists")

	// ErrStorageUnavailable is returned when no database is configured.
	ErrStorageUnavailable = errors.New("profile storage unavailable")
)
