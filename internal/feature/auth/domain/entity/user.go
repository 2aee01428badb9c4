// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
// It contains authentication credentials and the pending password-reset state.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Name is the display name given at registration.
	Name string `gorm:"size:255;not null"`

	// Email is the normalized (lowercased, trimmed) address used for authentication.
	// It must be unique across all users; the database enforces it.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// ResetTokenHash is the hex SHA-256 of the pending reset token, nil when no reset is pending.
	ResetTokenHash *string `gorm:"size:64" json:"-"`

	// ResetTokenExpiresAt is when the pending reset token stops being accepted.
	ResetTokenExpiresAt *time.Time `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// HasPendingReset reports whether a reset token is on file and still valid at now.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiresAt != nil && now.Before(*u.ResetTokenExpiresAt)
}

// SetPendingReset stores the hash of a freshly issued reset token.
func (u *User) SetPendingReset(tokenHash string, expiresAt time.Time) {
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpiresAt = &expiresAt
}

// ClearPendingReset removes any reset token from the user.
func (u *User) ClearPendingReset() {
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
}
