package validation

import (
	"errors"
	"strings"
)

// ErrInvalid is the sentinel every *Error matches with errors.Is.
var ErrInvalid = errors.New("invalid input")

// Error reports which field of a request was missing or malformed.
// Its message is safe to show to the client.
type Error struct {
	Field   string
	Message string
}

// NewError creates a validation error for field.
func NewError(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// Required is shorthand for "<field> is required".
func Required(field string) *Error {
	return NewError(field, field+" is required")
}

func (e *Error) Error() string { return e.Message }

// Is makes errors.Is(err, ErrInvalid) true for every validation error.
func (e *Error) Is(target error) bool { return target == ErrInvalid }

// AsError unwraps err into a validation error if it is one.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// NormalizeEmail lowercases and trims an email address before any lookup or write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
