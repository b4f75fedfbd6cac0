// Package common defines shared constants and sentinel errors used across
// the tenant portal components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Password change validation errors, one per user-facing condition.
	ErrPasswordBlank          = errors.New("password cannot be blank")
	ErrPasswordMismatch       = errors.New("passwords do not match")
	ErrPasswordTooShort       = errors.New("password too short")
	ErrInvalidCurrentPassword = errors.New("invalid current password")
	ErrPasswordUpdateFailed   = errors.New("password update failed")
	ErrConfirmationMismatch   = errors.New("password confirmation mismatch")

	// Session/auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Setup token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
