// Package common defines shared constants and sentinel errors used across
// SecureBoxed components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorUserNotFound means the presented token is cryptographically valid
	// but its subject is unknown to the identity directory.
	ErrorUserNotFound = errors.New("user not found")

	// Validation errors (malformed request, bad identity string, missing payload).
	ErrorValidation = errors.New("validation error")

	// Storage gateway errors.
	ErrorStorageUnavailable = errors.New("storage unavailable")
	ErrorDecryptionFailure  = errors.New("decryption failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
