// Package common defines shared constants and sentinel errors used across
// client and server layers of EchoSphere. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation / request-specific errors.
	ErrorValidation    = errors.New("validation error")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorSelfTarget    = errors.New("target is the requesting user")
	ErrorRateLimited   = errors.New("rate limited")
	ErrorBlocked       = errors.New("blocked")

	// Auth errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrSessionExpired      = errors.New("session expired")
	ErrInvalidCode         = errors.New("invalid verification code")
	ErrInvalidLoginPair    = errors.New("invalid username/password")
	ErrInvalidAccountState = errors.New("invalid account state")
)
