// Package common defines shared constants and sentinel errors used across
// client and server layers of kinsync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Sync errors.
	ErrTenantViolation = errors.New("entity belongs to another workspace")
	ErrMalformedChange = errors.New("malformed change")
	ErrInvalidCursor   = errors.New("invalid cursor")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
