// Package common defines shared constants and sentinel errors used across
// the back-office service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal   = errors.New("internal error")
	ErrDependency = errors.New("dependency failure")

	// Auth errors. ErrUnauthorized deliberately carries no detail about
	// which part of the credential check failed.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
