// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"strings"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing or unverifiable identity token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates a temporary block after repeated failed token verifications.
	ErrRateLimited = errors.New("rate limited")

	// ErrDataIntegrity indicates a stored record that cannot be decoded (e.g. unknown category text).
	ErrDataIntegrity = errors.New("data integrity")
)

// ValidationError carries itemized, human readable violations for a rejected request.
type ValidationError struct {
	Violations []string
}

// NewValidation builds a ValidationError from the given messages.
func NewValidation(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	return "validation: " + strings.Join(e.Violations, "; ")
}

// AsValidation reports whether err is (or wraps) a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
