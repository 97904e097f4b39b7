// Package shared provides shared domain types and utilities.
package shared

import (
	"errors"
)

// Domain errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrValidation      = errors.New("validation error")
	ErrScopeViolation  = errors.New("scope violation")
	ErrEmptyAssignment = errors.New("no valid group assignments")
	ErrStore           = errors.New("store error")
)

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsScopeViolation checks if the error is a scope violation error.
func IsScopeViolation(err error) bool {
	return errors.Is(err, ErrScopeViolation)
}

// IsStore checks if the error is a backing store error.
func IsStore(err error) bool {
	return errors.Is(err, ErrStore)
}
