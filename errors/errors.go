// Package errors provides error handling for insider.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrSearchUnavailable) {
//	    // fall back to the exhaustive scan
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors for the resolution pipeline.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrInvalidQuery indicates the query name was empty or unparseable.
	// This is the only hard failure in the resolution pipeline; everything
	// else degrades to partial results with diagnostics.
	ErrInvalidQuery = New("invalid query")

	// ErrSearchUnavailable indicates the indexed search surface was
	// unreachable, returned an error status, or returned a response shape
	// the parser could not interpret. Distinct from an empty result set.
	ErrSearchUnavailable = New("indexed search unavailable")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrTimedOut indicates an operation exceeded its deadline
	ErrTimedOut = New("operation timed out")

	// ErrRateLimited indicates a token could not be acquired before the
	// caller's deadline elapsed
	ErrRateLimited = New("rate limited")
)

// IsSearchUnavailable checks if an error is or wraps ErrSearchUnavailable
func IsSearchUnavailable(err error) bool {
	return err != nil && Is(err, ErrSearchUnavailable)
}

// IsInvalidQuery checks if an error is or wraps ErrInvalidQuery
func IsInvalidQuery(err error) bool {
	return err != nil && Is(err, ErrInvalidQuery)
}

// IsTimeout checks if an error is or wraps ErrTimedOut or ErrRateLimited
func IsTimeout(err error) bool {
	return err != nil && IsAny(err, ErrTimedOut, ErrRateLimited)
}

// NewInvalidQuery creates an invalid-query error with a formatted message
func NewInvalidQuery(format string, args ...interface{}) error {
	return Wrap(ErrInvalidQuery, Newf(format, args...).Error())
}

// NewSearchUnavailable wraps a transport or parse error as a
// search-unavailable error so callers can drive fallback with errors.Is.
func NewSearchUnavailable(err error, context string) error {
	return Wrap(Wrap(ErrSearchUnavailable, err.Error()), context)
}
