// Package errs defines the error taxonomy shared across the backend.
// Every failure surfaced to a caller is one of these types; handlers map
// them to HTTP statuses and nothing here ever terminates the process.
package errs

import (
	"errors"
	"fmt"
)

// ErrProfileNotFound marks a missing profile document. It is always wrapped
// in a StorageError so callers can test for it with errors.Is.
var ErrProfileNotFound = errors.New("profile not found")

// ValidationError rejects bad input before any store or network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// AuthError reports rejected credentials or a conflicting account.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// StorageError reports a profile read or write that failed after
// authentication succeeded.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// NotAuthenticatedError reports a progress operation with no active session.
type NotAuthenticatedError struct{}

func (e *NotAuthenticatedError) Error() string { return "not authenticated" }

// UpstreamError reports a failed or unparseable model-provider response.
type UpstreamError struct {
	Provider string
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upstream %s request failed", e.Provider)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
