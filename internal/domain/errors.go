package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// The controller layer consumes this; the core only raises domain errors.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a folder, permission, or share was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// InvalidOperationError indicates a structurally illegal operation
	// (cycle/self-move, deleting the reserved root, malformed share target)
	InvalidOperationError struct {
		Message string
	}

	// DepthExceededError indicates the folder nesting bound was violated
	DepthExceededError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}

	// ExpiredError indicates a share is inert due to time or access count
	ExpiredError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string         { return e.Message }
func (e *ValidationError) Error() string       { return e.Message }
func (e *InvalidOperationError) Error() string { return e.Message }
func (e *DepthExceededError) Error() string    { return e.Message }
func (e *ForbiddenError) Error() string        { return e.Message }
func (e *ExpiredError) Error() string          { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int         { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int       { return http.StatusBadRequest }
func (e *InvalidOperationError) StatusCode() int { return http.StatusBadRequest }
func (e *DepthExceededError) StatusCode() int    { return http.StatusBadRequest }
func (e *ForbiddenError) StatusCode() int        { return http.StatusForbidden }
func (e *ExpiredError) StatusCode() int          { return http.StatusGone }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrDepthExceeded    = errors.New("folder depth limit exceeded")
	ErrForbidden        = errors.New("forbidden")
	ErrExpired          = errors.New("expired")
)

// Is hooks so typed errors match their sentinels with errors.Is()
func (e *NotFoundError) Is(target error) bool         { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool       { return target == ErrValidation }
func (e *InvalidOperationError) Is(target error) bool { return target == ErrInvalidOperation }
func (e *DepthExceededError) Is(target error) bool    { return target == ErrDepthExceeded }
func (e *ForbiddenError) Is(target error) bool        { return target == ErrForbidden }
func (e *ExpiredError) Is(target error) bool          { return target == ErrExpired }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (folder, permission, share)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
