package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AppError represents a domain-specific error with structured information and enhanced context
type AppError struct {
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Details    any       `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	Operation  string    `json:"operation,omitempty"`
	Cause      error     `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error wrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

type requestIDKey struct{}

// WithRequestID stores a request ID on the context for later error enrichment
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// WithContext adds context information to the error
func (e *AppError) WithContext(ctx context.Context, operation string) *AppError {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		e.RequestID = id
	}
	e.Operation = operation
	return e
}

// Error codes for different error categories
const (
	ErrInvalidInput = "INVALID_INPUT"  // 400 Bad Request
	ErrNotFound     = "NOT_FOUND"      // 404 Not Found
	ErrInternal     = "INTERNAL_ERROR" // 500 Internal Server Error
	ErrRateLimit    = "RATE_LIMIT"     // 429 Too Many Requests

	// Catalog and download error codes
	ErrNetwork  = "NETWORK_ERROR"  // 502 transport failure talking to the remote API
	ErrAPI      = "API_ERROR"      // 502 malformed or unexpected remote response
	ErrDownload = "DOWNLOAD_ERROR" // 502 stream interrupted or incomplete
	ErrDisk     = "DISK_ERROR"     // 507 write failure or insufficient space
	ErrArchive  = "ARCHIVE_ERROR"  // 422 corrupt or unsupported archive
	ErrCanceled = "CANCELLED"      // 409 task cancelled by the caller

	// Instance and launch error codes
	ErrNameConflict        = "NAME_CONFLICT"         // 409 instance name taken
	ErrInvalidName         = "INVALID_NAME"          // 422 unsafe instance name
	ErrManifestInvalid     = "MANIFEST_INVALID"      // 422 unreadable instance manifest
	ErrVersionNotInstalled = "VERSION_NOT_INSTALLED" // 409 bound version missing from the index
	ErrLaunch              = "LAUNCH_ERROR"          // 500 game process failed to start
)

// NewAppError creates a new AppError with the specified parameters
func NewAppError(code, message string, statusCode int, details any) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
		Timestamp:  time.Now(),
	}
}

// NewAppErrorWithCause creates a new AppError with underlying cause
func NewAppErrorWithCause(code, message string, statusCode int, cause error, details any) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
		Timestamp:  time.Now(),
		Cause:      cause,
	}
}

// AsAppError extracts the first AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return HasCode(err, ErrNotFound)
}

// IsNameConflict checks if the error is an instance name conflict
func IsNameConflict(err error) bool {
	return HasCode(err, ErrNameConflict)
}

// IsVersionNotInstalled checks if the error reports a missing install
func IsVersionNotInstalled(err error) bool {
	return HasCode(err, ErrVersionNotInstalled)
}

// IsCanceled checks if the error is a cancelled download
func IsCanceled(err error) bool {
	return HasCode(err, ErrCanceled)
}
