// Package apperror defines the error kinds shared by the storage, service
// and HTTP layers.
//
// Lower layers return an *AppError wrapping one of the sentinels below;
// handlers map the sentinel to a status code with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Match them with errors.Is, which walks through any
// fmt.Errorf("...: %w") wrapping added on the way up.
var (
	// ErrNotFound means a lookup matched no row.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the caller sent missing or malformed input.
	ErrValidation = errors.New("validation error")
	// ErrConflict means a uniqueness rule rejected a write.
	ErrConflict = errors.New("conflict")
)

// AppError carries a sentinel kind plus a message that is safe to return
// to clients. Wrap it with %w to add internal context; the message stays
// the client-facing part.
//
//	return fmt.Errorf("saving profile: %w", apperror.ValidationFailed("email", "email is required"))
type AppError struct {
	Err     error  // sentinel kind
	Message string // safe to show to clients
	Field   string // optional: request field at fault
}

// Error returns the client-safe message.
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel so errors.Is(err, ErrValidation) works.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that no resource matched key (an email, an id, ...).
func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %q not found", resource, key),
	}
}

// ValidationFailed reports bad input in field. message is shown to the
// client as-is, so it must not contain internal details.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// AlreadyExists reports a unique-key collision on write.
func AlreadyExists(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s %q already exists", resource, key),
	}
}

// Is reports whether err is an *AppError of the given kind.
func Is(err, kind error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && errors.Is(appErr.Err, kind)
}
