package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services wraps exactly one of these.
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrGraphWriteFailed    = errors.New("graph write failed")
	ErrDocumentWriteFailed = errors.New("document write failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// NotFound returns an ErrNotFound with a readable message
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflict returns an ErrConflict with a readable message
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// InvalidInput returns an ErrInvalidInput with a readable message
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Unauthorized returns an ErrUnauthorized with a readable message
func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

// Forbidden returns an ErrForbidden with a readable message
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// GraphWriteFailed wraps a relationship store failure
func GraphWriteFailed(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrGraphWriteFailed, op, cause)
}

// DocumentWriteFailed wraps an entity store failure that happened after the graph write
func DocumentWriteFailed(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrDocumentWriteFailed, op, cause)
}

// Unavailable wraps a store connection failure
func Unavailable(store string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, store, cause)
}

// Message strips the kind prefix so handlers can show just the detail
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, kind := range []error{ErrNotFound, ErrConflict, ErrInvalidInput, ErrUnauthorized, ErrForbidden} {
		prefix := kind.Error() + ": "
		if errors.Is(err, kind) && len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
