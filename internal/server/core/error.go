package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes
const (
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrValidationFailed  = "VALIDATION_FAILED"
	ErrNotFound          = "NOT_FOUND"
	ErrForbiddenAccess   = "FORBIDDEN"
	ErrInvalidDice       = "INVALID_DICE"
	ErrPersistenceFailed = "PERSISTENCE_FAILED"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrResourceLimit     = "RESOURCE_LIMIT"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrStorageDisabled   = "STORAGE_DISABLED"
)

// Kind classifies engine failures independently of the transport.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the typed engine error. Errors match each other by Kind.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Cause   error
}

// Sentinels for errors.Is checks.
var (
	ErrValidation  = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrMissing     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden   = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrPersistence = &Error{Kind: KindPersistence, Message: "persistence failed"}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		b.WriteString(": ")
		b.WriteString(e.FieldSummary())
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// FieldSummary joins field errors as "field: message; field: message"
func (e *Error) FieldSummary() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(parts, "; ")
}

// Retryable reports whether resubmitting the same request may succeed
func (e *Error) Retryable() bool {
	return e.Kind == KindPersistence
}

// Validation builds a validation error for the given fields
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// NotFound builds a not-found error for a named resource
func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", resource, id)}
}

// Forbidden builds an ownership error for a named resource
func Forbidden(resource, id string) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf("%s not accessible: %s", resource, id)}
}

// Persistence wraps a storage failure
func Persistence(message string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Cause: cause}
}

// KindOf extracts the Kind of err, KindInternal when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
