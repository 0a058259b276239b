package utils

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind classifies failures so handlers can map them to HTTP statuses.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindAuthRequired
	KindForbidden
	KindNotFound
	KindConflict
	KindNoOp
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuthRequired:
		return "AuthenticationRequired"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindNoOp:
		return "NoOpTransition"
	default:
		return "Internal"
	}
}

// HTTPStatus returns the response code for the kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation, KindNoOp:
		return http.StatusBadRequest
	case KindAuthRequired:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError is a classified, client-presentable error. Message is safe to show
// to callers; Err holds the underlying cause, only exposed in development mode.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// WrapError classifies err under kind with a presentable message.
func WrapError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func ValidationError(message string) *AppError { return NewError(KindValidation, message) }
func NotFoundError(message string) *AppError   { return NewError(KindNotFound, message) }
func ConflictError(message string) *AppError   { return NewError(KindConflict, message) }
func NoOpError(message string) *AppError       { return NewError(KindNoOp, message) }

// InternalError wraps an unexpected failure, typically from the database.
func InternalError(err error) *AppError {
	return WrapError(KindInternal, "Internal server error", err)
}

var (
	ErrAuthRequired = NewError(KindAuthRequired, "Authentication required")
	ErrNoPermission = NewError(KindForbidden, "You do not have permission")
)

// KindOf returns the kind of the first AppError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsUniqueViolation recognizes duplicate key errors from the supported
// drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"unique constraint failed", "duplicate entry", "duplicate key value"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
