package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the stable category tag surfaced to callers.
type ErrorKind string

const (
	KindValidation       ErrorKind = "VALIDATION"
	KindUnauthorized     ErrorKind = "UNAUTHORIZED"
	KindAccessDenied     ErrorKind = "ACCESS_DENIED"
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindConflict         ErrorKind = "CONFLICT"
	KindRateLimited      ErrorKind = "RATE_LIMITED"
	KindTransientStorage ErrorKind = "TRANSIENT_STORAGE"
	KindInternal         ErrorKind = "INTERNAL"
)

// DomainError standardizes application errors.
type DomainError struct {
	Kind       ErrorKind
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches two domain errors by code so callers can compare against templates.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code != "" && other.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind ErrorKind, code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(code, message string, details map[string]any) error {
	return NewDomainError(KindValidation, code, message, http.StatusBadRequest, details)
}

func NewNotFound(code, resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError(KindNotFound, code, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(KindUnauthorized, "UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewAccessDenied(code, message string) error {
	if code == "" {
		code = "ACCESS_DENIED"
	}
	return NewDomainError(KindAccessDenied, code, message, http.StatusForbidden, nil)
}

func NewConflict(code, message string, details map[string]any) error {
	return NewDomainError(KindConflict, code, message, http.StatusConflict, details)
}

func NewRateLimited(message string) error {
	return NewDomainError(KindRateLimited, "RATE_LIMITED", message, http.StatusTooManyRequests, nil)
}

// NewTransientStorage wraps a storage failure that is safe to retry as a whole operation.
func NewTransientStorage(code string, err error) error {
	if code == "" {
		code = "STORAGE_UNAVAILABLE"
	}
	return &DomainError{
		Kind:       KindTransientStorage,
		Code:       code,
		Message:    "storage temporarily unavailable, retry the operation",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"retryable": true},
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Kind:       KindInternal,
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err).(*DomainError)
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Kind
}

// CodeOf reports the stable code of err.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Code
}
