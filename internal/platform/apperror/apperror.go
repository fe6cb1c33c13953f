// Package apperror defines the error taxonomy shared by all domain services
// and its mapping onto HTTP responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindPastDate     Kind = "past_date"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindDownstream   Kind = "downstream"
)

// Error is an application error with a kind and an optional field reference
// for user-correctable validation failures.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"error"`
	Field   string `json:"field,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two application errors by kind, so callers can test
// errors.Is(err, apperror.Conflict("")) without caring about the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// ValidationField reports a validation failure on a specific input field.
func ValidationField(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Field: field}
}

func PastDate(msg string) *Error     { return &Error{Kind: KindPastDate, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }

// Downstream wraps a store or delivery-channel failure. The cause is kept for
// logging but never serialized to the client.
func Downstream(msg string, cause error) *Error {
	return &Error{Kind: KindDownstream, Message: msg, cause: cause}
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindPastDate:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts any error into an echo HTTP error. Application errors keep
// their kind and field detail in the response body; anything else becomes a
// generic 500 so internal details never leak.
func ToHTTP(err error) *echo.HTTPError {
	var appErr *Error
	if errors.As(err, &appErr) {
		return echo.NewHTTPError(HTTPStatus(appErr.Kind), map[string]string{
			"kind":  string(appErr.Kind),
			"error": appErr.Message,
			"field": appErr.Field,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
