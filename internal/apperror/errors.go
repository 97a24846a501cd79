// Package apperror defines the error taxonomy shared by every rendering
// component. Components return these errors and never write to the response;
// the document controller is the single place that decides what the end user
// sees for each kind.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by who has to act on it
type Kind int

const (
	// KindDeveloper marks a programming or configuration mistake
	KindDeveloper Kind = iota
	// KindPermission marks an operation the current user or backend may not perform
	KindPermission
	// KindCritical marks a data or serialization failure
	KindCritical
	// KindNotFound marks a request that matched nothing
	KindNotFound
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindDeveloper:
		return "developer"
	case KindPermission:
		return "permission"
	case KindCritical:
		return "critical"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is the structured error carried through the render pipeline
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Code
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetail attaches a key/value pair to the error and returns it
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Wrap sets the underlying cause and returns the error
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// Developer creates a developer error
func Developer(code, format string, args ...interface{}) *Error {
	return newError(KindDeveloper, code, format, args...)
}

// Permission creates a permission (warning class) error
func Permission(code, format string, args ...interface{}) *Error {
	return newError(KindPermission, code, format, args...)
}

// Critical creates a data or serialization error
func Critical(code, format string, args ...interface{}) *Error {
	return newError(KindCritical, code, format, args...)
}

// NotFound creates a not-found error
func NotFound(code, format string, args ...interface{}) *Error {
	return newError(KindNotFound, code, format, args...)
}

func newError(kind Kind, code, format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Code: code, Message: msg}
}

// KindOf returns the kind of err. Errors outside the taxonomy are critical.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindCritical
}

// IsDeveloper reports whether err is a developer error
func IsDeveloper(err error) bool {
	return err != nil && KindOf(err) == KindDeveloper
}

// IsPermission reports whether err is a permission error
func IsPermission(err error) bool {
	return err != nil && KindOf(err) == KindPermission
}

// IsCritical reports whether err is a critical error
func IsCritical(err error) bool {
	return err != nil && KindOf(err) == KindCritical
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// CodeOf returns the code of err, or an empty string for foreign errors
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HTTPStatus maps an error to the status code the response should carry
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
