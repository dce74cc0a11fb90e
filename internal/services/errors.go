// internal/services/errors.go
package services

import "errors"

// ErrorKind classifies service failures so handlers can map them to HTTP
// statuses without string matching. Every error returned by a service is
// either a *ServiceError or an internal error (5xx).
type ErrorKind string

const (
	KindNotFound   ErrorKind = "not_found"
	KindForbidden  ErrorKind = "forbidden"
	KindConflict   ErrorKind = "conflict"
	KindExpired    ErrorKind = "expired"
	KindValidation ErrorKind = "validation"
	KindTooMany    ErrorKind = "too_many_requests"
)

type ServiceError struct {
	Kind    ErrorKind
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NotFoundError(message string) error {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

func ForbiddenError(message string) error {
	return &ServiceError{Kind: KindForbidden, Message: message}
}

func ConflictError(message string) error {
	return &ServiceError{Kind: KindConflict, Message: message}
}

func ExpiredError(message string) error {
	return &ServiceError{Kind: KindExpired, Message: message}
}

func ValidationError(message string) error {
	return &ServiceError{Kind: KindValidation, Message: message}
}

func TooManyRequestsError(message string) error {
	return &ServiceError{Kind: KindTooMany, Message: message}
}

// KindOf returns the taxonomy kind of err, or an empty kind for internal
// errors.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
