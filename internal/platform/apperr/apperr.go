// Package apperr classifies service-level failures so the HTTP layer can map
// them to a status code and envelope message without inspecting strings.
package apperr

import (
	"fmt"
	"net/http"
)

// Type identifies the class of failure.
type Type string

const (
	TypeNotFound    Type = "NOT_FOUND"
	TypeBadRequest  Type = "BAD_REQUEST"
	TypeUnavailable Type = "UNAVAILABLE"
	TypeInternal    Type = "INTERNAL"
)

// Error is a classified application error. Message is safe to show clients.
type Error struct {
	Type    Type
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing entity, e.g. NotFound("Patient") renders as
// "Patient not found".
func NotFound(entity string) *Error {
	return &Error{Type: TypeNotFound, Message: entity + " not found"}
}

func BadRequest(message string, err error) *Error {
	return &Error{Type: TypeBadRequest, Message: message, Err: err}
}

// Unavailable reports a failing downstream dependency.
func Unavailable(message string, err error) *Error {
	return &Error{Type: TypeUnavailable, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Type: TypeInternal, Message: message, Err: err}
}

// HTTPStatus maps a Type to its response status.
func HTTPStatus(t Type) int {
	switch t {
	case TypeNotFound:
		return http.StatusNotFound
	case TypeBadRequest:
		return http.StatusBadRequest
	case TypeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
