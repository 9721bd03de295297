package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Constructors for the error classes operation boundaries map into.

func BadRequest(message string) *APIError {
	return New("BAD_REQUEST", message, "", http.StatusBadRequest)
}

func Unauthorized(message string) *APIError {
	return New("UNAUTHORIZED", message, "", http.StatusUnauthorized)
}

func Forbidden(message string) *APIError {
	return New("FORBIDDEN", message, "", http.StatusForbidden)
}

func NotFound(message string) *APIError {
	return New("NOT_FOUND", message, "", http.StatusNotFound)
}

// Conflict keeps the 400 status the upstream API contract uses for
// duplicate emails rather than 409.
func Conflict(message string) *APIError {
	return New("ALREADY_EXISTS", message, "", http.StatusBadRequest)
}

func Dependency(message string, err error) *APIError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return New("DEPENDENCY_FAILED", message, details, http.StatusInternalServerError)
}
