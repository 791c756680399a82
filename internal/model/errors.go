package model

import (
	"encoding/json"
	"net/http"
)

// Error codes clients can branch on without parsing messages.
const (
	CodeSessionExpired  = "SESSION_EXPIRED"
	CodeUnauthenticated = "UNAUTHENTICATED"
)

// APIError is the JSON error body returned by every endpoint. Status
// is the HTTP status and is not serialized.
type APIError struct {
	Status   int    `json:"-"`
	Detail   string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
	Code     string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	return e.Detail
}

// WriteJSON writes the error and its status to w.
func (e *APIError) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(e)
}

// NewSessionExpiredError signals that a credential was presented but no
// longer verifies. Clients are pointed back at the login page.
func NewSessionExpiredError() *APIError {
	return &APIError{
		Status:   http.StatusUnauthorized,
		Detail:   "Session expired. Please sign in to your account.",
		Redirect: "/login",
		Code:     CodeSessionExpired,
	}
}

// NewUnauthenticatedError signals that no credential was presented.
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Status:   http.StatusUnauthorized,
		Detail:   "Unauthorized",
		Redirect: "/login",
		Code:     CodeUnauthenticated,
	}
}

// NewForbiddenError signals an authenticated but disallowed action.
func NewForbiddenError(detail string) *APIError {
	return &APIError{Status: http.StatusForbidden, Detail: detail}
}

// NewNotFoundError signals a missing resource.
func NewNotFoundError(detail string) *APIError {
	return &APIError{Status: http.StatusNotFound, Detail: detail}
}

// NewConflictError signals a uniqueness or state conflict.
func NewConflictError(detail string) *APIError {
	return &APIError{Status: http.StatusConflict, Detail: detail}
}

// NewValidationError signals malformed input. Use status 400 for
// transport-level problems and 422 for well-formed but invalid data.
func NewValidationError(status int, detail string) *APIError {
	return &APIError{Status: status, Detail: detail}
}

// NewInternalError hides internals behind a generic message.
func NewInternalError() *APIError {
	return &APIError{
		Status: http.StatusInternalServerError,
		Detail: "Something went wrong, please try again later.",
	}
}
