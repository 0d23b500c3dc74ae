package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fansite/forum/internal/auth"
	"github.com/fansite/forum/internal/forum"
)

// Error represents an API error
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NewError creates a new API error
func NewError(status int, code, message string) *Error {
	return &Error{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// Error codes returned in the "error" field
const (
	CodeValidation       = "validation_error"
	CodeTooLarge         = "payload_too_large"
	CodeNoChange         = "no_change"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeLocked           = "locked"
	CodeEditWindow       = "edit_window_expired"
	CodeMaxEdits         = "max_edits_reached"
	CodeNotFound         = "not_found"
	CodeEditConflict     = "edit_conflict"
	CodeUpstream         = "upstream_error"
	CodeInternal         = "internal_error"
	internalErrorMessage = "internal server error"
)

// toAPIError maps domain errors to HTTP errors. The boolean is false for
// unexpected errors, which callers log before responding.
func toAPIError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	var verr *forum.ValidationError
	if errors.As(err, &verr) {
		e := NewError(http.StatusBadRequest, CodeValidation, verr.Error())
		e.Field = verr.Field
		return e, true
	}

	switch {
	case errors.Is(err, forum.ErrNoChange):
		return NewError(http.StatusBadRequest, CodeNoChange, err.Error()), true
	case errors.Is(err, forum.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		return NewError(http.StatusUnauthorized, CodeUnauthorized, forum.ErrUnauthenticated.Error()), true
	case errors.Is(err, forum.ErrForbidden):
		return NewError(http.StatusForbidden, CodeForbidden, err.Error()), true
	case errors.Is(err, forum.ErrLocked):
		return NewError(http.StatusForbidden, CodeLocked, err.Error()), true
	case errors.Is(err, forum.ErrEditWindowExpired):
		return NewError(http.StatusForbidden, CodeEditWindow, err.Error()), true
	case errors.Is(err, forum.ErrMaxEditsReached):
		return NewError(http.StatusForbidden, CodeMaxEdits, err.Error()), true
	case errors.Is(err, forum.ErrNotFound):
		return NewError(http.StatusNotFound, CodeNotFound, err.Error()), true
	case errors.Is(err, forum.ErrEditConflict):
		return NewError(http.StatusConflict, CodeEditConflict, err.Error()), true
	case forum.IsUpstreamError(err):
		return NewError(http.StatusBadGateway, CodeUpstream, "image service unavailable"), true
	}

	return NewError(http.StatusInternalServerError, CodeInternal, internalErrorMessage), false
}
