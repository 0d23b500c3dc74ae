package forum

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated indicates the request carries no valid session
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden indicates the actor is neither the author nor an admin
	ErrForbidden = errors.New("you do not have permission to modify this content")

	// ErrNotFound indicates the topic or comment doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrLocked indicates the topic is locked against edits and new comments
	ErrLocked = errors.New("topic is locked")

	// ErrEditWindowExpired indicates the edit window after creation has passed
	ErrEditWindowExpired = errors.New("edit window has expired")

	// ErrMaxEditsReached indicates the entity has used all of its edits
	ErrMaxEditsReached = errors.New("maximum number of edits reached")

	// ErrNoChange indicates an edit that leaves title and content untouched
	ErrNoChange = errors.New("no changes detected")

	// ErrEditConflict indicates the entity changed between read and conditional write
	ErrEditConflict = errors.New("content was modified by another request")

	// ErrDuplicateLike is returned by a Store when a concurrent toggle inserted the same like first
	ErrDuplicateLike = errors.New("like already exists")
)

// ValidationError names the request field that failed validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a failed call to an external collaborator
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsUpstreamError checks if an error came from an external collaborator
func IsUpstreamError(err error) bool {
	var u *UpstreamError
	return errors.As(err, &u)
}

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPolicyRejection checks if an error is an expected edit-policy outcome
func IsPolicyRejection(err error) bool {
	return errors.Is(err, ErrLocked) ||
		errors.Is(err, ErrEditWindowExpired) ||
		errors.Is(err, ErrMaxEditsReached) ||
		errors.Is(err, ErrNoChange)
}
