package apperrors

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// NotFoundError marks a referenced room, message or session as absent. It is
// never masked on the way up; the transport layers map it to 404 (or 409 on
// the chat-room read path).
type NotFoundError struct {
	Message string
	Details map[string]any
}

func NewNotFoundError(message string, details map[string]any) *NotFoundError {
	return &NotFoundError{
		Message: message,
		Details: details,
	}
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Code() int {
	return 404
}

// StoreError wraps a failed call against the shared state store. The client
// only ever sees a generic message; the cause and details stay server-side.
type StoreError struct {
	Message string
	Details map[string]any
	cause   error
}

func NewStoreError(message string, cause error) *StoreError {
	return &StoreError{
		Message: message,
		cause:   pkgerrors.WithStack(cause),
	}
}

func NewStoreErrorWithDetails(message string, cause error, details map[string]any) *StoreError {
	return &StoreError{
		Message: message,
		Details: details,
		cause:   pkgerrors.WithStack(cause),
	}
}

func (e *StoreError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.cause
}

func (e *StoreError) Code() int {
	return 500
}

func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}
