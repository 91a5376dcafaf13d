package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the sentinel every record lookup miss unwraps to.
	ErrNotFound = errors.New("record not found")

	// ErrEmailAlreadyExists is returned by CreateUser for a taken email.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidRequest is returned for malformed engine calls.
	ErrInvalidRequest = errors.New("invalid request")
)

// NotFoundError reports a referenced id that does not resolve in the store.
type NotFoundError struct {
	Kind Kind
	ID   string
}

// NewNotFoundError returns a *NotFoundError for kind/id.
func NewNotFoundError(kind Kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFound reports whether err is (or wraps) a record lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
