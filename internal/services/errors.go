package services

import (
	"errors"
	"fmt"

	"github.com/prudhvinik1/statusboard/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("not signed in")

	// ErrNotFound is returned when no status record exists for an id.
	ErrNotFound = repositories.ErrNotFound
)

// StoreError reports a failed request to the status record store for any
// reason other than a missing record.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("status store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// classify leaves ErrNotFound and validation errors as they are and wraps
// everything else in a StoreError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return &StoreError{Op: op, Err: err}
}
