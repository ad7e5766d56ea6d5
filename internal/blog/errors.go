package blog

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when a write is attempted without an admin grant.
	ErrForbidden = errors.New("only the admin can modify posts")
	// ErrNotConfirmed is returned when the user declines a delete confirmation.
	ErrNotConfirmed = errors.New("delete not confirmed")
)

// WriteError wraps a failed create, update or delete against the store.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s post: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
