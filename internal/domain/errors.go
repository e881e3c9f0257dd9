package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup against the current snapshot that matched nothing.
// It is a client input problem, never a server fault.
var ErrNotFound = errors.New("not found")

// NotFoundError carries the message shown to the caller. It matches ErrNotFound.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFoundf builds a NotFoundError.
func NotFoundf(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}
