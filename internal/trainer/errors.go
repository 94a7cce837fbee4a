package trainer

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the trainer. Check them with errors.Is.
var (
	ErrInvalidArgument = errors.New("trainer: invalid argument")
	ErrNotFound        = errors.New("trainer: not found")
)

// StorageError wraps a failure of the persistence layer
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("trainer: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
