package rewards

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an unknown user or withdrawal request id.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientBalance indicates a withdrawal amount above the current balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrAlreadyProcessed indicates a status change on a terminal withdrawal request.
	ErrAlreadyProcessed = errors.New("withdrawal request already processed")
	// ErrInvalidStatus indicates a target status outside approved/rejected.
	ErrInvalidStatus = errors.New("invalid withdrawal status")
)

// StorageError wraps an underlying persistence failure. Callers can unwrap it
// to reach the driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
