package pressroom

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by both adapters.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable indicates the durable store could not be
	// reached. Compare with errors.Is; the concrete error carries the
	// failing operation and cause.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError indicates input failed a contract-level check:
// missing field, malformed value, or a uniqueness collision. It never
// triggers adapter switching.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreUnavailableError wraps a connectivity failure from the durable
// adapter. errors.Is(err, ErrStoreUnavailable) matches it.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match against the ErrStoreUnavailable sentinel.
func (e *StoreUnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// InitializationError indicates the durable adapter failed to ready
// itself during a proposed switch. The selector logs it and stays on
// the current adapter.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("durable store initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}
