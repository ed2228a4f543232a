package correlator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation means the caller supplied input that breaks the
	// engine's preconditions. It indicates a bug upstream and is never retried.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrResourceLimitExceeded means the input is larger than Options.MaxEvents.
	ErrResourceLimitExceeded = errors.New("resource limit exceeded")
)

// InvariantError describes which sequence and position broke a precondition.
type InvariantError struct {
	Sequence string // "alerts", "workOrders" or "options"
	Index    int    // -1 when the violation is not tied to one event
	Reason   string
}

func (e *InvariantError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s: %s", ErrInvariantViolation, e.Sequence, e.Reason)
	}
	return fmt.Sprintf("%s: %s[%d]: %s", ErrInvariantViolation, e.Sequence, e.Index, e.Reason)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

// LimitError reports the configured cap and the actual input size.
type LimitError struct {
	Limit  int
	Actual int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: %d events supplied, limit is %d", ErrResourceLimitExceeded, e.Actual, e.Limit)
}

func (e *LimitError) Unwrap() error { return ErrResourceLimitExceeded }
