// ABOUTME: Error taxonomy for plan generation.
// ABOUTME: Precondition failures versus retryable generation failures.
package planner

import (
	"errors"
	"fmt"
)

// ErrProfileIncomplete means the user has no usable profile yet.
var ErrProfileIncomplete = errors.New("complete your profile first")

// ErrNoAlternative means a swap found no other meal for the slot.
var ErrNoAlternative = errors.New("no alternative meal available")

// GenerationError wraps a persistence failure during generation. The plan
// on disk is unchanged and the request can be retried.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Retryable reports whether the caller should try again.
func (e *GenerationError) Retryable() bool { return true }

// IsRetryable reports whether err is a retryable generation failure.
func IsRetryable(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && ge.Retryable()
}
