package service

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both genuinely missing resources and rows hidden by
// ownership scoping; callers can't tell the two apart.
var ErrNotFound = errors.New("not found")

// ValidationError marks bad input or a broken business rule (duplicate
// booking, end before start). Returned to the caller, never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ProviderError means the external scheduling provider failed or rejected
// a call. No local state was changed when one of these is returned.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("provider %s failed", e.Op)
}

func (e *ProviderError) Unwrap() error { return e.Err }
