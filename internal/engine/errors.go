package engine

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when a mutation is attempted with no
// active identity. Resolved locally; the ledger is never contacted.
var ErrUnauthenticated = errors.New("no active identity")

// SubmissionError wraps a ledger or transport failure for a mutation whose
// optimistic delta has already been reverted. Submissions are not retried
// automatically; the caller re-invokes explicitly.
type SubmissionError struct {
	Kind MutationKind
	Err  error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed (%s): %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *SubmissionError) Unwrap() error { return e.Err }
