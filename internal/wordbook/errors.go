// Defines the errors surfaced to callers.

package wordbook

import (
	"errors"
	"fmt"
)

// ErrEmptyPageID is returned when a mutation names no page.
var ErrEmptyPageID = errors.New("page id is required")

// TransportError reports that a remote call failed. The current fetch is
// aborted and nothing is cached.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MutationError reports that a status update was rejected or could not be
// sent. The cache is left as it was.
type MutationError struct {
	PageID string
	Status Status
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("set status of %s to %q: %v", e.PageID, e.Status, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
