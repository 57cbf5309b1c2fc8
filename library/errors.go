package library

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidStateForProgress is returned when a progress update is
	// attempted on a book that is not in_progress.
	ErrInvalidStateForProgress = errors.New("can only update progress for books in progress")
	// ErrNegativeProgress is returned when the requested progress is below zero.
	ErrNegativeProgress = errors.New("progress cannot be negative")
	// ErrProgressExceedsPageCount is returned when the requested progress is
	// beyond the book's page count.
	ErrProgressExceedsPageCount = errors.New("progress cannot exceed total pages")
	// ErrStoreUnavailable wraps a failed atomic write. The caller owns any
	// retry, this package performs none.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidRating is returned when a review or rating is outside [1,5].
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// InvalidTransitionError reports a requested state change that is not in
// the transition table.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// ValidationError carries the complete list of violated field rules.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}
