package cases

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a case does not exist.
var ErrNotFound = errors.New("case not found")

// ErrStatusConflict is returned when a compare-and-swap status update loses
// to a concurrent transition.
var ErrStatusConflict = errors.New("case status changed concurrently")

// ErrMissingResolution is returned when a transition to resolved lacks
// resolution metadata.
var ErrMissingResolution = errors.New("resolution metadata is required to resolve a case")

// ErrUnknownCategory is returned when a category is outside the closed set.
var ErrUnknownCategory = errors.New("unknown case category")

// InvalidTransitionError reports a lifecycle transition outside the allowed
// table, naming the current and requested states.
type InvalidTransitionError struct {
	From   Status
	To     Status
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
