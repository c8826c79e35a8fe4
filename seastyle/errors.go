package seastyle

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoStrategies is raised when a chain is asked to run with no
// candidates at all.
var ErrNoStrategies = errors.New("seastyle: no strategies to run")

// TransportError reports a failed upstream call: either a network-level
// failure (Status 0) or a non-success HTTP status. The chain moves on to
// the next strategy, never retrying the same one.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("seastyle: upstream returned %d for %s", e.Status, e.URL)
	}
	return fmt.Sprintf("seastyle: request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EmptyResponseError reports a success status with an empty body. For
// chain purposes it is handled like a transport error.
type EmptyResponseError struct {
	URL string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("seastyle: empty response from %s", e.URL)
}

// ExhaustedError is raised only after every candidate in a chain has
// failed. It carries the last underlying error as cause.
type ExhaustedError struct {
	Attempts []Attempt
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("seastyle: all %d strategies failed, last: %v", len(e.Attempts), e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// isCancellation reports whether an error is the caller aborting. Those
// propagate immediately and halt the whole chain.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
