package seastyle

import "context"

// Attempt records one failed strategy for the debug bundle.
type Attempt struct {
	Strategy string `json:"strategy"`
	Error    string `json:"error"`
}

// strategy is one concrete way of asking the upstream for the same
// logical data.
type strategy[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
}

// runChain tries each strategy in order and returns the first success
// along with the name that won and the failures that preceded it.
// Cancellation aborts immediately; anything else is recorded and the
// chain moves on. When every candidate fails, the last error is raised
// wrapped in ExhaustedError.
func runChain[T any](ctx context.Context, strategies []strategy[T]) (T, string, []Attempt, error) {
	var zero T
	if len(strategies) == 0 {
		return zero, "", nil, ErrNoStrategies
	}

	var attempts []Attempt
	var lastErr error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return zero, "", attempts, err
		}

		value, err := s.run(ctx)
		if err == nil {
			return value, s.name, attempts, nil
		}
		if isCancellation(err) {
			return zero, "", attempts, err
		}
		attempts = append(attempts, Attempt{Strategy: s.name, Error: err.Error()})
		lastErr = err
	}

	return zero, "", attempts, &ExhaustedError{Attempts: attempts, Last: lastErr}
}
