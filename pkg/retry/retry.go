package retry

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retrier retries the provided action.
type Retrier interface {
	Retry(action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier bound to the provided strategies. With no
// strategies it retries in a tight loop until the action succeeds.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(action Action) (uint, error) {
	return Retry(action, r.strategies...)
}

// Retry executes action until it succeeds or a strategy declines another
// attempt, returning the number of attempts made.
//
// Strategies run in order and the first refusal wins, so strategies that
// sleep should be specified last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	for i := uint(1); ; i++ {
		err := action()
		if err == nil {
			return i, nil
		}

		if !shouldRetry(strategies, i, err) {
			return i, err
		}
	}
}

// Loop executes action forever, until a strategy declines to retry a failure.
// A successful run resets the attempt counter.
func Loop(action Action, strategies ...Strategy) error {
	for i := uint(1); ; i++ {
		err := action()
		if err == nil {
			i = 0
			continue
		}

		if !shouldRetry(strategies, i, err) {
			return err
		}
	}
}

func shouldRetry(strategies []Strategy, attempts uint, err error) bool {
	for _, s := range strategies {
		if !s(attempts, err) {
			return false
		}
	}
	return true
}
