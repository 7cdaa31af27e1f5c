package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/code-payments/code-vault/pkg/retry/backoff"
)

// Strategy is a function that determines whether or not an action should be
// retried. Strategies are allowed to delay or cause other side effects.
type Strategy func(attempts uint, err error) bool

// Limit returns a strategy that limits the total number of attempts.
// maxAttempts should be >= 1, since the action is evaluated first.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, err error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors returns a strategy that only retries the listed errors.
func RetriableErrors(retriableErrors ...error) Strategy {
	return func(attempts uint, err error) bool {
		for _, e := range retriableErrors {
			if errors.Is(err, e) {
				return true
			}
		}

		return false
	}
}

// NonRetriableErrors returns a strategy that never retries the listed errors.
func NonRetriableErrors(nonRetriableErrors ...error) Strategy {
	return func(attempts uint, err error) bool {
		for _, e := range nonRetriableErrors {
			if errors.Is(err, e) {
				return false
			}
		}

		return true
	}
}

// RetriableIf returns a strategy that retries errors matching predicate. It
// covers error values that carry their kind in a field rather than as a
// sentinel.
func RetriableIf(predicate func(error) bool) Strategy {
	return func(attempts uint, err error) bool {
		return predicate(err)
	}
}

// UntilDone returns a strategy that stops retrying once ctx is done.
func UntilDone(ctx context.Context) Strategy {
	return func(attempts uint, err error) bool {
		return ctx.Err() == nil
	}
}

// Backoff returns a strategy that sleeps before the next attempt, capped at
// maxBackoff.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return func(attempts uint, err error) bool {
		sleeperImpl.Sleep(capDelay(strategy(attempts), maxBackoff))
		return true
	}
}

// BackoffWithJitter is Backoff with the capped delay randomly moved by up to
// jitter percent in either direction. A capped delay of 100ms with a jitter of
// 0.1 sleeps between 90ms and 110ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, err error) bool {
		cappedDelay := capDelay(strategy(attempts), maxBackoff)
		sleeperImpl.Sleep(time.Duration(float64(cappedDelay) * (1 + (rand.Float64()*jitter*2 - jitter))))
		return true
	}
}

func capDelay(delay, maxBackoff time.Duration) time.Duration {
	return time.Duration(math.Min(float64(maxBackoff), float64(delay)))
}

type sleeper interface {
	Sleep(time.Duration)
}

type realSleeper struct{}

func (r *realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = &realSleeper{}
