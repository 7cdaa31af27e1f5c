// Package backoff provides delay strategies for retry.
package backoff

import (
	"math"
	"time"
)

// Strategy returns how long to wait before the next attempt. Attempts start
// at 1.
type Strategy func(attempts uint) time.Duration

// Constant always waits interval.
func Constant(interval time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		return interval
	}
}

// Linear waits baseDelay * attempts.
//
// Ex. Linear(2*time.Second) = 2s, 4s, 6s, 8s, ...
func Linear(baseDelay time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		return saturate(float64(baseDelay) * float64(attempts))
	}
}

// Exponential waits baseDelay * base^(attempts - 1).
//
// Ex. Exponential(2*time.Second, 3) = 2s, 6s, 18s, 54s, ...
func Exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		return saturate(float64(baseDelay) * math.Pow(base, float64(attempts-1)))
	}
}

// BinaryExponential is Exponential with a base of 2.
//
// Ex. BinaryExponential(2*time.Second) = 2s, 4s, 8s, 16s, ...
func BinaryExponential(baseDelay time.Duration) Strategy {
	return Exponential(baseDelay, 2)
}

// saturate clamps delays that overflow a time.Duration.
func saturate(delay float64) time.Duration {
	if delay >= math.MaxInt64 || math.IsInf(delay, 1) || math.IsNaN(delay) {
		return math.MaxInt64
	}
	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}
