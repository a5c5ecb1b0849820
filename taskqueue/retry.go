package taskqueue

import (
	"errors"
	"math/rand/v2"
	"time"
)

// RetryPolicy bounds redelivery of failed tasks with exponential backoff.
type RetryPolicy struct {
	// MaxAttempts counts every execution, the first one included.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	AddJitter    bool
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

// ShouldRetry reports whether a task that failed on attempt (zero based) gets
// another execution.
func (p RetryPolicy) ShouldRetry(attempt int) bool {
	return attempt+1 < p.MaxAttempts
}

// Backoff returns the delay before the execution following attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.InitialDelay
	if delay <= 0 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	for i := 0; i < attempt; i++ {
		delay = time.Duration(float64(delay) * mult)
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if p.AddJitter && delay >= 4 {
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}

// Retryable reports whether err should lead to redelivery. Errors are retryable
// unless one in the chain says otherwise through IsRetryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var r interface{ IsRetryable() bool }
	if errors.As(err, &r) {
		return r.IsRetryable()
	}
	return true
}
