package taskqueue

import (
	"errors"
	"fmt"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3}
	assert.True(t, p.ShouldRetry(0))
	assert.True(t, p.ShouldRetry(1))
	assert.False(t, p.ShouldRetry(2))

	assert.False(t, RetryPolicy{MaxAttempts: 1}.ShouldRetry(0))
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	p := RetryPolicy{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, p.Backoff(0))
	assert.Equal(t, 200*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 800*time.Millisecond, p.Backoff(3))
	assert.Equal(t, time.Second, p.Backoff(4))
	assert.Equal(t, time.Second, p.Backoff(40))
}

func TestBackoffJitterStaysInRange(t *testing.T) {
	p := RetryPolicy{InitialDelay: 100 * time.Millisecond, Multiplier: 2, AddJitter: true}
	for i := 0; i < 50; i++ {
		d := p.Backoff(0)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 125*time.Millisecond)
	}
}

func TestBackoffWithoutDelay(t *testing.T) {
	assert.Zero(t, RetryPolicy{}.Backoff(3))
}

func TestRetryable(t *testing.T) {
	plain := errors.New("boom")
	assert.False(t, Retryable(nil))
	assert.True(t, Retryable(plain))

	transient := goerrors.WrapRetryable(plain, goerrors.CategoryExternal, "cache delete")
	assert.True(t, Retryable(transient))
	assert.True(t, Retryable(fmt.Errorf("wrapped: %w", transient)))

	permanent := goerrors.WrapRetryable(plain, goerrors.CategoryBadInput, "decode").WithRetryable(false)
	assert.False(t, Retryable(permanent))
	assert.False(t, Retryable(fmt.Errorf("wrapped: %w", permanent)))
}

func TestDefaultRetryPolicyIsValid(t *testing.T) {
	assert.NoError(t, DefaultRetryPolicy().Validate())
}
