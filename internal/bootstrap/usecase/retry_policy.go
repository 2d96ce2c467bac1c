package usecase

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy is a constant-interval retry policy. MaxAttempts of 0 means
// retry until success or until the context is done.
type RetryPolicy struct {
	Interval    time.Duration
	MaxAttempts uint64

	// Timer drives the waits between attempts. Nil uses a real timer.
	Timer backoff.Timer
}

// NewRetryPolicy creates an unbounded policy waiting interval between attempts
func NewRetryPolicy(interval time.Duration) RetryPolicy {
	return RetryPolicy{Interval: interval}
}

// WithMaxAttempts returns a copy of the policy bounded to n attempts
func (p RetryPolicy) WithMaxAttempts(n uint64) RetryPolicy {
	p.MaxAttempts = n
	return p
}

// WithTimer returns a copy of the policy using t for the waits
func (p RetryPolicy) WithTimer(t backoff.Timer) RetryPolicy {
	p.Timer = t
	return p
}

// Unlimited reports whether the policy retries forever
func (p RetryPolicy) Unlimited() bool {
	return p.MaxAttempts == 0
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = backoff.NewConstantBackOff(p.Interval)
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, p.MaxAttempts-1)
	}
	return backoff.WithContext(b, ctx)
}

// Do runs op until it succeeds, the policy gives up or ctx is done. notify
// is called after each failed attempt that will be retried. The returned
// count is the number of attempts made.
func (p RetryPolicy) Do(ctx context.Context, op func(attempt int) error, notify func(attempt int, err error, wait time.Duration)) (int, error) {
	attempts := 0
	operation := func() error {
		attempts++
		return op(attempts)
	}
	onRetry := func(err error, wait time.Duration) {
		if notify != nil {
			notify(attempts, err, wait)
		}
	}

	err := backoff.RetryNotifyWithTimer(operation, p.backOff(ctx), onRetry, p.Timer)
	return attempts, err
}
