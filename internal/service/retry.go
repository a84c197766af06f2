package service

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// retryTransient runs op until it succeeds, returns a non transient error or
// the retries are exhausted. The last error is returned unwrapped.
func retryTransient[T any](ctx context.Context, policy RetryPolicy, op func() (T, error), transient func(error) bool) (T, error) {
	retries := max(policy.MaxRetries, 0)

	operation := func() (T, error) {
		res, err := op()
		if err != nil && !transient(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(policy.Backoff)),
		backoff.WithMaxTries(uint(retries+1)),
	)
}

// isNetworkError matches transport failures and timeouts
func isNetworkError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
