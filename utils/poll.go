package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrWaitTimeout is returned by WaitFor when timeout expires first.
var ErrWaitTimeout = errors.New("timeout")

// WaitFor calls check right away and then every interval until it reports
// done, returns an error, or timeout expires. check receives the bounded
// context so that in-flight requests are cut off at the deadline too.
func WaitFor(ctx context.Context, timeout, interval time.Duration, check func(ctx context.Context) (done bool, err error)) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s", ErrWaitTimeout, timeout)
			}
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s", ErrWaitTimeout, timeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
