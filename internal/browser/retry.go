package browser

import "errors"

// WithStaleRetry runs op and, when it fails with ErrStale, re-acquires the
// element exactly once and retries. Anything still stale after that bubbles
// up; unbounded retry loops against a re-rendering page never converge.
func WithStaleRetry(op func() error, reacquire func() error) error {
	err := op()
	if !errors.Is(err, ErrStale) {
		return err
	}
	if rerr := reacquire(); rerr != nil {
		return rerr
	}
	return op()
}
