package utils

import (
	"context"
	"math/rand"
	"time"
)

var sleep = time.Sleep

// WaitFor sleeps for the given duration unless the context is cancelled first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// WaitRandom sleeps for a random duration in [min, max). Humans do not click
// at fixed intervals and neither should we.
func WaitRandom(ctx context.Context, min, max time.Duration) error {
	if max <= min {
		return WaitFor(ctx, min)
	}
	jitter := time.Duration(rand.Int63n(int64(max - min)))
	return WaitFor(ctx, min+jitter)
}
