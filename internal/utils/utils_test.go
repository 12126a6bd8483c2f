package utils

import (
	"context"
	"testing"
	"time"
)

func TestWaitForReturnsOnCancel(t *testing.T) {
	orig := sleep
	sleep = func(time.Duration) { select {} }
	defer func() { sleep = orig }()

	ctx, cancel := context.WithCancel(context.Background())
	go cancel()

	if err := WaitFor(ctx, time.Hour); err == nil {
		t.Fatalf("expected context error, got nil")
	}
}

func TestWaitForZeroDuration(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitRandomStaysWithinBounds(t *testing.T) {
	orig := sleep
	var slept time.Duration
	sleep = func(d time.Duration) { slept = d }
	defer func() { sleep = orig }()

	for i := 0; i < 50; i++ {
		if err := WaitRandom(context.Background(), 10*time.Millisecond, 20*time.Millisecond); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slept < 10*time.Millisecond || slept >= 20*time.Millisecond {
			t.Fatalf("slept %v, want [10ms, 20ms)", slept)
		}
	}
}

func TestWaitRandomDegenerateRange(t *testing.T) {
	orig := sleep
	var slept time.Duration
	sleep = func(d time.Duration) { slept = d }
	defer func() { sleep = orig }()

	if err := WaitRandom(context.Background(), 5*time.Millisecond, 5*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != 5*time.Millisecond {
		t.Fatalf("slept %v, want 5ms", slept)
	}
}
