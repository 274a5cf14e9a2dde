package summarize

import (
	"context"
	"testing"
	"time"
)

func TestRPSLimiter_DisabledIsNoOp(t *testing.T) {
	var l *rpsLimiter
	if err := l.acquire(context.Background()); err != nil {
		t.Fatalf("acquire on nil limiter: %v", err)
	}
	l.stop()
}

func TestRPSLimiter_BurstThenBlocks(t *testing.T) {
	l := newRPSLimiter(1, 2)
	defer l.stop()

	ctx := context.Background()
	if err := l.acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := l.acquire(ctx); err != nil {
		t.Fatalf("second acquire: %v", err)
	}

	// Bucket is drained; the next acquire must respect cancellation.
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := l.acquire(short); err != context.DeadlineExceeded {
		t.Fatalf("err=%v want deadline exceeded", err)
	}
}

func TestRPSLimiter_StopUnblocksWaiters(t *testing.T) {
	l := newRPSLimiter(0.1, 1)
	if err := l.acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- l.acquire(context.Background())
	}()
	l.stop()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("err=%v want canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("acquire did not return after stop")
	}
}
