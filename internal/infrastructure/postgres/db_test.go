package postgres

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(ctx context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitForPingRecovers(t *testing.T) {
	p := &flakyPinger{failures: 2}

	if err := waitForPing(context.Background(), p, 5*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.calls != 3 {
		t.Fatalf("expected 3 pings, got %d", p.calls)
	}
}

func TestWaitForPingGivesUp(t *testing.T) {
	p := &flakyPinger{failures: 1 << 30}

	if err := waitForPing(context.Background(), p, 50*time.Millisecond); err == nil {
		t.Fatal("expected error after the timeout elapsed")
	}
}

func TestWaitForPingHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &flakyPinger{failures: 1 << 30}

	if err := waitForPing(ctx, p, time.Minute); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
