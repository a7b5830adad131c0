package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyCheckAndSet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	// First claim succeeds with no stored response.
	exists, stored, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if exists || stored != nil {
		t.Fatalf("expected fresh claim, got exists=%v stored=%q", exists, stored)
	}

	// Second request replays whatever is stored.
	exists, stored, err = store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !exists {
		t.Fatal("expected the key to be claimed")
	}
	if string(stored) != "processing" {
		t.Fatalf("expected processing placeholder, got %q", stored)
	}

	// After the handler stores the response, replays see it.
	if err := store.Update(ctx, "key-1", []byte(`{"ok":true}`), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	exists, stored, err = store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !exists || string(stored) != `{"ok":true}` {
		t.Fatalf("expected stored response, got exists=%v stored=%q", exists, stored)
	}
}
