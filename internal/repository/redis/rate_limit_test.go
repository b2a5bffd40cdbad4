package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitRepository_WindowLifecycle(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, "ac:rate-limit", time.Minute)
	ctx := context.Background()

	base := time.Now()
	window := 30 * time.Second

	for i := 0; i < 3; i++ {
		if err := repo.RecordAttempt(ctx, "login:1.2.3.4", base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	count, err := repo.CountAttempts(ctx, "login:1.2.3.4", window, base.Add(3*time.Second))
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 attempts, got %d", count)
	}

	oldest, ok, err := repo.OldestAttempt(ctx, "login:1.2.3.4", window, base.Add(3*time.Second))
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected an oldest attempt")
	}
	if got := oldest.UnixNano(); got != base.UnixNano() {
		t.Fatalf("expected oldest %d, got %d", base.UnixNano(), got)
	}

	// Move the reference past the window and trim.
	later := base.Add(window + 5*time.Second)
	if err := repo.TrimWindow(ctx, "login:1.2.3.4", window, later); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}

	count, err = repo.CountAttempts(ctx, "login:1.2.3.4", window, later)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected trimmed window, got %d attempts", count)
	}
}

func TestRateLimitRepository_RejectsBadWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, "ac:rate-limit", time.Minute)
	ctx := context.Background()

	if _, err := repo.CountAttempts(ctx, "x", 0, time.Now()); err == nil {
		t.Fatal("expected error for zero window")
	}
	if err := repo.TrimWindow(ctx, "x", -time.Second, time.Now()); err == nil {
		t.Fatal("expected error for negative window")
	}
}
