package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestOTPRepository_ReplaceAndFetch(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewOTPRepository(client, "ac:otp")
	ctx := context.Background()

	record, err := repo.Replace(ctx, "registration", "User@X.com", "123456", 5*time.Minute)
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	if record.Email != "user@x.com" {
		t.Fatalf("expected normalized email, got %q", record.Email)
	}

	fetched, err := repo.Fetch(ctx, "registration", "user@x.com")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if fetched.Code != "123456" {
		t.Fatalf("expected code 123456, got %q", fetched.Code)
	}
	if !fetched.ExpiresAt.After(fetched.CreatedAt) {
		t.Fatal("expected expiry after creation")
	}
}

func TestOTPRepository_LastCodeWins(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewOTPRepository(client, "ac:otp")
	ctx := context.Background()

	if _, err := repo.Replace(ctx, "registration", "a@x.com", "111111", 5*time.Minute); err != nil {
		t.Fatalf("first Replace: %v", err)
	}
	if _, err := repo.Replace(ctx, "registration", "a@x.com", "222222", 5*time.Minute); err != nil {
		t.Fatalf("second Replace: %v", err)
	}

	fetched, err := repo.Fetch(ctx, "registration", "a@x.com")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if fetched.Code != "222222" {
		t.Fatalf("expected the newest code, got %q", fetched.Code)
	}
}

func TestOTPRepository_DeleteIsSingleUse(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewOTPRepository(client, "ac:otp")
	ctx := context.Background()

	if _, err := repo.Replace(ctx, "registration", "a@x.com", "123456", 5*time.Minute); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if err := repo.Delete(ctx, "registration", "a@x.com"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if err := repo.Delete(ctx, "registration", "a@x.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	if _, err := repo.Fetch(ctx, "registration", "a@x.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestOTPRepository_KeyExpires(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewOTPRepository(client, "ac:otp")
	ctx := context.Background()

	if _, err := repo.Replace(ctx, "registration", "a@x.com", "123456", time.Minute); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	server.FastForward(time.Minute + time.Second)

	if _, err := repo.Fetch(ctx, "registration", "a@x.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestOTPRepository_PurposeIsolation(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewOTPRepository(client, "ac:otp")
	ctx := context.Background()

	if _, err := repo.Replace(ctx, "registration", "a@x.com", "123456", time.Minute); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if _, err := repo.Fetch(ctx, "password_reset", "a@x.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other purpose, got %v", err)
	}
}

func TestOTPRepository_ValidatesInput(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewOTPRepository(client, "ac:otp")
	ctx := context.Background()

	if _, err := repo.Replace(ctx, "", "a@x.com", "123456", time.Minute); err == nil {
		t.Fatal("expected error for empty purpose")
	}
	if _, err := repo.Replace(ctx, "registration", "", "123456", time.Minute); err == nil {
		t.Fatal("expected error for empty email")
	}
	if _, err := repo.Replace(ctx, "registration", "a@x.com", "123456", 0); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
}
