package port

import (
	"context"
	"time"
)

// OTPRecord is a single-use verification code bound to an email address.
type OTPRecord struct {
	Purpose   string
	Email     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// OTPStore persists one live verification code per (purpose, email) pair.
type OTPStore interface {
	// Replace discards any prior live record for the pair and stores a new
	// one. Last code wins.
	Replace(ctx context.Context, purpose, email, code string, ttl time.Duration) (*OTPRecord, error)
	// Fetch returns the live record or repository.ErrNotFound.
	Fetch(ctx context.Context, purpose, email string) (*OTPRecord, error)
	// Delete consumes the record, enforcing single use.
	Delete(ctx context.Context, purpose, email string) error
}
