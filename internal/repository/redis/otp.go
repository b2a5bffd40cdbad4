package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/port"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/repository"
)

const (
	defaultOTPPrefix = "otp"

	fieldCode      = "code"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
)

// OTPRepository persists verification codes in Redis, one live record per
// (purpose, email) pair.
type OTPRepository struct {
	client *red.Client
	prefix string
	now    func() time.Time
}

// NewOTPRepository constructs a new OTP repository with the provided Redis client and key prefix.
func NewOTPRepository(client *red.Client, keyPrefix string) *OTPRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultOTPPrefix
	}

	return &OTPRepository{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// Replace discards any live record for the pair and stores a new one.
// The delete and set run inside one transactional pipeline so a concurrent
// request for the same email observes either the old record or the new,
// never a torn one.
func (r *OTPRepository) Replace(ctx context.Context, purpose, email, code string, ttl time.Duration) (*port.OTPRecord, error) {
	purpose = strings.TrimSpace(purpose)
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)

	switch {
	case purpose == "":
		return nil, errors.New("purpose is required")
	case email == "":
		return nil, errors.New("email is required")
	case code == "":
		return nil, errors.New("code is required")
	case ttl <= 0:
		return nil, errors.New("ttl must be positive")
	}

	now := r.now().UTC()
	expiresAt := now.Add(ttl)

	key := r.key(purpose, email)

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		fieldCode:      code,
		fieldCreatedAt: strconv.FormatInt(now.Unix(), 10),
		fieldExpiresAt: strconv.FormatInt(expiresAt.Unix(), 10),
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis replace otp: %w", err)
	}

	return &port.OTPRecord{
		Purpose:   purpose,
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}, nil
}

// Fetch retrieves the live OTP record for the provided purpose and email.
func (r *OTPRepository) Fetch(ctx context.Context, purpose, email string) (*port.OTPRecord, error) {
	purpose = strings.TrimSpace(purpose)
	email = normalizeEmail(email)
	key := r.key(purpose, email)
	if key == "" {
		return nil, errors.New("purpose and email are required")
	}

	values, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall otp: %w", err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound
	}

	code := strings.TrimSpace(values[fieldCode])
	if code == "" {
		return nil, repository.ErrNotFound
	}

	createdAt, err := parseUnix(values[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	expiresAt, err := parseUnix(values[fieldExpiresAt])
	if err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}

	return &port.OTPRecord{
		Purpose:   purpose,
		Email:     email,
		Code:      code,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Delete removes the OTP entry, enforcing single-use semantics.
func (r *OTPRepository) Delete(ctx context.Context, purpose, email string) error {
	key := r.key(strings.TrimSpace(purpose), normalizeEmail(email))
	if key == "" {
		return errors.New("purpose and email are required")
	}

	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis delete otp: %w", err)
	}
	if deleted == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// WithClock overrides the internal clock, used in tests.
func (r *OTPRepository) WithClock(clock func() time.Time) {
	if clock != nil {
		r.now = clock
	}
}

func (r *OTPRepository) key(purpose, email string) string {
	if purpose == "" || email == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", r.prefix, purpose, email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseUnix(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, errors.New("timestamp is empty")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(v, 0).UTC(), nil
}

var _ port.OTPStore = (*OTPRepository)(nil)
