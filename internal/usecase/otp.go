package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/port"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/logger"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/security"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/repository"
)

// OTP purposes. A code minted for one purpose never satisfies another.
const (
	OTPPurposeRegistration  = "registration"
	OTPPurposePasswordReset = "password_reset"
)

const (
	defaultOTPLength          = 6
	defaultOTPTTL             = 5 * time.Minute
	defaultOTPDispatchTimeout = 10 * time.Second
)

var (
	// ErrOTPNotFound indicates no live code exists for the pair.
	ErrOTPNotFound = errors.New("verification code not found")
	// ErrOTPExpired indicates the code exists but its lifetime elapsed.
	ErrOTPExpired = errors.New("verification code expired")
	// ErrOTPMismatch indicates the submitted code does not match the live one.
	ErrOTPMismatch = errors.New("verification code mismatch")
	// ErrOTPDispatchFailed indicates the code could not be delivered.
	ErrOTPDispatchFailed = errors.New("verification code dispatch failed")
)

// OTPService mints, delivers, and verifies single-use numeric codes.
type OTPService struct {
	store           port.OTPStore
	mailer          port.Mailer
	log             *zap.Logger
	codeLength      int
	ttl             time.Duration
	dispatchTimeout time.Duration
	now             func() time.Time
}

// OTPOption customises an OTPService.
type OTPOption func(*OTPService)

// WithOTPLength overrides the generated code length.
func WithOTPLength(length int) OTPOption {
	return func(s *OTPService) {
		if length > 0 {
			s.codeLength = length
		}
	}
}

// WithOTPTTL overrides the code lifetime.
func WithOTPTTL(ttl time.Duration) OTPOption {
	return func(s *OTPService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithOTPDispatchTimeout bounds mail delivery per request.
func WithOTPDispatchTimeout(timeout time.Duration) OTPOption {
	return func(s *OTPService) {
		if timeout > 0 {
			s.dispatchTimeout = timeout
		}
	}
}

// WithOTPClock overrides the internal clock, used in tests.
func WithOTPClock(clock func() time.Time) OTPOption {
	return func(s *OTPService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewOTPService constructs the service around a store and a mailer.
func NewOTPService(store port.OTPStore, mailer port.Mailer, log *zap.Logger, opts ...OTPOption) *OTPService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &OTPService{
		store:           store,
		mailer:          mailer,
		log:             log,
		codeLength:      defaultOTPLength,
		ttl:             defaultOTPTTL,
		dispatchTimeout: defaultOTPDispatchTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestCode mints a fresh code for the pair, replacing any live one, and
// dispatches it by mail. On a delivery failure the stored code stays live so
// a retry can re-dispatch without regenerating.
func (s *OTPService) RequestCode(ctx context.Context, purpose, email string) (*port.OTPRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if purpose != OTPPurposeRegistration && purpose != OTPPurposePasswordReset {
		return nil, fmt.Errorf("unknown otp purpose %q", purpose)
	}

	code, err := security.GenerateNumericCode(s.codeLength)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	record, err := s.store.Replace(ctx, purpose, email, code, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("store code: %w", err)
	}

	if err := s.dispatch(ctx, purpose, email, code); err != nil {
		s.log.Warn("otp dispatch failed, code remains live",
			zap.String("purpose", purpose),
			zap.String("email", logger.MaskEmail(email)),
			zap.Error(err))
		return record, fmt.Errorf("%w: %v", ErrOTPDispatchFailed, err)
	}

	s.log.Info("otp dispatched",
		zap.String("purpose", purpose),
		zap.String("email", logger.MaskEmail(email)),
		zap.Time("expires_at", record.ExpiresAt))

	return record, nil
}

// VerifyCode checks the submitted code against the live record and consumes
// it on success. Comparison is constant-time.
func (s *OTPService) VerifyCode(ctx context.Context, purpose, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return ErrOTPMismatch
	}

	record, err := s.store.Fetch(ctx, purpose, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPNotFound
		}
		return fmt.Errorf("fetch code: %w", err)
	}

	if s.now().UTC().After(record.ExpiresAt) {
		if delErr := s.store.Delete(ctx, purpose, email); delErr != nil && !errors.Is(delErr, repository.ErrNotFound) {
			s.log.Warn("discard expired otp", zap.Error(delErr))
		}
		return ErrOTPExpired
	}

	if !security.ConstantTimeEquals(record.Code, code) {
		return ErrOTPMismatch
	}

	if err := s.store.Delete(ctx, purpose, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Another request consumed it between fetch and delete.
			return ErrOTPNotFound
		}
		return fmt.Errorf("consume code: %w", err)
	}

	return nil
}

func (s *OTPService) dispatch(ctx context.Context, purpose, email, code string) error {
	if s.mailer == nil {
		return fmt.Errorf("mailer not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()

	subject := "Your Alumni Connect verification code"
	intro := "Use this code to finish creating your account."
	if purpose == OTPPurposePasswordReset {
		subject = "Your Alumni Connect password reset code"
		intro = "Use this code to reset your password."
	}

	body := fmt.Sprintf("%s\n\nVerification code: %s\n\nThe code expires in %d minutes. If you did not request it, ignore this message.",
		intro, code, int(s.ttl.Minutes()))

	return s.mailer.Send(ctx, port.Mail{To: email, Subject: subject, Body: body})
}
