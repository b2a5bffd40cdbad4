package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/port"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/logger"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/security"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/repository"
)

// ErrIdentityNotFound indicates no account exists for the email.
var ErrIdentityNotFound = errors.New("no account for email")

// PasswordResetService runs the OTP-gated password reset flow.
type PasswordResetService struct {
	credentials port.CredentialStore
	otp         *OTPService
	sessions    *SessionService
	publisher   port.EventPublisher
	validator   *security.PasswordValidator
	log         *zap.Logger
}

// NewPasswordResetService constructs the service.
func NewPasswordResetService(
	credentials port.CredentialStore,
	otp *OTPService,
	sessions *SessionService,
	publisher port.EventPublisher,
	validator *security.PasswordValidator,
	log *zap.Logger,
) *PasswordResetService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordResetService{
		credentials: credentials,
		otp:         otp,
		sessions:    sessions,
		publisher:   publisher,
		validator:   validator,
		log:         log,
	}
}

// RequestReset mails a reset code to the email, provided an account exists.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if _, err := s.credentials.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrIdentityNotFound
		}
		return fmt.Errorf("lookup identity: %w", err)
	}

	if _, err := s.otp.RequestCode(ctx, OTPPurposePasswordReset, email); err != nil {
		return err
	}

	return nil
}

// VerifyReset consumes the reset code and returns a short-lived token
// authorizing the password change.
func (s *PasswordResetService) VerifyReset(ctx context.Context, email, code string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.otp.VerifyCode(ctx, OTPPurposePasswordReset, email, code); err != nil {
		return "", err
	}

	token, err := s.sessions.IssueResetToken(email)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}

	return token, nil
}

// CompleteReset validates the reset token and writes the new password for
// the email it is bound to.
func (s *PasswordResetService) CompleteReset(ctx context.Context, resetToken, newPassword string) error {
	email, err := s.sessions.ValidateResetToken(resetToken)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	identity, err := s.credentials.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrIdentityNotFound
		}
		return fmt.Errorf("lookup identity: %w", err)
	}

	if err := s.credentials.UpdatePassword(ctx, identity.ID, newPassword); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if s.publisher != nil {
		if pubErr := s.publisher.PublishPasswordReset(ctx, domain.PasswordResetEvent{
			EventID:    uuid.NewString(),
			IdentityID: identity.ID,
			Email:      email,
			ResetAt:    time.Now().UTC(),
		}); pubErr != nil {
			s.log.Warn("publish password reset event", zap.Error(pubErr))
		}
	}

	s.log.Info("password reset completed",
		zap.String("identity_id", identity.ID),
		zap.String("email", logger.MaskEmail(email)))

	return nil
}
