package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type resetFixture struct {
	credentials *stubCredentialStore
	otpStore    *stubOTPStore
	mailer      *stubMailer
	publisher   *recordingPublisher
	sessions    *SessionService
	service     *PasswordResetService
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()

	credentials := newStubCredentialStore()
	otpStore := newStubOTPStore()
	mailer := &stubMailer{}
	publisher := &recordingPublisher{}

	otpService := NewOTPService(otpStore, mailer, zap.NewNop())
	sessions := newTestSessionService(t)
	service := NewPasswordResetService(credentials, otpService, sessions, publisher, nil, zap.NewNop())

	return &resetFixture{
		credentials: credentials,
		otpStore:    otpStore,
		mailer:      mailer,
		publisher:   publisher,
		sessions:    sessions,
		service:     service,
	}
}

func (f *resetFixture) seedAccount(t *testing.T, email, password string) {
	t.Helper()
	if _, err := f.credentials.CreateIdentity(context.Background(), email, password); err != nil {
		t.Fatalf("seed identity: %v", err)
	}
}

func TestRequestResetUnknownEmail(t *testing.T) {
	f := newResetFixture(t)

	err := f.service.RequestReset(context.Background(), "ghost@x.com")
	if !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
	if f.mailer.sentCount() != 0 {
		t.Fatal("no mail should go to an unknown email")
	}
}

func TestPasswordResetFullFlow(t *testing.T) {
	f := newResetFixture(t)
	f.seedAccount(t, "user@x.com", strongTestPassword)
	ctx := context.Background()

	if err := f.service.RequestReset(ctx, "user@x.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}

	code, ok := storedCode(f.otpStore, OTPPurposePasswordReset, "user@x.com")
	if !ok {
		t.Fatal("expected a live reset code")
	}

	token, err := f.service.VerifyReset(ctx, "user@x.com", code)
	if err != nil {
		t.Fatalf("VerifyReset: %v", err)
	}

	const newPassword = "An0ther!Strong#Pass456"
	if err := f.service.CompleteReset(ctx, token, newPassword); err != nil {
		t.Fatalf("CompleteReset: %v", err)
	}

	// Old password no longer verifies, the new one does.
	if _, err := f.credentials.VerifyCredentials(ctx, "user@x.com", strongTestPassword); err == nil {
		t.Fatal("old password must stop working")
	}
	if _, err := f.credentials.VerifyCredentials(ctx, "user@x.com", newPassword); err != nil {
		t.Fatalf("new password must verify: %v", err)
	}

	if len(f.publisher.resets) != 1 {
		t.Fatalf("expected 1 reset event, got %d", len(f.publisher.resets))
	}
}

func TestVerifyResetWrongCode(t *testing.T) {
	f := newResetFixture(t)
	f.seedAccount(t, "user@x.com", strongTestPassword)
	ctx := context.Background()

	if err := f.service.RequestReset(ctx, "user@x.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}

	if _, err := f.service.VerifyReset(ctx, "user@x.com", "000000"); !errors.Is(err, ErrOTPMismatch) && !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("expected OTP failure, got %v", err)
	}
}

func TestCompleteResetBadToken(t *testing.T) {
	f := newResetFixture(t)
	f.seedAccount(t, "user@x.com", strongTestPassword)

	err := f.service.CompleteReset(context.Background(), "not-a-token", "An0ther!Strong#Pass456")
	if !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
}

func TestCompleteResetWeakPassword(t *testing.T) {
	f := newResetFixture(t)
	f.seedAccount(t, "user@x.com", strongTestPassword)
	ctx := context.Background()

	token, err := f.sessions.IssueResetToken("user@x.com")
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}

	if err := f.service.CompleteReset(ctx, token, "short"); !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}
}

func TestCompleteResetIdentityRemoved(t *testing.T) {
	f := newResetFixture(t)

	token, err := f.sessions.IssueResetToken("gone@x.com")
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}

	err = f.service.CompleteReset(context.Background(), token, "An0ther!Strong#Pass456")
	if !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}
