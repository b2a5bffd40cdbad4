package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
)

const testSigningSecret = "test-signing-secret-0123456789"

func newTestSessionService(t *testing.T) *SessionService {
	t.Helper()
	svc, err := NewSessionService(testSigningSecret, 7*24*time.Hour, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}
	return svc
}

func testProfile() *domain.Profile {
	return &domain.Profile{
		ID:             "profile-1",
		Email:          "user@x.com",
		UserType:       domain.UserTypeAlumni,
		ApprovalStatus: domain.ApprovalApproved,
		IsApproved:     true,
	}
}

func TestNewSessionServiceRequiresSecret(t *testing.T) {
	if _, err := NewSessionService("   ", 0, 0); !errors.Is(err, ErrSessionSecretRequired) {
		t.Fatalf("expected ErrSessionSecretRequired, got %v", err)
	}
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	svc := newTestSessionService(t)

	token, err := svc.Issue(testProfile())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "profile-1" {
		t.Fatalf("expected profile-1, got %q", claims.UserID)
	}
	if claims.Email != "user@x.com" {
		t.Fatalf("expected user@x.com, got %q", claims.Email)
	}
	if claims.UserType != domain.UserTypeAlumni {
		t.Fatalf("expected Alumni, got %s", claims.UserType)
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	svc := newTestSessionService(t)

	token, err := svc.Issue(testProfile())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.Validate(tampered); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	svc := newTestSessionService(t)
	other, err := NewSessionService("another-secret-entirely-here", 0, 0)
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}

	token, err := other.Issue(testProfile())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Validate(token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestValidateExpiredSession(t *testing.T) {
	svc := newTestSessionService(t)
	base := time.Now().UTC()
	svc.WithClock(func() time.Time { return base })

	token, err := svc.Issue(testProfile())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc.WithClock(func() time.Time { return base.Add(7*24*time.Hour + time.Minute) })
	if _, err := svc.Validate(token); !errors.Is(err, ErrExpiredSession) {
		t.Fatalf("expected ErrExpiredSession, got %v", err)
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	svc := newTestSessionService(t)

	token, err := svc.IssueResetToken("User@X.com")
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}

	email, err := svc.ValidateResetToken(token)
	if err != nil {
		t.Fatalf("ValidateResetToken: %v", err)
	}
	if email != "user@x.com" {
		t.Fatalf("expected lowercased email, got %q", email)
	}
}

func TestResetTokenExpires(t *testing.T) {
	svc := newTestSessionService(t)
	base := time.Now().UTC()
	svc.WithClock(func() time.Time { return base })

	token, err := svc.IssueResetToken("user@x.com")
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}

	svc.WithClock(func() time.Time { return base.Add(16 * time.Minute) })
	if _, err := svc.ValidateResetToken(token); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
}

func TestSessionTokenIsNotAResetToken(t *testing.T) {
	svc := newTestSessionService(t)

	token, err := svc.Issue(testProfile())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.ValidateResetToken(token); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("session token must not authorize a reset, got %v", err)
	}
}
