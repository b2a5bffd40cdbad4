package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, profileID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("profile_id", profileID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountCreated logs alumni.account.created events.
func (p *StubPublisher) PublishAccountCreated(_ context.Context, event domain.AccountCreatedEvent) error {
	payload := map[string]any{
		"profile_id":      event.ProfileID,
		"email":           event.Email,
		"user_type":       event.UserType,
		"approval_status": event.ApprovalStatus,
		"created_at":      event.CreatedAt,
		"metadata":        event.Metadata,
	}
	p.logEvent("alumni.account.created", event.ProfileID, event.CreatedAt, payload)
	return nil
}

// PublishProfileApproved logs alumni.profile.approved events.
func (p *StubPublisher) PublishProfileApproved(_ context.Context, event domain.ProfileApprovedEvent) error {
	payload := map[string]any{
		"profile_id":  event.ProfileID,
		"email":       event.Email,
		"approved_by": event.ApprovedBy,
		"approved_at": event.ApprovedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("alumni.profile.approved", event.ProfileID, event.ApprovedAt, payload)
	return nil
}

// PublishProfileRejected logs alumni.profile.rejected events.
func (p *StubPublisher) PublishProfileRejected(_ context.Context, event domain.ProfileRejectedEvent) error {
	payload := map[string]any{
		"profile_id":  event.ProfileID,
		"email":       event.Email,
		"rejected_by": event.RejectedBy,
		"notes":       event.Notes,
		"rejected_at": event.RejectedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("alumni.profile.rejected", event.ProfileID, event.RejectedAt, payload)
	return nil
}

// PublishPasswordReset logs alumni.password.reset events.
func (p *StubPublisher) PublishPasswordReset(_ context.Context, event domain.PasswordResetEvent) error {
	payload := map[string]any{
		"identity_id": event.IdentityID,
		"email":       event.Email,
		"reset_at":    event.ResetAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("alumni.password.reset", event.IdentityID, event.ResetAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
