package port

import (
	"context"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
)

// EventPublisher publishes account lifecycle events to the message bus.
type EventPublisher interface {
	PublishAccountCreated(ctx context.Context, event domain.AccountCreatedEvent) error
	PublishProfileApproved(ctx context.Context, event domain.ProfileApprovedEvent) error
	PublishProfileRejected(ctx context.Context, event domain.ProfileRejectedEvent) error
	PublishPasswordReset(ctx context.Context, event domain.PasswordResetEvent) error
}
