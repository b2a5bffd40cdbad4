package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/port"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	ProfileID string           `json:"profile_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, profileID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		ProfileID: profileID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountCreated publishes alumni.account.created events.
func (p *EventPublisher) PublishAccountCreated(ctx context.Context, event domain.AccountCreatedEvent) error {
	payload := struct {
		ProfileID      string         `json:"profile_id"`
		Email          string         `json:"email"`
		UserType       string         `json:"user_type"`
		ApprovalStatus string         `json:"approval_status"`
		CreatedAt      time.Time      `json:"created_at"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		ProfileID:      event.ProfileID,
		Email:          event.Email,
		UserType:       string(event.UserType),
		ApprovalStatus: string(event.ApprovalStatus),
		CreatedAt:      event.CreatedAt.UTC(),
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, "alumni.account.created", event.ProfileID, event.CreatedAt, payload)
}

// PublishProfileApproved publishes alumni.profile.approved events.
func (p *EventPublisher) PublishProfileApproved(ctx context.Context, event domain.ProfileApprovedEvent) error {
	payload := struct {
		ProfileID  string         `json:"profile_id"`
		Email      string         `json:"email"`
		ApprovedBy string         `json:"approved_by"`
		ApprovedAt time.Time      `json:"approved_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		ProfileID:  event.ProfileID,
		Email:      event.Email,
		ApprovedBy: event.ApprovedBy,
		ApprovedAt: event.ApprovedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "alumni.profile.approved", event.ProfileID, event.ApprovedAt, payload)
}

// PublishProfileRejected publishes alumni.profile.rejected events.
func (p *EventPublisher) PublishProfileRejected(ctx context.Context, event domain.ProfileRejectedEvent) error {
	payload := struct {
		ProfileID  string         `json:"profile_id"`
		Email      string         `json:"email"`
		RejectedBy string         `json:"rejected_by"`
		Notes      string         `json:"notes,omitempty"`
		RejectedAt time.Time      `json:"rejected_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		ProfileID:  event.ProfileID,
		Email:      event.Email,
		RejectedBy: event.RejectedBy,
		Notes:      event.Notes,
		RejectedAt: event.RejectedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "alumni.profile.rejected", event.ProfileID, event.RejectedAt, payload)
}

// PublishPasswordReset publishes alumni.password.reset events.
func (p *EventPublisher) PublishPasswordReset(ctx context.Context, event domain.PasswordResetEvent) error {
	payload := struct {
		IdentityID string         `json:"identity_id"`
		Email      string         `json:"email"`
		ResetAt    time.Time      `json:"reset_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		IdentityID: event.IdentityID,
		Email:      event.Email,
		ResetAt:    event.ResetAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "alumni.password.reset", event.IdentityID, event.ResetAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
