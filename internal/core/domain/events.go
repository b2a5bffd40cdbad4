package domain

import "time"

// AccountCreatedEvent is published after an identity and its profile are
// both persisted.
type AccountCreatedEvent struct {
	EventID        string
	ProfileID      string
	Email          string
	UserType       UserType
	ApprovalStatus ApprovalStatus
	CreatedAt      time.Time
	Metadata       map[string]any
}

// ProfileApprovedEvent is published when an administrator approves a profile.
type ProfileApprovedEvent struct {
	EventID    string
	ProfileID  string
	Email      string
	ApprovedBy string
	ApprovedAt time.Time
	Metadata   map[string]any
}

// ProfileRejectedEvent is published when an administrator rejects a profile.
type ProfileRejectedEvent struct {
	EventID    string
	ProfileID  string
	Email      string
	RejectedBy string
	Notes      string
	RejectedAt time.Time
	Metadata   map[string]any
}

// PasswordResetEvent is published after a password reset completes.
type PasswordResetEvent struct {
	EventID    string
	IdentityID string
	Email      string
	ResetAt    time.Time
	Metadata   map[string]any
}
