package port

import (
	"context"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
)

// ProfileRepository persists member profiles and their approval state.
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	// List returns member profiles newest first, optionally filtered by
	// approval status. Admin profiles are excluded from the listing.
	List(ctx context.Context, status *domain.ApprovalStatus) ([]domain.Profile, error)
	// SetApproval updates the lifecycle fields of a profile in one write.
	SetApproval(ctx context.Context, id string, status domain.ApprovalStatus, isApproved bool, adminNotes *string) error
	Delete(ctx context.Context, id string) error
}
