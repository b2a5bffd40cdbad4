package port

import (
	"context"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
)

// CredentialStore is the capability boundary around the identity provider:
// it mints, verifies, and removes login credentials. The lifecycle engine
// never reads password material through this interface.
type CredentialStore interface {
	// CreateIdentity mints a credential for the email. Returns
	// repository.ErrDuplicate when the email is already registered.
	CreateIdentity(ctx context.Context, email, password string) (*domain.Identity, error)
	// VerifyCredentials checks email+password, returning the identity on
	// success and repository.ErrNotFound when no identity matches.
	VerifyCredentials(ctx context.Context, email, password string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	UpdatePassword(ctx context.Context, id, newPassword string) error
	// DeleteIdentity removes the credential record. Used by the account
	// creation rollback path.
	DeleteIdentity(ctx context.Context, id string) error
}
