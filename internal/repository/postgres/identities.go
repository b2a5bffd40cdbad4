package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/port"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/security"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/repository"
)

const identitiesTable = "alumni.identities"

// IdentityStore implements port.CredentialStore on PostgreSQL with
// Argon2id password hashes. It stands in for the hosted identity
// provider behind the same capability boundary.
type IdentityStore struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewIdentityStore constructs a credential store backed by any executor
// that satisfies pgExecutor.
func NewIdentityStore(exec pgExecutor) *IdentityStore {
	return &IdentityStore{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *IdentityStore) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// CreateIdentity mints a credential record for the email.
func (s *IdentityStore) CreateIdentity(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	identity := domain.Identity{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: true,
		CreatedAt:     s.now().UTC(),
	}

	stmt, args, err := s.builder.Insert(identitiesTable).
		Columns("id", "email", "password_hash", "email_verified", "created_at").
		Values(identity.ID, identity.Email, identity.PasswordHash, identity.EmailVerified, identity.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert identity sql: %w", err)
	}

	if _, err := s.exec.Exec(ctx, stmt, args...); err != nil {
		return nil, translateError(err)
	}

	return &identity, nil
}

// VerifyCredentials checks email+password and returns the identity on success.
func (s *IdentityStore) VerifyCredentials(ctx context.Context, email, password string) (*domain.Identity, error) {
	identity, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := security.VerifyPassword(password, identity.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, repository.ErrNotFound
	}

	return identity, nil
}

// GetByEmail retrieves a credential record by email.
func (s *IdentityStore) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	stmt, args, err := s.builder.
		Select("id", "email", "password_hash", "email_verified", "created_at").
		From(identitiesTable).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select identity sql: %w", err)
	}

	var identity domain.Identity
	row := s.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.EmailVerified,
		&identity.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan identity: %w", err)
	}

	return &identity, nil
}

// UpdatePassword replaces the stored hash for the identity.
func (s *IdentityStore) UpdatePassword(ctx context.Context, id, newPassword string) error {
	if newPassword == "" {
		return errors.New("password is required")
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	stmt, args, err := s.builder.
		Update(identitiesTable).
		Set("password_hash", hash).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	tag, err := s.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteIdentity removes the credential record.
func (s *IdentityStore) DeleteIdentity(ctx context.Context, id string) error {
	stmt, args, err := s.builder.
		Delete(identitiesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete identity sql: %w", err)
	}

	tag, err := s.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.CredentialStore = (*IdentityStore)(nil)
