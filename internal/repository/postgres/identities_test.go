package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/security"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/repository"
)

func TestIdentityStore_CreateIdentityNormalizesEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewIdentityStore(mock)

	mock.ExpectExec(`INSERT INTO alumni\.identities`).
		WithArgs(pgxmock.AnyArg(), "user@x.com", pgxmock.AnyArg(), true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	identity, err := store.CreateIdentity(context.Background(), "  User@X.com ", "Sup3r!SecurePass#7890")
	if err != nil {
		t.Fatalf("CreateIdentity returned error: %v", err)
	}
	if identity.Email != "user@x.com" {
		t.Fatalf("expected normalized email, got %q", identity.Email)
	}
	if identity.PasswordHash == "" || identity.PasswordHash == "Sup3r!SecurePass#7890" {
		t.Fatal("password must be stored hashed")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIdentityStore_VerifyCredentials(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewIdentityStore(mock)

	hash, err := security.HashPassword("Sup3r!SecurePass#7890")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	columns := []string{"id", "email", "password_hash", "email_verified", "created_at"}
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM alumni\.identities WHERE email = \$1`).
		WithArgs("user@x.com").
		WillReturnRows(pgxmock.NewRows(columns).AddRow("id-1", "user@x.com", hash, true, now))

	identity, err := store.VerifyCredentials(context.Background(), "user@x.com", "Sup3r!SecurePass#7890")
	if err != nil {
		t.Fatalf("VerifyCredentials returned error: %v", err)
	}
	if identity.ID != "id-1" {
		t.Fatalf("expected id-1, got %q", identity.ID)
	}

	// Wrong password is indistinguishable from a missing identity.
	mock.ExpectQuery(`SELECT .+ FROM alumni\.identities WHERE email = \$1`).
		WithArgs("user@x.com").
		WillReturnRows(pgxmock.NewRows(columns).AddRow("id-1", "user@x.com", hash, true, now))

	if _, err := store.VerifyCredentials(context.Background(), "user@x.com", "wrong-password"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIdentityStore_DeleteIdentityMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewIdentityStore(mock)

	mock.ExpectExec(`DELETE FROM alumni\.identities WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := store.DeleteIdentity(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
