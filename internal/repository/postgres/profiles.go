package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/port"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/repository"
)

const profilesTable = "alumni.profiles"

var profileColumns = []string{
	"id",
	"email",
	"full_name",
	"user_type",
	"approval_status",
	"is_approved",
	"admin_notes",
	"graduation_year",
	"branch",
	"company",
	"linkedin",
	"role",
	"created_at",
}

// ProfileRepository implements port.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProfileRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewProfileRepository(exec pgExecutor) *ProfileRepository {
	return &ProfileRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new profile row.
func (r *ProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	query := r.builder.Insert(profilesTable).
		Columns(profileColumns...).
		Values(
			profile.ID,
			profile.Email,
			profile.FullName,
			profile.UserType,
			profile.ApprovalStatus,
			profile.IsApproved,
			profile.AdminNotes,
			profile.GraduationYear,
			profile.Branch,
			profile.Company,
			profile.LinkedIn,
			profile.Role,
			profile.CreatedAt,
		)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert profile sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert profile: %w", translateError(err))
	}

	return nil
}

// GetByID retrieves a profile by identity id.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a profile by email address.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

func (r *ProfileRepository) getOne(ctx context.Context, where squirrel.Eq) (*domain.Profile, error) {
	stmt, args, err := r.builder.
		Select(profileColumns...).
		From(profilesTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	profile, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	return profile, nil
}

// List returns member profiles newest first, optionally filtered by status.
// Admin rows are excluded: the dashboard reviews members only.
func (r *ProfileRepository) List(ctx context.Context, status *domain.ApprovalStatus) ([]domain.Profile, error) {
	query := r.builder.
		Select(profileColumns...).
		From(profilesTable).
		Where(squirrel.NotEq{"user_type": domain.UserTypeAdmin}).
		OrderBy("created_at DESC")

	if status != nil {
		query = query.Where(squirrel.Eq{"approval_status": *status})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list profiles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// SetApproval updates the lifecycle fields of a profile in a single write.
func (r *ProfileRepository) SetApproval(ctx context.Context, id string, status domain.ApprovalStatus, isApproved bool, adminNotes *string) error {
	stmt, args, err := r.builder.
		Update(profilesTable).
		Set("approval_status", status).
		Set("is_approved", isApproved).
		Set("admin_notes", adminNotes).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update approval sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a profile row. Only the account-deletion cleanup path uses this.
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Delete(profilesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete profile sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var (
		profile        domain.Profile
		adminNotes     sql.NullString
		graduationYear sql.NullInt64
		branch         sql.NullString
		company        sql.NullString
		linkedin       sql.NullString
		role           sql.NullString
	)

	if err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.UserType,
		&profile.ApprovalStatus,
		&profile.IsApproved,
		&adminNotes,
		&graduationYear,
		&branch,
		&company,
		&linkedin,
		&role,
		&profile.CreatedAt,
	); err != nil {
		return nil, err
	}

	if adminNotes.Valid {
		v := adminNotes.String
		profile.AdminNotes = &v
	}
	if graduationYear.Valid {
		v := int(graduationYear.Int64)
		profile.GraduationYear = &v
	}
	if branch.Valid {
		v := branch.String
		profile.Branch = &v
	}
	if company.Valid {
		v := company.String
		profile.Company = &v
	}
	if linkedin.Valid {
		v := linkedin.String
		profile.LinkedIn = &v
	}
	if role.Valid {
		v := role.String
		profile.Role = &v
	}

	return &profile, nil
}

var _ port.ProfileRepository = (*ProfileRepository)(nil)
