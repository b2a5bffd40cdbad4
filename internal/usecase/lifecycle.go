package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/port"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/logger"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/security"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/repository"
)

const (
	defaultLoginTimeout = 15 * time.Second
	rollbackTimeout     = 5 * time.Second

	defaultRejectionNotes = "Rejected by admin"
)

var (
	// ErrEmailTaken indicates the email already has an identity.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates email or password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoProfile indicates valid credentials with no profile row behind them.
	ErrNoProfile = errors.New("no profile for account")
	// ErrProfileNotFound indicates the referenced profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrAdminRequired indicates the caller is not an approved administrator.
	ErrAdminRequired = errors.New("administrator access required")
	// ErrLoginTimeout indicates the credential check exceeded its deadline.
	ErrLoginTimeout = errors.New("login timed out")
	// ErrPasswordPolicyViolation indicates the password is too weak.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
)

// PendingLoginError denies a session to an account still awaiting review.
type PendingLoginError struct {
	Profile *domain.Profile
}

func (e *PendingLoginError) Error() string {
	return "account pending approval"
}

// RejectedLoginError denies a session to a rejected account, carrying the
// reviewer notes for the client.
type RejectedLoginError struct {
	Notes string
}

func (e *RejectedLoginError) Error() string {
	return "account rejected"
}

// RegistrationInput carries the profile fields submitted at sign-up.
type RegistrationInput struct {
	Email          string
	Password       string
	Code           string
	FullName       string
	UserType       string
	GraduationYear *int
	Branch         *string
	Company        *string
	LinkedIn       *string
	Role           *string
}

// LifecycleService drives the account state machine: creation, approval,
// rejection, and login authorization.
type LifecycleService struct {
	profiles     port.ProfileRepository
	credentials  port.CredentialStore
	otp          *OTPService
	publisher    port.EventPublisher
	mailer       port.Mailer
	validator    *security.PasswordValidator
	log          *zap.Logger
	loginTimeout time.Duration
	now          func() time.Time
}

// NewLifecycleService constructs the lifecycle engine.
func NewLifecycleService(
	profiles port.ProfileRepository,
	credentials port.CredentialStore,
	otp *OTPService,
	publisher port.EventPublisher,
	mailer port.Mailer,
	validator *security.PasswordValidator,
	log *zap.Logger,
) *LifecycleService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LifecycleService{
		profiles:     profiles,
		credentials:  credentials,
		otp:          otp,
		publisher:    publisher,
		mailer:       mailer,
		validator:    validator,
		log:          log,
		loginTimeout: defaultLoginTimeout,
		now:          time.Now,
	}
}

// WithLoginTimeout overrides the credential check deadline.
func (s *LifecycleService) WithLoginTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.loginTimeout = timeout
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *LifecycleService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// RequestRegistrationCode checks the email is unclaimed and mails it a
// registration code.
func (s *LifecycleService) RequestRegistrationCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if _, err := s.credentials.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}

	if _, err := s.otp.RequestCode(ctx, OTPPurposeRegistration, email); err != nil {
		return err
	}

	return nil
}

// CreateAccount consumes the registration code, mints an identity, and
// creates the profile. When the profile write fails the identity is removed
// so the email can register again; the original failure is surfaced.
func (s *LifecycleService) CreateAccount(ctx context.Context, input RegistrationInput) (*domain.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, fmt.Errorf("full name is required")
	}

	if err := s.validator.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	if err := s.otp.VerifyCode(ctx, OTPPurposeRegistration, email, input.Code); err != nil {
		return nil, err
	}

	identity, err := s.credentials.CreateIdentity(ctx, email, input.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}

	userType := domain.NormalizeUserType(input.UserType)
	status := domain.ApprovalPending
	if userType == domain.UserTypeAdmin {
		status = domain.ApprovalApproved
	}

	profile := domain.Profile{
		ID:             identity.ID,
		Email:          email,
		FullName:       strings.TrimSpace(input.FullName),
		UserType:       userType,
		ApprovalStatus: status,
		IsApproved:     status == domain.ApprovalApproved,
		GraduationYear: input.GraduationYear,
		Branch:         input.Branch,
		Company:        input.Company,
		LinkedIn:       input.LinkedIn,
		Role:           input.Role,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		s.rollbackIdentity(identity.ID, email)
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.publishAccountCreated(ctx, profile)

	s.log.Info("account created",
		zap.String("profile_id", profile.ID),
		zap.String("email", logger.MaskEmail(email)),
		zap.String("user_type", string(userType)),
		zap.String("approval_status", string(status)))

	return &profile, nil
}

// rollbackIdentity removes an identity whose profile write failed. It runs
// on a detached context so a cancelled request cannot strand the identity.
func (s *LifecycleService) rollbackIdentity(identityID, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
	defer cancel()

	if err := s.credentials.DeleteIdentity(ctx, identityID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Error("identity rollback failed, manual cleanup required",
			zap.String("identity_id", identityID),
			zap.String("email", logger.MaskEmail(email)),
			zap.Error(err))
		return
	}

	s.log.Warn("rolled back identity after profile write failure",
		zap.String("identity_id", identityID),
		zap.String("email", logger.MaskEmail(email)))
}

// AuthorizeLogin verifies credentials and gates the session on approval
// state. adminOnly additionally requires an approved administrator.
func (s *LifecycleService) AuthorizeLogin(ctx context.Context, email, password string, adminOnly bool) (*domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, s.loginTimeout)
	defer cancel()

	identity, err := s.credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLoginTimeout
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	profile, err := s.loadProfile(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoProfile
		}
		return nil, err
	}

	switch profile.ApprovalStatus {
	case domain.ApprovalRejected:
		notes := defaultRejectionNotes
		if profile.AdminNotes != nil && *profile.AdminNotes != "" {
			notes = *profile.AdminNotes
		}
		return nil, &RejectedLoginError{Notes: notes}
	case domain.ApprovalPending:
		return nil, &PendingLoginError{Profile: profile}
	}

	if adminOnly && !profile.Admin() {
		return nil, ErrAdminRequired
	}

	return profile, nil
}

// GetProfile loads a profile by ID, repairing approval drift on the way out.
func (s *LifecycleService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	profile, err := s.loadProfile(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// ListProfiles returns member profiles newest first, optionally filtered by
// approval status. Only approved administrators may list.
func (s *LifecycleService) ListProfiles(ctx context.Context, actorID string, status *domain.ApprovalStatus) ([]domain.Profile, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	profiles, err := s.profiles.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	for i := range profiles {
		profiles[i].Normalize()
	}

	return profiles, nil
}

// Approve transitions a profile to APPROVED and clears reviewer notes.
// Approving an already approved profile succeeds without re-emitting the
// event or the courtesy mail.
func (s *LifecycleService) Approve(ctx context.Context, actorID, profileID string) (*domain.Profile, error) {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	alreadyApproved := profile.ApprovalStatus == domain.ApprovalApproved

	// The write still runs for an approved profile with leftover notes so
	// the stored row matches what we return.
	if !alreadyApproved || profile.AdminNotes != nil {
		if err := s.profiles.SetApproval(ctx, profile.ID, domain.ApprovalApproved, true, nil); err != nil {
			return nil, fmt.Errorf("approve profile: %w", err)
		}
	}

	profile.ApprovalStatus = domain.ApprovalApproved
	profile.IsApproved = true
	profile.AdminNotes = nil

	if alreadyApproved {
		return profile, nil
	}

	now := s.now().UTC()
	s.publishEvent(ctx, "profile approved", func(ctx context.Context) error {
		return s.publisher.PublishProfileApproved(ctx, domain.ProfileApprovedEvent{
			EventID:    uuid.NewString(),
			ProfileID:  profile.ID,
			Email:      profile.Email,
			ApprovedBy: actor.ID,
			ApprovedAt: now,
		})
	})

	s.notify(profile.Email, "Your Alumni Connect account is approved",
		fmt.Sprintf("Hi %s,\n\nYour account has been approved. You can now sign in.\n", profile.FullName))

	s.log.Info("profile approved",
		zap.String("profile_id", profile.ID),
		zap.String("approved_by", actor.ID))

	return profile, nil
}

// Reject transitions a profile to REJECTED, recording reviewer notes.
// Empty notes fall back to a default message.
func (s *LifecycleService) Reject(ctx context.Context, actorID, profileID, notes string) (*domain.Profile, error) {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = defaultRejectionNotes
	}

	if err := s.profiles.SetApproval(ctx, profile.ID, domain.ApprovalRejected, false, &notes); err != nil {
		return nil, fmt.Errorf("reject profile: %w", err)
	}

	profile.ApprovalStatus = domain.ApprovalRejected
	profile.IsApproved = false
	profile.AdminNotes = &notes

	now := s.now().UTC()
	s.publishEvent(ctx, "profile rejected", func(ctx context.Context) error {
		return s.publisher.PublishProfileRejected(ctx, domain.ProfileRejectedEvent{
			EventID:    uuid.NewString(),
			ProfileID:  profile.ID,
			Email:      profile.Email,
			RejectedBy: actor.ID,
			Notes:      notes,
			RejectedAt: now,
		})
	})

	s.notify(profile.Email, "Update on your Alumni Connect account",
		fmt.Sprintf("Hi %s,\n\nYour account could not be approved.\n\nReviewer notes: %s\n", profile.FullName, notes))

	s.log.Info("profile rejected",
		zap.String("profile_id", profile.ID),
		zap.String("rejected_by", actor.ID))

	return profile, nil
}

// loadProfile reads a profile and repairs approval drift. The repaired row
// is written back best-effort; a failed repair never blocks the read.
func (s *LifecycleService) loadProfile(ctx context.Context, id string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if profile.Normalize() {
		if err := s.profiles.SetApproval(ctx, profile.ID, profile.ApprovalStatus, profile.IsApproved, profile.AdminNotes); err != nil {
			s.log.Warn("persist approval repair",
				zap.String("profile_id", profile.ID),
				zap.Error(err))
		}
	}

	return profile, nil
}

func (s *LifecycleService) requireAdmin(ctx context.Context, actorID string) (*domain.Profile, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, ErrAdminRequired
	}

	actor, err := s.loadProfile(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAdminRequired
		}
		return nil, err
	}
	if !actor.Admin() {
		return nil, ErrAdminRequired
	}

	return actor, nil
}

func (s *LifecycleService) publishAccountCreated(ctx context.Context, profile domain.Profile) {
	s.publishEvent(ctx, "account created", func(ctx context.Context) error {
		return s.publisher.PublishAccountCreated(ctx, domain.AccountCreatedEvent{
			EventID:        uuid.NewString(),
			ProfileID:      profile.ID,
			Email:          profile.Email,
			UserType:       profile.UserType,
			ApprovalStatus: profile.ApprovalStatus,
			CreatedAt:      profile.CreatedAt,
		})
	})
}

// publishEvent emits a lifecycle event best-effort. Event delivery never
// fails the state transition that produced it.
func (s *LifecycleService) publishEvent(ctx context.Context, name string, publish func(context.Context) error) {
	if s.publisher == nil {
		return
	}
	if err := publish(ctx); err != nil {
		s.log.Warn("publish lifecycle event", zap.String("event", name), zap.Error(err))
	}
}

// notify sends a courtesy mail best-effort.
func (s *LifecycleService) notify(email, subject, body string) {
	if s.mailer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultOTPDispatchTimeout)
	defer cancel()

	if err := s.mailer.Send(ctx, port.Mail{To: email, Subject: subject, Body: body}); err != nil {
		s.log.Warn("send notification mail",
			zap.String("email", logger.MaskEmail(email)),
			zap.Error(err))
	}
}
