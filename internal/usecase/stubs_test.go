package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/port"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/repository"
)

const strongTestPassword = "Sup3r!SecurePass#7890"

type stubOTPStore struct {
	mu      sync.Mutex
	records map[string]*port.OTPRecord
	now     func() time.Time

	replaceErr error
	fetchErr   error
	deleteErr  error

	replaceCalls int
	deleteCalls  int
}

func newStubOTPStore() *stubOTPStore {
	return &stubOTPStore{
		records: make(map[string]*port.OTPRecord),
		now:     time.Now,
	}
}

func (s *stubOTPStore) key(purpose, email string) string {
	return purpose + ":" + strings.ToLower(email)
}

func (s *stubOTPStore) Replace(_ context.Context, purpose, email, code string, ttl time.Duration) (*port.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceCalls++
	if s.replaceErr != nil {
		return nil, s.replaceErr
	}

	now := s.now().UTC()
	record := &port.OTPRecord{
		Purpose:   purpose,
		Email:     strings.ToLower(email),
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.records[s.key(purpose, email)] = record
	return record, nil
}

func (s *stubOTPStore) Fetch(_ context.Context, purpose, email string) (*port.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	record, ok := s.records[s.key(purpose, email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *stubOTPStore) Delete(_ context.Context, purpose, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	key := s.key(purpose, email)
	if _, ok := s.records[key]; !ok {
		return repository.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

type stubMailer struct {
	mu      sync.Mutex
	sent    []port.Mail
	sendErr error
}

func (m *stubMailer) Send(_ context.Context, mail port.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *stubMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *stubMailer) lastMail() (port.Mail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return port.Mail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

type stubProfileRepository struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile

	createErr      error
	createCalls    int
	setApprovalErr error
}

func newStubProfileRepository() *stubProfileRepository {
	return &stubProfileRepository{profiles: make(map[string]*domain.Profile)}
}

func (r *stubProfileRepository) Create(_ context.Context, profile domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.profiles[profile.ID]; ok {
		return repository.ErrDuplicate
	}
	copied := profile
	r.profiles[profile.ID] = &copied
	return nil
}

func (r *stubProfileRepository) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *stubProfileRepository) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, profile := range r.profiles {
		if profile.Email == strings.ToLower(email) {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubProfileRepository) List(_ context.Context, status *domain.ApprovalStatus) ([]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Profile
	for _, profile := range r.profiles {
		if profile.UserType == domain.UserTypeAdmin {
			continue
		}
		if status != nil && profile.ApprovalStatus != *status {
			continue
		}
		out = append(out, *profile)
	}
	return out, nil
}

func (r *stubProfileRepository) SetApproval(_ context.Context, id string, status domain.ApprovalStatus, isApproved bool, adminNotes *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setApprovalErr != nil {
		return r.setApprovalErr
	}
	profile, ok := r.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	profile.ApprovalStatus = status
	profile.IsApproved = isApproved
	profile.AdminNotes = adminNotes
	return nil
}

func (r *stubProfileRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.profiles, id)
	return nil
}

func (r *stubProfileRepository) put(profile domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := profile
	r.profiles[profile.ID] = &copied
}

type stubCredentialStore struct {
	mu         sync.Mutex
	identities map[string]*domain.Identity
	passwords  map[string]string

	createErr    error
	deleteErr    error
	deleteCalls  int
	lastDeleted  string
	verifySlowBy time.Duration
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{
		identities: make(map[string]*domain.Identity),
		passwords:  make(map[string]string),
	}
}

func (s *stubCredentialStore) CreateIdentity(_ context.Context, email, password string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	email = strings.ToLower(email)
	for _, identity := range s.identities {
		if identity.Email == email {
			return nil, repository.ErrDuplicate
		}
	}
	identity := &domain.Identity{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	s.identities[identity.ID] = identity
	s.passwords[identity.ID] = password
	copied := *identity
	return &copied, nil
}

func (s *stubCredentialStore) VerifyCredentials(ctx context.Context, email, password string) (*domain.Identity, error) {
	if s.verifySlowBy > 0 {
		select {
		case <-time.After(s.verifySlowBy):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(email)
	for id, identity := range s.identities {
		if identity.Email == email && s.passwords[id] == password {
			copied := *identity
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubCredentialStore) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(email)
	for _, identity := range s.identities {
		if identity.Email == email {
			copied := *identity
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubCredentialStore) UpdatePassword(_ context.Context, id, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[id]; !ok {
		return repository.ErrNotFound
	}
	s.passwords[id] = newPassword
	return nil
}

func (s *stubCredentialStore) DeleteIdentity(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	s.lastDeleted = id
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.identities[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.identities, id)
	delete(s.passwords, id)
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	created  []domain.AccountCreatedEvent
	approved []domain.ProfileApprovedEvent
	rejected []domain.ProfileRejectedEvent
	resets   []domain.PasswordResetEvent

	publishErr error
}

func (p *recordingPublisher) PublishAccountCreated(_ context.Context, event domain.AccountCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.created = append(p.created, event)
	return nil
}

func (p *recordingPublisher) PublishProfileApproved(_ context.Context, event domain.ProfileApprovedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.approved = append(p.approved, event)
	return nil
}

func (p *recordingPublisher) PublishProfileRejected(_ context.Context, event domain.ProfileRejectedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.rejected = append(p.rejected, event)
	return nil
}

func (p *recordingPublisher) PublishPasswordReset(_ context.Context, event domain.PasswordResetEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.resets = append(p.resets, event)
	return nil
}

// storedCode reads the live code directly from the stub store.
func storedCode(store *stubOTPStore, purpose, email string) (string, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	record, ok := store.records[store.key(purpose, email)]
	if !ok {
		return "", false
	}
	return record.Code, true
}

var errBoom = errors.New("boom")

var _ port.OTPStore = (*stubOTPStore)(nil)
var _ port.Mailer = (*stubMailer)(nil)
var _ port.ProfileRepository = (*stubProfileRepository)(nil)
var _ port.CredentialStore = (*stubCredentialStore)(nil)
var _ port.EventPublisher = (*recordingPublisher)(nil)
