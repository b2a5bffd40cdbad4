package authstate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		hasSession bool
		profile    *domain.Profile
		want       Status
	}{
		{name: "no session", hasSession: false, profile: nil, want: StatusGuest},
		{name: "session without profile", hasSession: true, profile: nil, want: StatusGuest},
		{
			name:       "pending member",
			hasSession: true,
			profile:    &domain.Profile{ApprovalStatus: domain.ApprovalPending, UserType: domain.UserTypeStudent},
			want:       StatusPending,
		},
		{
			name:       "approved member",
			hasSession: true,
			profile:    &domain.Profile{ApprovalStatus: domain.ApprovalApproved, UserType: domain.UserTypeAlumni},
			want:       StatusApproved,
		},
		{
			name:       "approved admin",
			hasSession: true,
			profile:    &domain.Profile{ApprovalStatus: domain.ApprovalApproved, UserType: domain.UserTypeAdmin},
			want:       StatusAdmin,
		},
		{
			// A rejected account with a live session stays on the holding
			// page; only approval changes what it can reach.
			name:       "rejected member",
			hasSession: true,
			profile:    &domain.Profile{ApprovalStatus: domain.ApprovalRejected, UserType: domain.UserTypeStudent},
			want:       StatusPending,
		},
		{
			name:       "rejected admin applicant",
			hasSession: true,
			profile:    &domain.Profile{ApprovalStatus: domain.ApprovalRejected, UserType: domain.UserTypeAdmin},
			want:       StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.hasSession, tt.profile); got != tt.want {
				t.Fatalf("Compute() = %s, want %s", got, tt.want)
			}
		})
	}
}

// profileSource serves profiles per identity id, safe for concurrent reads.
type profileSource struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
}

func newProfileSource() *profileSource {
	return &profileSource{profiles: make(map[string]*domain.Profile)}
}

func (s *profileSource) set(id string, profile *domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = profile
}

func (s *profileSource) fetch(_ context.Context, id string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[id], nil
}

func waitForStatus(t *testing.T, ch <-chan Status, want Status) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		}
	}
}

func TestWatcherPollsUntilApproved(t *testing.T) {
	source := newProfileSource()
	source.set("id-1", &domain.Profile{ID: "id-1", ApprovalStatus: domain.ApprovalPending, UserType: domain.UserTypeStudent})

	changes := make(chan Status, 16)
	watcher := NewWatcher(source.fetch,
		WithPollInterval(10*time.Millisecond),
		WithOnChange(func(s Status) { changes <- s }),
	)
	defer watcher.Stop()

	watcher.Start(context.Background(), "id-1")
	waitForStatus(t, changes, StatusPending)

	// Approval lands server-side; the poll must pick it up.
	source.set("id-1", &domain.Profile{ID: "id-1", ApprovalStatus: domain.ApprovalApproved, UserType: domain.UserTypeStudent})
	waitForStatus(t, changes, StatusApproved)

	if watcher.Status() != StatusApproved {
		t.Fatalf("expected approved, got %s", watcher.Status())
	}
}

func TestWatcherKeepsPollingThroughRejection(t *testing.T) {
	source := newProfileSource()
	source.set("id-1", &domain.Profile{ID: "id-1", ApprovalStatus: domain.ApprovalRejected, UserType: domain.UserTypeStudent})

	watcher := NewWatcher(source.fetch, WithPollInterval(10*time.Millisecond))
	defer watcher.Stop()

	watcher.Start(context.Background(), "id-1")

	deadline := time.After(2 * time.Second)
	for watcher.Status() != StatusPending {
		select {
		case <-deadline:
			t.Fatalf("rejected account should classify as pending, got %s", watcher.Status())
		case <-time.After(5 * time.Millisecond):
		}
	}

	// An admin reconsiders; the still-running poll must pick it up.
	source.set("id-1", &domain.Profile{ID: "id-1", ApprovalStatus: domain.ApprovalApproved, UserType: domain.UserTypeStudent})

	deadline = time.After(2 * time.Second)
	for watcher.Status() != StatusApproved {
		select {
		case <-deadline:
			t.Fatalf("timed out, status %s", watcher.Status())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestWatcherStopResetsToGuest(t *testing.T) {
	source := newProfileSource()
	source.set("id-1", &domain.Profile{ID: "id-1", ApprovalStatus: domain.ApprovalPending, UserType: domain.UserTypeStudent})

	changes := make(chan Status, 16)
	watcher := NewWatcher(source.fetch,
		WithPollInterval(10*time.Millisecond),
		WithOnChange(func(s Status) { changes <- s }),
	)

	watcher.Start(context.Background(), "id-1")
	waitForStatus(t, changes, StatusPending)

	watcher.Stop()
	waitForStatus(t, changes, StatusGuest)

	if watcher.Status() != StatusGuest {
		t.Fatalf("expected guest after stop, got %s", watcher.Status())
	}
}

func TestWatcherRestartDiscardsStaleIdentity(t *testing.T) {
	source := newProfileSource()
	source.set("old", &domain.Profile{ID: "old", ApprovalStatus: domain.ApprovalPending, UserType: domain.UserTypeStudent})
	source.set("new", &domain.Profile{ID: "new", ApprovalStatus: domain.ApprovalApproved, UserType: domain.UserTypeAdmin})

	watcher := NewWatcher(source.fetch, WithPollInterval(10*time.Millisecond))
	defer watcher.Stop()

	watcher.Start(context.Background(), "old")
	watcher.Start(context.Background(), "new")

	deadline := time.After(2 * time.Second)
	for watcher.Status() != StatusAdmin {
		select {
		case <-deadline:
			t.Fatalf("timed out, status %s", watcher.Status())
		case <-time.After(5 * time.Millisecond):
		}
	}

	// The old identity's pending state must never resurface.
	time.Sleep(50 * time.Millisecond)
	if watcher.Status() != StatusAdmin {
		t.Fatalf("stale identity overwrote status: %s", watcher.Status())
	}
}

func TestWatcherStartWithEmptyIdentity(t *testing.T) {
	watcher := NewWatcher(func(context.Context, string) (*domain.Profile, error) {
		t.Fatal("fetch must not be called without an identity")
		return nil, nil
	})

	watcher.Start(context.Background(), "")
	if watcher.Status() != StatusGuest {
		t.Fatalf("expected guest, got %s", watcher.Status())
	}
}
