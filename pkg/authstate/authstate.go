// Package authstate derives the client-side authentication classification
// from a session and its profile, and keeps it fresh while an account waits
// for review.
package authstate

import (
	"context"
	"sync"
	"time"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
)

// Status classifies the caller for UI routing. It carries no authority; the
// server re-checks approval on every request.
type Status string

const (
	StatusGuest    Status = "guest"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusAdmin    Status = "admin"
)

// Compute derives the status from the presence of a session and the profile
// behind it. Any session whose profile is not approved classifies as pending,
// rejected accounts included: the session proves identity, and an admin may
// still reconsider, so the holding page is the right destination.
func Compute(hasSession bool, profile *domain.Profile) Status {
	if !hasSession || profile == nil {
		return StatusGuest
	}

	if profile.ApprovalStatus != domain.ApprovalApproved {
		return StatusPending
	}
	if profile.UserType == domain.UserTypeAdmin {
		return StatusAdmin
	}
	return StatusApproved
}

// FetchFunc loads the current profile for an identity.
type FetchFunc func(ctx context.Context, identityID string) (*domain.Profile, error)

// DefaultPollInterval is how often a pending account is re-checked.
const DefaultPollInterval = 8 * time.Second

// Watcher tracks the auth status of one identity, polling while the account
// is pending so approval flips the UI without a re-login.
type Watcher struct {
	fetch    FetchFunc
	interval time.Duration
	onChange func(Status)

	mu         sync.Mutex
	identityID string
	status     Status
	cancel     context.CancelFunc
	generation uint64
}

// WatcherOption customises a Watcher.
type WatcherOption func(*Watcher)

// WithPollInterval overrides the pending poll cadence.
func WithPollInterval(interval time.Duration) WatcherOption {
	return func(w *Watcher) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithOnChange registers a callback fired when the derived status changes.
func WithOnChange(fn func(Status)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// NewWatcher constructs a watcher around the fetch function.
func NewWatcher(fetch FetchFunc, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		fetch:    fetch,
		interval: DefaultPollInterval,
		status:   StatusGuest,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Status returns the last derived status.
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Start begins tracking the identity. Any previous tracking stops first and
// its in-flight fetches are discarded, so a stale response for the old
// identity can never overwrite the new one.
func (w *Watcher) Start(ctx context.Context, identityID string) {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.generation++
	gen := w.generation
	w.identityID = identityID

	pollCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()

	if identityID == "" {
		w.setStatus(gen, StatusGuest)
		cancel()
		return
	}

	go w.run(pollCtx, gen, identityID)
}

// Stop ends tracking and resets the status to guest.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.generation++
	gen := w.generation
	w.identityID = ""
	w.mu.Unlock()

	w.setStatus(gen, StatusGuest)
}

func (w *Watcher) run(ctx context.Context, gen uint64, identityID string) {
	if !w.refresh(ctx, gen, identityID) {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !w.refresh(ctx, gen, identityID) {
				return
			}
		}
	}
}

// refresh fetches the profile once and reports whether polling should
// continue. Polling stops once the account leaves the pending state.
func (w *Watcher) refresh(ctx context.Context, gen uint64, identityID string) bool {
	profile, err := w.fetch(ctx, identityID)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		// Transient fetch failure keeps the last known status.
		return true
	}

	status := Compute(true, profile)
	if !w.setStatus(gen, status) {
		return false
	}

	return status == StatusPending
}

// setStatus records the status if the generation is still current. Returns
// false when a newer Start or Stop superseded this tracking run.
func (w *Watcher) setStatus(gen uint64, status Status) bool {
	w.mu.Lock()
	if gen != w.generation {
		w.mu.Unlock()
		return false
	}

	changed := status != w.status
	w.status = status
	onChange := w.onChange
	w.mu.Unlock()

	if changed && onChange != nil {
		onChange(status)
	}

	return true
}
