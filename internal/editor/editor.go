// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor implements the content reconciliation engine: the state
// machine behind an editing session. It tracks the last published document
// and the working copy, derives dirtiness, autosaves drafts after input
// quiescence, and drives publish/discard/logout so that no failure can
// leave either document half-written.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"creatorsite/internal/content"
)

// Status is the publish feedback state shown to the editor.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusOK     Status = "success"
	StatusError  Status = "error"
)

// Default timings. Autosave is debounced, not throttled: every edit resets
// the delay, so only the settled state is persisted.
const (
	DefaultAutosaveDelay = 1500 * time.Millisecond
	DefaultSuccessHold   = 5 * time.Second
	DefaultErrorHold     = 3 * time.Second
)

var (
	// ErrNotAuthenticated is returned when a privileged operation is
	// attempted without an identity.
	ErrNotAuthenticated = errors.New("editor: not authenticated")

	// ErrNotLoaded is returned when an operation needs the documents and
	// the session has not finished loading them.
	ErrNotLoaded = errors.New("editor: content not loaded")

	// ErrClosed is returned for operations on a closed session.
	ErrClosed = errors.New("editor: session closed")

	// ErrInvalidEdit wraps a path or value the document rejected.
	ErrInvalidEdit = errors.New("editor: invalid edit")
)

// LiveSource fetches the canonical published content document.
type LiveSource interface {
	FetchLive(ctx context.Context) (*content.Document, error)
}

// DraftStore persists at most one working draft per identity. Get returns
// (nil, nil) when no draft exists; Set overwrites wholesale; Delete is
// idempotent.
type DraftStore interface {
	Get(ctx context.Context, identity string) (*content.Document, error)
	Set(ctx context.Context, identity string, doc *content.Document) error
	Delete(ctx context.Context, identity string) error
}

// Publisher writes the full document through the versioned content store.
type Publisher interface {
	Publish(ctx context.Context, identity string, doc *content.Document) error
}

// Deps are the collaborators injected into a session.
type Deps struct {
	Live      LiveSource
	Drafts    DraftStore
	Publisher Publisher
}

// Options tune session timings. Zero values fall back to the defaults;
// tests shrink them to keep runs fast.
type Options struct {
	AutosaveDelay time.Duration
	SuccessHold   time.Duration
	ErrorHold     time.Duration

	// OnDirtyChange, if set, is called whenever the derived dirty flag
	// flips. The environment uses it to engage or release its
	// navigation-away warning. Called without the session lock held.
	OnDirtyChange func(dirty bool)
}

// State is a point-in-time snapshot of a session, safe to hand to callers.
type State struct {
	Identity   string            `json:"identity"`
	Loading    bool              `json:"loading"`
	LoadError  string            `json:"loadError,omitempty"`
	Dirty      bool              `json:"dirty"`
	SaveStatus Status            `json:"saveStatus"`
	Editable   *content.Document `json:"editable,omitempty"`
}

// Session is one editor's reconciliation state machine. All transitions are
// serialized under a single mutex: user actions, autosave timer callbacks
// and status-hold expirations all re-check state at the time they run, so a
// slow completion can never clobber a newer edit.
type Session struct {
	mu sync.Mutex

	identity string // editor email; empty means unauthenticated
	deps     Deps

	live     *content.Document // last known published state
	editable *content.Document // working copy, never aliases live

	loading    bool
	loadErr    error
	saveStatus Status
	statusSeq  int // invalidates stale status-hold expirations
	closed     bool

	autosaveDelay time.Duration
	successHold   time.Duration
	errorHold     time.Duration

	autosaveTimer *time.Timer

	onDirtyChange func(bool)
	lastDirty     bool
}

// NewSession creates a session for the given identity. Call Load before
// reading or editing. An empty identity yields a read-only public session.
func NewSession(identity string, deps Deps, opts Options) *Session {
	if opts.AutosaveDelay == 0 {
		opts.AutosaveDelay = DefaultAutosaveDelay
	}
	if opts.SuccessHold == 0 {
		opts.SuccessHold = DefaultSuccessHold
	}
	if opts.ErrorHold == 0 {
		opts.ErrorHold = DefaultErrorHold
	}
	return &Session{
		identity:      identity,
		deps:          deps,
		saveStatus:    StatusIdle,
		autosaveDelay: opts.AutosaveDelay,
		successHold:   opts.SuccessHold,
		errorHold:     opts.ErrorHold,
		onDirtyChange: opts.OnDirtyChange,
	}
}

// Load fetches the live document and, for an authenticated session, the
// identity's draft. A present draft becomes the working copy verbatim;
// the draft is authoritative, there is no merge. An absent draft (or a
// draft fetch failure, which is non-fatal) initializes the working copy as
// an independent deep copy of the live document. A live fetch failure is
// fatal for this attempt and leaves the session in a load-error state.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.loading = true
	s.loadErr = nil
	s.mu.Unlock()

	live, err := s.deps.Live.FetchLive(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		s.loading = false
		s.loadErr = err
		s.mu.Unlock()
		return fmt.Errorf("editor: load live content: %w", err)
	}
	s.live = live
	identity := s.identity
	s.mu.Unlock()

	var draft *content.Document
	if identity != "" {
		draft, err = s.deps.Drafts.Get(ctx, identity)
		if err != nil {
			// A failed draft fetch falls back to the live copy.
			slog.Warn("draft fetch failed, editing from live copy",
				"identity", identity, "error", err)
			draft = nil
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if draft != nil {
		s.editable = draft
	} else {
		s.editable = s.live.Clone()
	}
	s.loading = false
	notify := s.updateDirtyLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// Edit applies value at path to the working copy only and schedules a
// debounced autosave. The live document is left bit-for-bit unchanged.
// When publishNow is set the edit is immediately published synchronously
// (used for set-and-save interactions like swapping a single media
// reference).
func (s *Session) Edit(ctx context.Context, path content.Path, value any, publishNow bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.loading || s.editable == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}

	next, err := content.Set(s.editable, path, value)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrInvalidEdit, err)
	}
	s.editable = next
	s.scheduleAutosaveLocked()
	notify := s.updateDirtyLocked()
	s.mu.Unlock()
	notify()

	if publishNow {
		return s.Publish(ctx)
	}
	return nil
}

// Replace swaps the entire working copy. Used by bulk operations (item
// add/remove, reorder) that compute the next document themselves. The
// document is cloned on the way in so the caller keeps no alias.
func (s *Session) Replace(doc *content.Document) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.loading || s.editable == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	s.editable = doc.Clone()
	s.scheduleAutosaveLocked()
	notify := s.updateDirtyLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// scheduleAutosaveLocked arms (or re-arms) the debounce timer. Rapid edits
// keep pushing the deadline, so only the final settled state is persisted.
func (s *Session) scheduleAutosaveLocked() {
	if s.identity == "" {
		return
	}
	if s.autosaveTimer != nil {
		s.autosaveTimer.Stop()
	}
	s.autosaveTimer = time.AfterFunc(s.autosaveDelay, s.autosave)
}

// autosave runs when the debounce timer fires. It compares the latest
// working copy against the latest published state, not the state at the
// time the edit happened, so superseded snapshots are never written.
// Failures are logged and otherwise invisible: autosave shares storage
// with publish but not its UI feedback.
func (s *Session) autosave() {
	s.mu.Lock()
	if s.closed || s.loading || s.identity == "" || s.editable == nil {
		s.mu.Unlock()
		return
	}
	if content.Equal(s.live, s.editable) {
		s.mu.Unlock()
		return
	}
	snapshot := s.editable.Clone()
	identity := s.identity
	s.mu.Unlock()

	if err := s.deps.Drafts.Set(context.Background(), identity, snapshot); err != nil {
		slog.Warn("draft autosave failed", "identity", identity, "error", err)
	}
}

// Publish sends the full working copy through the publisher. On success
// the published copy becomes the new baseline, the draft is cleared, and
// the status shows success for a fixed hold. On failure both documents are
// left exactly as they were and the status shows the error for a shorter
// hold. Requires an authenticated session.
func (s *Session) Publish(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.identity == "" {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if s.loading || s.editable == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	s.setStatusLocked(StatusSaving, 0)
	snapshot := s.editable.Clone()
	identity := s.identity
	s.mu.Unlock()

	err := s.deps.Publisher.Publish(ctx, identity, snapshot)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		// No partial apply: baseline and working copy are untouched.
		s.setStatusLocked(StatusError, s.errorHold)
		s.mu.Unlock()
		return fmt.Errorf("editor: publish: %w", err)
	}

	// Promote: the just-published document is the new baseline.
	s.live = snapshot.Clone()
	s.setStatusLocked(StatusOK, s.successHold)
	notify := s.updateDirtyLocked()
	s.mu.Unlock()
	notify()

	// Clear the draft after the baseline is promoted. A failed cleanup
	// does not demote the publish to a failure; the stale draft is
	// rewritten or removed on the next autosave or logout.
	if derr := s.deps.Drafts.Delete(ctx, identity); derr != nil {
		slog.Warn("draft cleanup after publish failed", "identity", identity, "error", derr)
	}
	return nil
}

// Discard resets the working copy to a deep copy of the current baseline
// and deletes the draft. Safe no-op when nothing has loaded yet. The
// caller is responsible for user confirmation; this is irreversible.
func (s *Session) Discard(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.live == nil {
		s.mu.Unlock()
		return nil
	}
	s.editable = s.live.Clone()
	if s.autosaveTimer != nil {
		s.autosaveTimer.Stop()
	}
	identity := s.identity
	notify := s.updateDirtyLocked()
	s.mu.Unlock()
	notify()

	if identity != "" {
		if err := s.deps.Drafts.Delete(ctx, identity); err != nil {
			slog.Warn("draft delete on discard failed", "identity", identity, "error", err)
		}
	}
	return nil
}

// Close ends the session (logout). The draft is deleted before the session
// goes away; a failed deletion is logged but never blocks the logout.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.autosaveTimer != nil {
		s.autosaveTimer.Stop()
	}
	identity := s.identity
	notify := s.setDirtyLocked(false)
	s.mu.Unlock()
	notify()

	if identity != "" {
		if err := s.deps.Drafts.Delete(ctx, identity); err != nil {
			slog.Warn("draft delete on logout failed", "identity", identity, "error", err)
		}
	}
	return nil
}

// setStatusLocked transitions the publish status and, for terminal
// statuses, arms an expiration back to idle. A newer transition
// invalidates any pending expiration.
func (s *Session) setStatusLocked(status Status, hold time.Duration) {
	s.saveStatus = status
	s.statusSeq++
	if hold <= 0 {
		return
	}
	seq := s.statusSeq
	time.AfterFunc(hold, func() {
		s.mu.Lock()
		if s.statusSeq == seq {
			s.saveStatus = StatusIdle
		}
		s.mu.Unlock()
	})
}

// Dirty reports whether the working copy differs from the baseline. False
// while anything is still loading or the session is unauthenticated.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

func (s *Session) dirtyLocked() bool {
	return s.identity != "" &&
		!s.loading &&
		s.live != nil &&
		s.editable != nil &&
		!content.Equal(s.live, s.editable)
}

// updateDirtyLocked recomputes the dirty flag and returns a function that
// fires the change callback. The caller invokes it after unlocking.
func (s *Session) updateDirtyLocked() func() {
	return s.setDirtyLocked(s.dirtyLocked())
}

func (s *Session) setDirtyLocked(dirty bool) func() {
	if dirty == s.lastDirty || s.onDirtyChange == nil {
		s.lastDirty = dirty
		return func() {}
	}
	s.lastDirty = dirty
	cb := s.onDirtyChange
	return func() { cb(dirty) }
}

// SaveStatus returns the current publish feedback status.
func (s *Session) SaveStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveStatus
}

// Live returns an independent copy of the baseline document, or nil before
// load completes.
func (s *Session) Live() *content.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return nil
	}
	return s.live.Clone()
}

// Editable returns an independent copy of the working copy, or nil before
// load completes.
func (s *Session) Editable() *content.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return nil
	}
	return s.editable.Clone()
}

// Snapshot returns the session state for the editor API.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Identity:   s.identity,
		Loading:    s.loading,
		Dirty:      s.dirtyLocked(),
		SaveStatus: s.saveStatus,
	}
	if s.loadErr != nil {
		st.LoadError = s.loadErr.Error()
	}
	if !s.loading && s.editable != nil {
		st.Editable = s.editable.Clone()
	}
	return st
}

// Identity returns the session's identity email ("" when unauthenticated).
func (s *Session) Identity() string {
	return s.identity
}
