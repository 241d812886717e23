// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"creatorsite/internal/content"
)

// Short timings keep the debounce and hold tests fast.
const (
	testDelay = 20 * time.Millisecond
	testHold  = 40 * time.Millisecond
)

func testDoc() *content.Document {
	return &content.Document{
		CaseStudies: []content.CaseStudy{
			{Type: "standard", Title: "Launch", Brand: "Acme"},
		},
		Photos:          []content.Photo{{Src: "media/p1", Alt: "set", Name: "Set"}},
		SingletonAssets: map[string]string{"aboutPortrait": "media/portrait-1"},
	}
}

type fakeLive struct {
	mu   sync.Mutex
	doc  *content.Document
	err  error
	hits int
}

func (f *fakeLive) FetchLive(ctx context.Context) (*content.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits++
	if f.err != nil {
		return nil, f.err
	}
	return f.doc.Clone(), nil
}

type fakeDrafts struct {
	mu      sync.Mutex
	docs    map[string]*content.Document
	getErr  error
	setErr  error
	delErr  error
	sets    int
	deletes int
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{docs: make(map[string]*content.Document)}
}

func (f *fakeDrafts) Get(ctx context.Context, identity string) (*content.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.docs[identity].Clone(), nil
}

func (f *fakeDrafts) Set(ctx context.Context, identity string, doc *content.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.docs[identity] = doc.Clone()
	return nil
}

func (f *fakeDrafts) Delete(ctx context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deletes++
	delete(f.docs, identity)
	return nil
}

func (f *fakeDrafts) stored(identity string) *content.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[identity].Clone()
}

func (f *fakeDrafts) setCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

type fakePublisher struct {
	mu        sync.Mutex
	err       error
	published []*content.Document
}

func (f *fakePublisher) Publish(ctx context.Context, identity string, doc *content.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, doc.Clone())
	return nil
}

func (f *fakePublisher) last() *content.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.published) == 0 {
		return nil
	}
	return f.published[len(f.published)-1]
}

// newTestSession builds a loaded, authenticated session over fresh fakes.
func newTestSession(t *testing.T, opts Options) (*Session, *fakeLive, *fakeDrafts, *fakePublisher) {
	t.Helper()
	live := &fakeLive{doc: testDoc()}
	drafts := newFakeDrafts()
	pub := &fakePublisher{}
	if opts.AutosaveDelay == 0 {
		opts.AutosaveDelay = testDelay
	}
	if opts.SuccessHold == 0 {
		opts.SuccessHold = testHold
	}
	if opts.ErrorHold == 0 {
		opts.ErrorHold = testHold
	}
	sess := NewSession("editor@example.com", Deps{Live: live, Drafts: drafts, Publisher: pub}, opts)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return sess, live, drafts, pub
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func titlePath() content.Path {
	return content.Path{content.K("caseStudiesData"), content.I(0), content.K("title")}
}

func TestLoadWithoutDraft(t *testing.T) {
	sess, _, _, _ := newTestSession(t, Options{})

	if sess.Dirty() {
		t.Error("fresh session should not be dirty")
	}
	if !content.Equal(sess.Live(), sess.Editable()) {
		t.Error("editable should start equal to live")
	}
}

func TestLoadWithDraft(t *testing.T) {
	live := &fakeLive{doc: testDoc()}
	drafts := newFakeDrafts()

	draft := testDoc()
	draft.CaseStudies[0].Title = "Draft Title"
	drafts.docs["editor@example.com"] = draft

	sess := NewSession("editor@example.com", Deps{Live: live, Drafts: drafts, Publisher: &fakePublisher{}}, Options{})
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	// The draft is authoritative; there is no merge with live.
	if got := sess.Editable().CaseStudies[0].Title; got != "Draft Title" {
		t.Errorf("expected draft title, got %q", got)
	}
	if got := sess.Live().CaseStudies[0].Title; got != "Launch" {
		t.Errorf("live should stay at published title, got %q", got)
	}
	if !sess.Dirty() {
		t.Error("draft differing from live should read as dirty")
	}
}

func TestLoadDraftFetchErrorFallsBack(t *testing.T) {
	live := &fakeLive{doc: testDoc()}
	drafts := newFakeDrafts()
	drafts.getErr = errors.New("valkey down")

	sess := NewSession("editor@example.com", Deps{Live: live, Drafts: drafts, Publisher: &fakePublisher{}}, Options{})
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load should tolerate draft fetch failure: %v", err)
	}
	if !content.Equal(sess.Live(), sess.Editable()) {
		t.Error("editable should fall back to the live copy")
	}
}

func TestLoadLiveFailure(t *testing.T) {
	live := &fakeLive{err: errors.New("github down")}
	sess := NewSession("editor@example.com", Deps{Live: live, Drafts: newFakeDrafts(), Publisher: &fakePublisher{}}, Options{})

	if err := sess.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}

	st := sess.Snapshot()
	if st.Loading {
		t.Error("failed load should not read as still loading")
	}
	if st.LoadError == "" {
		t.Error("load error should be surfaced in the snapshot")
	}
	if err := sess.Edit(context.Background(), titlePath(), "x", false); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
}

func TestEditLeavesLiveUnchanged(t *testing.T) {
	sess, _, _, _ := newTestSession(t, Options{})
	liveBefore := sess.Live()

	if err := sess.Edit(context.Background(), titlePath(), "Spring Campaign", false); err != nil {
		t.Fatalf("edit: %v", err)
	}

	if !content.Equal(sess.Live(), liveBefore) {
		t.Error("edit must leave the live document bit-for-bit unchanged")
	}
	if got := sess.Editable().CaseStudies[0].Title; got != "Spring Campaign" {
		t.Errorf("expected edited title, got %q", got)
	}
	if !sess.Dirty() {
		t.Error("differing documents should read as dirty")
	}
}

func TestDirtyClearsWhenEditedBack(t *testing.T) {
	sess, _, _, _ := newTestSession(t, Options{})

	if err := sess.Edit(context.Background(), titlePath(), "Changed", false); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !sess.Dirty() {
		t.Fatal("expected dirty after edit")
	}
	if err := sess.Edit(context.Background(), titlePath(), "Launch", false); err != nil {
		t.Fatalf("edit back: %v", err)
	}
	if sess.Dirty() {
		t.Error("restoring the original value should clear dirtiness")
	}
}

func TestEditInvalidPath(t *testing.T) {
	sess, _, _, _ := newTestSession(t, Options{})

	badPath := content.Path{content.K("caseStudiesData"), content.I(99), content.K("title")}
	if err := sess.Edit(context.Background(), badPath, "x", false); !errors.Is(err, ErrInvalidEdit) {
		t.Errorf("expected ErrInvalidEdit, got %v", err)
	}
	if sess.Dirty() {
		t.Error("rejected edit should not dirty the session")
	}
}

func TestAutosaveDebounce(t *testing.T) {
	sess, _, drafts, _ := newTestSession(t, Options{})
	ctx := context.Background()

	// Two rapid edits within the quiescence window must collapse into a
	// single write carrying the final state.
	if err := sess.Edit(ctx, titlePath(), "Spring", false); err != nil {
		t.Fatalf("edit: %v", err)
	}
	time.Sleep(testDelay / 4)
	if err := sess.Edit(ctx, titlePath(), "Spring Campaign", false); err != nil {
		t.Fatalf("edit: %v", err)
	}

	waitFor(t, 10*testDelay, func() bool { return drafts.setCount() == 1 })

	stored := drafts.stored("editor@example.com")
	if stored == nil {
		t.Fatal("no draft stored")
	}
	if got := stored.CaseStudies[0].Title; got != "Spring Campaign" {
		t.Errorf("draft should hold the settled state, got %q", got)
	}

	// No further writes without further edits.
	time.Sleep(3 * testDelay)
	if drafts.setCount() != 1 {
		t.Errorf("expected exactly one autosave, got %d", drafts.setCount())
	}
}

func TestAutosaveSkipsCleanState(t *testing.T) {
	sess, _, drafts, _ := newTestSession(t, Options{})
	ctx := context.Background()

	// Edit away and back before the timer fires: at fire time the working
	// copy equals live, so nothing is written.
	if err := sess.Edit(ctx, titlePath(), "Changed", false); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := sess.Edit(ctx, titlePath(), "Launch", false); err != nil {
		t.Fatalf("edit back: %v", err)
	}

	time.Sleep(3 * testDelay)
	if drafts.setCount() != 0 {
		t.Errorf("clean state should not autosave, got %d writes", drafts.setCount())
	}
}

func TestAutosaveFailureIsInvisible(t *testing.T) {
	sess, _, drafts, _ := newTestSession(t, Options{})
	drafts.setErr = errors.New("valkey down")

	if err := sess.Edit(context.Background(), titlePath(), "Changed", false); err != nil {
		t.Fatalf("edit: %v", err)
	}
	time.Sleep(3 * testDelay)

	if sess.SaveStatus() != StatusIdle {
		t.Errorf("autosave failure must not touch saveStatus, got %q", sess.SaveStatus())
	}
	if !sess.Dirty() {
		t.Error("edit should survive the failed autosave")
	}
}

func TestPublishSuccess(t *testing.T) {
	sess, _, drafts, pub := newTestSession(t, Options{})
	ctx := context.Background()

	if err := sess.Edit(ctx, titlePath(), "Spring Campaign", false); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := sess.Publish(ctx); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if got := pub.last().CaseStudies[0].Title; got != "Spring Campaign" {
		t.Errorf("publisher should receive the working copy, got %q", got)
	}
	if got := sess.Live().CaseStudies[0].Title; got != "Spring Campaign" {
		t.Errorf("live should be promoted to the published state, got %q", got)
	}
	if sess.Dirty() {
		t.Error("publish should leave the session clean")
	}
	if sess.SaveStatus() != StatusOK {
		t.Errorf("expected success status, got %q", sess.SaveStatus())
	}
	if drafts.stored("editor@example.com") != nil {
		t.Error("draft should be cleared after publish")
	}

	// The success status decays back to idle after the hold.
	waitFor(t, 10*testHold, func() bool { return sess.SaveStatus() == StatusIdle })
}

func TestPublishFailureRollsBack(t *testing.T) {
	sess, _, drafts, pub := newTestSession(t, Options{})
	ctx := context.Background()
	pub.err = errors.New("409 conflict")

	if err := sess.Edit(ctx, titlePath(), "Spring Campaign", false); err != nil {
		t.Fatalf("edit: %v", err)
	}
	liveBefore := sess.Live()
	editableBefore := sess.Editable()

	if err := sess.Publish(ctx); err == nil {
		t.Fatal("expected publish error")
	}

	if !content.Equal(sess.Live(), liveBefore) {
		t.Error("failed publish must not move the baseline")
	}
	if !content.Equal(sess.Editable(), editableBefore) {
		t.Error("failed publish must not touch the working copy")
	}
	if !sess.Dirty() {
		t.Error("session should stay dirty after a failed publish")
	}
	if sess.SaveStatus() != StatusError {
		t.Errorf("expected error status, got %q", sess.SaveStatus())
	}
	if drafts.deletes != 0 {
		t.Error("failed publish must not delete the draft")
	}

	waitFor(t, 10*testHold, func() bool { return sess.SaveStatus() == StatusIdle })
}

func TestPublishSucceedsDespiteDraftCleanupFailure(t *testing.T) {
	sess, _, drafts, _ := newTestSession(t, Options{})
	ctx := context.Background()
	drafts.delErr = errors.New("valkey down")

	if err := sess.Edit(ctx, titlePath(), "Changed", false); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := sess.Publish(ctx); err != nil {
		t.Errorf("publish should succeed despite cleanup failure: %v", err)
	}
	if sess.SaveStatus() != StatusOK {
		t.Errorf("expected success status, got %q", sess.SaveStatus())
	}
}

func TestPublishUnauthenticated(t *testing.T) {
	live := &fakeLive{doc: testDoc()}
	sess := NewSession("", Deps{Live: live, Drafts: newFakeDrafts(), Publisher: &fakePublisher{}}, Options{})
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := sess.Publish(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if sess.Dirty() {
		t.Error("unauthenticated sessions are never dirty")
	}
}

func TestDiscardThenPublish(t *testing.T) {
	sess, _, drafts, pub := newTestSession(t, Options{})
	ctx := context.Background()

	if err := sess.Edit(ctx, titlePath(), "Abandoned", false); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := sess.Discard(ctx); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if sess.Dirty() {
		t.Error("discard should leave the session clean")
	}
	if drafts.deletes == 0 {
		t.Error("discard should delete the draft")
	}

	if err := sess.Publish(ctx); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// The discarded change never reaches the publisher.
	if got := pub.last().CaseStudies[0].Title; got != "Launch" {
		t.Errorf("published document should match the baseline, got %q", got)
	}
}

func TestCloseDeletesDraftAndRejectsFurtherOps(t *testing.T) {
	sess, _, drafts, _ := newTestSession(t, Options{})
	ctx := context.Background()

	if err := sess.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if drafts.deletes == 0 {
		t.Error("close should delete the draft")
	}

	if err := sess.Edit(ctx, titlePath(), "x", false); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := sess.Publish(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := sess.Close(ctx); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
}

func TestDirtyChangeCallback(t *testing.T) {
	var mu sync.Mutex
	var flips []bool
	opts := Options{
		AutosaveDelay: testDelay,
		SuccessHold:   testHold,
		ErrorHold:     testHold,
		OnDirtyChange: func(dirty bool) {
			mu.Lock()
			flips = append(flips, dirty)
			mu.Unlock()
		},
	}
	sess, _, _, _ := newTestSession(t, opts)
	ctx := context.Background()

	if err := sess.Edit(ctx, titlePath(), "Changed", false); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := sess.Edit(ctx, titlePath(), "Changed Again", false); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := sess.Discard(ctx); err != nil {
		t.Fatalf("discard: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	// One flip to dirty (the second edit does not re-fire), one back.
	if len(flips) != 2 || flips[0] != true || flips[1] != false {
		t.Errorf("unexpected callback sequence: %v", flips)
	}
}

func TestReplace(t *testing.T) {
	sess, _, _, _ := newTestSession(t, Options{})

	next := sess.Editable()
	next.Photos = append(next.Photos, content.Photo{Src: "media/p2", Alt: "new", Name: "New"})
	if err := sess.Replace(next); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if len(sess.Editable().Photos) != 2 {
		t.Error("replace should swap in the new working copy")
	}
	if !sess.Dirty() {
		t.Error("replace with a differing document should dirty the session")
	}

	// The caller keeps no alias into the session.
	next.Photos[0].Alt = "mutated"
	if sess.Editable().Photos[0].Alt == "mutated" {
		t.Error("replace must clone the incoming document")
	}
}

func TestEditPublishNow(t *testing.T) {
	sess, _, _, pub := newTestSession(t, Options{})

	err := sess.Edit(context.Background(),
		content.Path{content.K("siteSingletonAssets"), content.K("aboutPortrait")},
		"media/portrait-2", true)
	if err != nil {
		t.Fatalf("edit with publishNow: %v", err)
	}

	if pub.last() == nil {
		t.Fatal("publishNow should publish synchronously")
	}
	if got := pub.last().SingletonAssets["aboutPortrait"]; got != "media/portrait-2" {
		t.Errorf("published document should carry the edit, got %q", got)
	}
	if sess.Dirty() {
		t.Error("session should be clean after a synchronous publish")
	}
}
