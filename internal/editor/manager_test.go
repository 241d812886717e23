// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func newTestManager() (*Manager, *fakeLive, *fakeDrafts) {
	live := &fakeLive{doc: testDoc()}
	drafts := newFakeDrafts()
	m := NewManager(Deps{Live: live, Drafts: drafts, Publisher: &fakePublisher{}}, Options{
		AutosaveDelay: testDelay,
		SuccessHold:   testHold,
		ErrorHold:     testHold,
	})
	return m, live, drafts
}

func TestManagerOnePerIdentity(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	first, err := m.Open(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, err := m.Open(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if first != second {
		t.Error("reopening must join the existing session")
	}

	other, err := m.Open(ctx, "b@example.com")
	if err != nil {
		t.Fatalf("open other: %v", err)
	}
	if other == first {
		t.Error("identities must not share sessions")
	}
}

func TestManagerConcurrentOpen(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	const goroutines = 8
	sessions := make([]*Session, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := m.Open(ctx, "race@example.com")
			if err != nil {
				t.Errorf("open: %v", err)
				return
			}
			sessions[i] = sess
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if sessions[i] != sessions[0] {
			t.Fatal("concurrent opens must converge on one session")
		}
	}
}

func TestManagerLoadFailureNotRetained(t *testing.T) {
	m, live, _ := newTestManager()
	ctx := context.Background()

	live.mu.Lock()
	live.err = errors.New("github down")
	live.mu.Unlock()

	if _, err := m.Open(ctx, "a@example.com"); err == nil {
		t.Fatal("expected open to fail")
	}
	if m.Get("a@example.com") != nil {
		t.Error("failed load must not retain a session")
	}

	// The next open retries from scratch and succeeds.
	live.mu.Lock()
	live.err = nil
	live.mu.Unlock()

	if _, err := m.Open(ctx, "a@example.com"); err != nil {
		t.Errorf("retry open: %v", err)
	}
}

func TestManagerClose(t *testing.T) {
	m, _, drafts := newTestManager()
	ctx := context.Background()

	if _, err := m.Open(ctx, "a@example.com"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := m.Close(ctx, "a@example.com"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if m.Get("a@example.com") != nil {
		t.Error("closed session should be removed")
	}
	if drafts.deletes == 0 {
		t.Error("closing should delete the identity's draft")
	}

	if err := m.Close(ctx, "a@example.com"); err != nil {
		t.Errorf("closing an absent session should be a no-op, got %v", err)
	}
}
