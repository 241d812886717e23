// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"sync"
)

// Manager owns the live editing sessions, at most one per identity. The
// one-session guarantee mirrors the one-draft-per-identity rule of the
// draft store: a second open for the same identity joins the existing
// session instead of forking a competing working copy.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	deps     Deps
	opts     Options
}

// NewManager creates a session manager with shared collaborator deps.
func NewManager(deps Deps, opts Options) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		deps:     deps,
		opts:     opts,
	}
}

// Open returns the identity's session, creating and loading one if none
// exists. When the load fails the session is not retained, so the next
// Open retries from scratch.
func (m *Manager) Open(ctx context.Context, identity string) (*Session, error) {
	m.mu.Lock()
	if sess, ok := m.sessions[identity]; ok {
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	sess := NewSession(identity, m.deps, m.opts)
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have opened a session while we were loading;
	// the first one registered wins.
	if existing, ok := m.sessions[identity]; ok {
		return existing, nil
	}
	m.sessions[identity] = sess
	return sess, nil
}

// Get returns the identity's session or nil.
func (m *Manager) Get(identity string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[identity]
}

// Close ends and removes the identity's session. No-op if none exists.
func (m *Manager) Close(ctx context.Context, identity string) error {
	m.mu.Lock()
	sess, ok := m.sessions[identity]
	delete(m.sessions, identity)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return sess.Close(ctx)
}
