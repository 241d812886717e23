// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"creatorsite/internal/editor"
)

// openManagerSession opens a session directly on the manager for media
// handler tests.
func openManagerSession(t *testing.T, m *editor.Manager) *editor.Session {
	t.Helper()
	sess, err := m.Open(context.Background(), testEmail)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return sess
}

func TestUploadWithoutStorage(t *testing.T) {
	m, _, _, _ := newTestManager()
	h := NewMedia(nil, nil, m)

	rec := httptest.NewRecorder()
	h.Upload(rec, withIdentity(httptest.NewRequest(http.MethodPost, "/api/blobs", nil)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without storage, got %d", rec.Code)
	}
}

func TestRemoveItemWithoutSession(t *testing.T) {
	m, _, _, _ := newTestManager()
	h := NewMedia(nil, nil, m)

	body := strings.NewReader(`{"path":["photosData",0]}`)
	rec := httptest.NewRecorder()
	h.RemoveItem(rec, withIdentity(httptest.NewRequest(http.MethodDelete, "/api/items", body)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a session, got %d", rec.Code)
	}
}

func TestRemoveItemWithStaticReference(t *testing.T) {
	m, _, _, _ := newTestManager()
	h := NewMedia(nil, nil, m)
	openManagerSession(t, m)

	// photosData[0] references a bundled static asset; storage is never
	// touched and removal proceeds even with storage unconfigured.
	body := strings.NewReader(`{"path":["photosData",0]}`)
	rec := httptest.NewRecorder()
	h.RemoveItem(rec, withIdentity(httptest.NewRequest(http.MethodDelete, "/api/items", body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var st editor.State
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(st.Editable.Photos) != 1 {
		t.Fatalf("expected 1 photo left, got %d", len(st.Editable.Photos))
	}
	if st.Editable.Photos[0].Name != "Stored" {
		t.Errorf("wrong survivor: %q", st.Editable.Photos[0].Name)
	}
	if !st.Dirty {
		t.Error("removal should dirty the session")
	}
}

func TestRemoveItemBlockedWhenStoredDeleteImpossible(t *testing.T) {
	m, _, _, _ := newTestManager()
	h := NewMedia(nil, nil, m)
	sess := openManagerSession(t, m)

	// photosData[1] owns a storage-key reference. With storage down the
	// removal must be aborted and the document left untouched.
	body := strings.NewReader(`{"path":["photosData",1]}`)
	rec := httptest.NewRecorder()
	h.RemoveItem(rec, withIdentity(httptest.NewRequest(http.MethodDelete, "/api/items", body)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	if len(sess.Editable().Photos) != 2 {
		t.Error("aborted removal must leave the item in place")
	}
	if sess.Dirty() {
		t.Error("aborted removal must not dirty the session")
	}
}

func TestRemoveItemInvalidPath(t *testing.T) {
	m, _, _, _ := newTestManager()
	h := NewMedia(nil, nil, m)
	openManagerSession(t, m)

	body := strings.NewReader(`{"path":["photosData",42]}`)
	rec := httptest.NewRecorder()
	h.RemoveItem(rec, withIdentity(httptest.NewRequest(http.MethodDelete, "/api/items", body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an absent item, got %d", rec.Code)
	}
}

func TestServeWithoutStorage(t *testing.T) {
	m, _, _, _ := newTestManager()
	h := NewMedia(nil, nil, m)

	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest(http.MethodGet, "/blobs/media/abc", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without storage, got %d", rec.Code)
	}
}
