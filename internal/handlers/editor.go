// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"creatorsite/internal/cache"
	"creatorsite/internal/content"
	"creatorsite/internal/editor"
	"creatorsite/internal/middleware"
	"creatorsite/internal/publish"
)

// Editor drives the editing session API. Every endpoint here sits behind
// RequireIdentity, so the identity in context is always present.
type Editor struct {
	manager   *editor.Manager
	drafts    editor.DraftStore
	liveCache *cache.LiveCache
}

// NewEditor creates the editor handler group. liveCache may be nil.
func NewEditor(manager *editor.Manager, drafts editor.DraftStore, liveCache *cache.LiveCache) *Editor {
	return &Editor{manager: manager, drafts: drafts, liveCache: liveCache}
}

// session resolves the caller's open session, or writes the error response
// and returns nil.
func (e *Editor) session(w http.ResponseWriter, r *http.Request) *editor.Session {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return nil
	}
	sess := e.manager.Get(ident.Email)
	if sess == nil {
		writeError(w, http.StatusNotFound, "No open editing session.")
		return nil
	}
	return sess
}

// Open starts (or joins) the caller's editing session and returns its state.
func (e *Editor) Open(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	sess, err := e.manager.Open(r.Context(), ident.Email)
	if err != nil {
		slog.Error("open editing session failed", "error", err, "identity", ident.Email)
		writeError(w, http.StatusBadGateway, "Could not load the content document.")
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// State returns the session snapshot: identity, dirtiness, save status and
// the working copy.
func (e *Editor) State(w http.ResponseWriter, r *http.Request) {
	sess := e.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// editRequest is the wire shape of a single edit.
type editRequest struct {
	Path       content.Path `json:"path"`
	Value      any          `json:"value"`
	PublishNow bool         `json:"publishNow"`
}

// Edit applies one value at one path to the working copy.
func (e *Editor) Edit(w http.ResponseWriter, r *http.Request) {
	sess := e.session(w, r)
	if sess == nil {
		return
	}

	var req editRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := sess.Edit(r.Context(), req.Path, req.Value, req.PublishNow); err != nil {
		e.writeEditorError(w, err)
		return
	}
	if req.PublishNow && e.liveCache != nil {
		e.liveCache.Invalidate(r.Context())
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// Publish commits the full working copy through the versioned store.
func (e *Editor) Publish(w http.ResponseWriter, r *http.Request) {
	sess := e.session(w, r)
	if sess == nil {
		return
	}

	if err := sess.Publish(r.Context()); err != nil {
		e.writeEditorError(w, err)
		return
	}
	if e.liveCache != nil {
		e.liveCache.Invalidate(r.Context())
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// Discard resets the working copy to the published baseline and deletes the
// draft. The client asks for confirmation; the server does not.
func (e *Editor) Discard(w http.ResponseWriter, r *http.Request) {
	sess := e.session(w, r)
	if sess == nil {
		return
	}

	if err := sess.Discard(r.Context()); err != nil {
		e.writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// Close ends the session (logout) and deletes the draft best-effort.
func (e *Editor) Close(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	if err := e.manager.Close(r.Context(), ident.Email); err != nil {
		slog.Warn("close editing session failed", "error", err, "identity", ident.Email)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DraftGet returns the caller's stored draft document, or 404.
func (e *Editor) DraftGet(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	doc, err := e.drafts.Get(r.Context(), ident.Email)
	if err != nil {
		slog.Error("draft fetch failed", "error", err, "identity", ident.Email)
		writeError(w, http.StatusBadGateway, "Draft store unavailable.")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "No draft stored.")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DraftPut overwrites the caller's stored draft with the request body.
func (e *Editor) DraftPut(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var doc content.Document
	if err := decodeJSON(w, r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid draft document.")
		return
	}
	if err := e.drafts.Set(r.Context(), ident.Email, &doc); err != nil {
		slog.Error("draft store failed", "error", err, "identity", ident.Email)
		writeError(w, http.StatusBadGateway, "Draft store unavailable.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DraftDelete removes the caller's stored draft. Deleting an absent draft
// succeeds.
func (e *Editor) DraftDelete(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	if err := e.drafts.Delete(r.Context(), ident.Email); err != nil {
		slog.Error("draft delete failed", "error", err, "identity", ident.Email)
		writeError(w, http.StatusBadGateway, "Draft store unavailable.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// writeEditorError maps session errors onto HTTP statuses. Publish
// conflicts and upstream failures keep the server-provided message so the
// editor can surface it.
func (e *Editor) writeEditorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "Authentication required.")
	case errors.Is(err, editor.ErrNotLoaded):
		writeError(w, http.StatusConflict, "Content is still loading.")
	case errors.Is(err, editor.ErrClosed):
		writeError(w, http.StatusGone, "Editing session is closed.")
	case errors.Is(err, editor.ErrInvalidEdit):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, publish.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("editor operation failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
