// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"creatorsite/internal/cache"
	"creatorsite/internal/content"
	"creatorsite/internal/editor"
	"creatorsite/internal/markdown"
)

// Public groups the unauthenticated content endpoints. The published
// document is read through the Valkey cache first; the versioned store is
// only hit on a miss.
type Public struct {
	live      editor.LiveSource
	liveCache *cache.LiveCache
}

// NewPublic creates the public handler group. liveCache may be nil, which
// disables caching.
func NewPublic(live editor.LiveSource, liveCache *cache.LiveCache) *Public {
	return &Public{live: live, liveCache: liveCache}
}

// ContentDocument serves the published content document as JSON.
func (p *Public) ContentDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if p.liveCache != nil {
		if cached, ok := p.liveCache.Get(ctx); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Write(cached)
			return
		}
	}

	doc, err := p.live.FetchLive(ctx)
	if err != nil {
		slog.Error("fetch live content failed", "error", err)
		writeError(w, http.StatusBadGateway, "content document unavailable")
		return
	}
	data, err := content.Encode(doc)
	if err != nil {
		slog.Error("encode live content failed", "error", err)
		writeError(w, http.StatusInternalServerError, "content document unavailable")
		return
	}

	if p.liveCache != nil {
		p.liveCache.Set(ctx, data)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(data)
}

// PostHTML renders a blog post body as HTML by slug.
func (p *Public) PostHTML(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	doc, err := p.fetchDocument(r)
	if err != nil {
		slog.Error("fetch live content failed", "error", err, "slug", slugParam)
		writeError(w, http.StatusBadGateway, "content document unavailable")
		return
	}

	post := doc.PostBySlug(slugParam)
	if post == nil {
		http.NotFound(w, r)
		return
	}

	rendered, err := markdown.ToHTML(post.FullContent)
	if err != nil {
		slog.Error("render post failed", "error", err, "slug", slugParam)
		writeError(w, http.StatusInternalServerError, "post could not be rendered")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(rendered))
}

// Health reports liveness.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fetchDocument reads the published document, via cache when possible.
func (p *Public) fetchDocument(r *http.Request) (*content.Document, error) {
	ctx := r.Context()
	if p.liveCache != nil {
		if cached, ok := p.liveCache.Get(ctx); ok {
			if doc, err := content.Decode(cached); err == nil {
				return doc, nil
			}
			// A corrupt cache entry falls through to the source.
			p.liveCache.Invalidate(ctx)
		}
	}
	return p.live.FetchLive(ctx)
}
