// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared fakes and helpers for handler tests.
// These tests run against in-memory collaborators; no external service is
// required.
package handlers

import (
	"context"
	"net/http"
	"sync"

	"creatorsite/internal/content"
	"creatorsite/internal/editor"
	"creatorsite/internal/identity"
	"creatorsite/internal/middleware"
)

const testEmail = "editor@example.com"

func testDoc() *content.Document {
	return &content.Document{
		CaseStudies: []content.CaseStudy{
			{Type: "standard", Title: "Launch", Brand: "Acme"},
		},
		Photos: []content.Photo{
			{Src: "/assets/bundled.jpg", Alt: "bundled", Name: "Bundled"},
			{Src: "media/stored-1", Alt: "stored", Name: "Stored"},
		},
		BlogPosts: []content.BlogPost{
			{Slug: "hello", Title: "Hello", FullContent: "One.\n\nTwo."},
		},
		SingletonAssets: map[string]string{"aboutPortrait": "media/portrait-1"},
	}
}

type fakeLive struct {
	mu  sync.Mutex
	doc *content.Document
	err error
}

func (f *fakeLive) FetchLive(ctx context.Context) (*content.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.doc.Clone(), nil
}

type fakeDrafts struct {
	mu   sync.Mutex
	docs map[string]*content.Document
	err  error
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{docs: make(map[string]*content.Document)}
}

func (f *fakeDrafts) Get(ctx context.Context, id string) (*content.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[id].Clone(), nil
}

func (f *fakeDrafts) Set(ctx context.Context, id string, doc *content.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.docs[id] = doc.Clone()
	return nil
}

func (f *fakeDrafts) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.docs, id)
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	err       error
	published []*content.Document
}

func (f *fakePublisher) Publish(ctx context.Context, id string, doc *content.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, doc.Clone())
	return nil
}

// newTestManager builds a session manager over fresh in-memory fakes.
func newTestManager() (*editor.Manager, *fakeLive, *fakeDrafts, *fakePublisher) {
	live := &fakeLive{doc: testDoc()}
	drafts := newFakeDrafts()
	pub := &fakePublisher{}
	m := editor.NewManager(editor.Deps{Live: live, Drafts: drafts, Publisher: pub}, editor.Options{})
	return m, live, drafts, pub
}

// withIdentity attaches a verified identity to the request context, the
// way LoadIdentity leaves it for downstream handlers.
func withIdentity(req *http.Request) *http.Request {
	ident := &identity.Identity{Email: testEmail, Name: "Alex Editor"}
	ctx := context.WithValue(req.Context(), middleware.IdentityKey, ident)
	return req.WithContext(ctx)
}
