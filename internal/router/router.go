// Package router sets up all HTTP routes and middleware chains for the
// creatorsite backend. It organizes routes into the public content surface
// and the authenticated editor API with appropriate middleware stacks.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"

	"creatorsite/internal/handlers"
	"creatorsite/internal/identity"
	"creatorsite/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. The rate limiter guards the contact endpoint
// only; the editor API is guarded by identity instead.
func New(verifier *identity.Verifier, public *handlers.Public, contact *handlers.Contact, editor *handlers.Editor, media *handlers.Media) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadIdentity(verifier))

	// Public content surface.
	r.Get("/health", public.Health)
	r.Get("/content.json", public.ContentDocument)
	r.Get("/posts/{slug}/html", public.PostHTML)
	r.Get("/blobs/*", media.Serve)

	// Contact form, rate-limited per client IP.
	contactLimiter := middleware.NewRateLimiter(5, time.Minute)
	r.Group(func(r chi.Router) {
		r.Use(contactLimiter.Middleware)
		r.Post("/contact", contact.Submit)
	})

	// Authenticated editor API.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireIdentity)

		r.Route("/editor", func(r chi.Router) {
			r.Post("/open", editor.Open)
			r.Get("/state", editor.State)
			r.Post("/edit", editor.Edit)
			r.Post("/publish", editor.Publish)
			r.Post("/discard", editor.Discard)
			r.Post("/close", editor.Close)
		})

		r.Get("/draft", editor.DraftGet)
		r.Post("/draft", editor.DraftPut)
		r.Delete("/draft", editor.DraftDelete)

		r.Post("/blobs", media.Upload)
		r.Delete("/blobs/*", media.Delete)
		r.Delete("/items", media.RemoveItem)
	})

	return r
}
