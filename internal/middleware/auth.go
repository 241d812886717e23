// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"creatorsite/internal/identity"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// IdentityKey is the context key for the verified editor identity.
	IdentityKey contextKey = "identity"
)

// LoadIdentity verifies a Bearer token, if present, and stores the
// resulting identity in the request context. The token is verified on
// every request; identities are never cached across calls. This
// middleware does NOT enforce authentication; it just loads the identity
// if one is provided and valid.
func LoadIdentity(verifier *identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ident, err := verifier.Verify(token)
			if err != nil {
				// An invalid token is treated as unauthenticated; guarded
				// routes reject it downstream.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects requests without a verified identity.
// Must be applied after LoadIdentity in the middleware chain.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromCtx(r.Context()) == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromCtx extracts the verified identity from the request context.
// Returns nil if no identity is loaded (caller is not authenticated).
func IdentityFromCtx(ctx context.Context) *identity.Identity {
	ident, _ := ctx.Value(IdentityKey).(*identity.Identity)
	return ident
}
