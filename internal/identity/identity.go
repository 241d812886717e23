// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package identity verifies tokens issued by the external identity
// provider. The provider owns the whole login flow; this side only checks
// the signature and extracts the editor's identity. Tokens are verified
// per privileged call and never cached.
package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail verification or carry
// no usable identity.
var ErrInvalidToken = errors.New("identity: invalid token")

// Identity is the verified editor identity extracted from a token. Email
// is the identity key used for draft namespacing and commit attribution.
type Identity struct {
	Email string
	Name  string
}

// claims is the token payload shape issued by the identity provider.
type claims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Verifier validates provider-issued tokens against the shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a token verifier. Returns nil when the secret is
// unset, which disables all privileged operations.
func NewVerifier(secret string) *Verifier {
	if secret == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a bearer token, returning the identity.
func (v *Verifier) Verify(token string) (*Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || c.Email == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{Email: c.Email, Name: c.UserMetadata.FullName}, nil
}
