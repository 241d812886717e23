// Package draft provides the Valkey-backed working-draft store. Each
// editor identity owns at most one draft: the full serialized content
// document under a key derived from the identity's email. Writes overwrite
// wholesale, which is the only mutual-exclusion guarantee the system has.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"creatorsite/internal/content"
)

const (
	// keyPrefix namespaces draft keys in Valkey. The full key is
	// "draft-content-<email>", matching the wire convention of the page
	// application.
	keyPrefix = "draft-content-"

	// DefaultTTL keeps abandoned drafts from living forever. Publish,
	// discard and logout all delete the draft explicitly; the TTL is a
	// backstop for crashed sessions.
	DefaultTTL = 30 * 24 * time.Hour
)

// envelope is the stored draft payload. The mime type tag travels with the
// blob so the store stays opaque to its contents.
type envelope struct {
	MimeType string          `json:"mimeType"`
	Body     json.RawMessage `json:"body"`
}

// Store manages per-identity drafts in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a draft store backed by the given Valkey client.
// A zero ttl applies DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

// Get retrieves the identity's draft. Returns (nil, nil) when no draft
// exists; an absent draft is a normal state, not an error.
func (s *Store) Get(ctx context.Context, identity string) (*content.Document, error) {
	payload, err := s.client.Get(ctx, keyPrefix+identity).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft get: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("draft unmarshal: %w", err)
	}
	doc, err := content.Decode(env.Body)
	if err != nil {
		return nil, fmt.Errorf("draft decode: %w", err)
	}
	return doc, nil
}

// Set stores the identity's draft, overwriting any previous one. The
// key-collision-is-overwrite semantics enforce one draft per identity.
func (s *Store) Set(ctx context.Context, identity string, doc *content.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("draft marshal: %w", err)
	}
	payload, err := json.Marshal(envelope{MimeType: "application/json", Body: body})
	if err != nil {
		return fmt.Errorf("draft envelope: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+identity, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("draft set: %w", err)
	}
	return nil
}

// Delete removes the identity's draft. Deleting an absent draft is not an
// error.
func (s *Store) Delete(ctx context.Context, identity string) error {
	if err := s.client.Del(ctx, keyPrefix+identity).Err(); err != nil {
		return fmt.Errorf("draft delete: %w", err)
	}
	return nil
}
