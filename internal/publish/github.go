// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publish writes the canonical content document through the GitHub
// contents API. Every publish is a commit: read the current file version
// (sha), then conditionally write against that sha. A conflicting
// concurrent commit fails the conditional write, in which case the write
// is retried once with a freshly read sha before giving up.
package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"creatorsite/internal/content"
)

// ErrConflict is returned when the conditional write keeps losing against
// concurrent commits after the retry.
var ErrConflict = errors.New("publish: content file changed concurrently")

// Client commits the content document to a file in a GitHub repository.
type Client struct {
	baseURL     string
	token       string
	owner       string
	repo        string
	contentPath string
	client      *http.Client
}

// New creates a publish client. baseURL defaults to the public GitHub API;
// tests point it at a local server.
func New(baseURL, token, owner, repo, contentPath string) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{
		baseURL:     baseURL,
		token:       token,
		owner:       owner,
		repo:        repo,
		contentPath: contentPath,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// fileURL is the contents-API endpoint for the content file.
func (c *Client) fileURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, c.owner, c.repo, c.contentPath)
}

// FetchLive retrieves and decodes the current published document.
func (c *Client) FetchLive(ctx context.Context) (*content.Document, error) {
	_, data, err := c.getFile(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("publish: content file %s does not exist", c.contentPath)
	}
	return content.Decode(data)
}

// Publish commits the full document. The commit message records which
// editor published and when.
func (c *Client) Publish(ctx context.Context, identity string, doc *content.Document) error {
	data, err := content.Encode(doc)
	if err != nil {
		return err
	}

	sha, _, err := c.getFile(ctx)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("CMS: Content update by %s on %s", identity, time.Now().UTC().Format(time.RFC3339))
	err = c.putFile(ctx, message, data, sha)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrConflict) {
		return err
	}

	// Someone committed between our read and write. Retry once against
	// the fresh sha; a second conflict is surfaced to the editor.
	sha, _, rerr := c.getFile(ctx)
	if rerr != nil {
		return rerr
	}
	return c.putFile(ctx, message, data, sha)
}

// getFile reads the content file. Returns ("", nil, nil) when the file
// does not exist yet; the first publish creates it.
func (c *Client) getFile(ctx context.Context) (sha string, data []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fileURL(), nil)
	if err != nil {
		return "", nil, fmt.Errorf("publish request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("publish fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("publish read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("publish fetch (status %d): %s", resp.StatusCode, string(body))
	}

	var file struct {
		SHA      string `json:"sha"`
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := json.Unmarshal(body, &file); err != nil {
		return "", nil, fmt.Errorf("publish unmarshal: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(stripNewlines(file.Content))
	if err != nil {
		return "", nil, fmt.Errorf("publish decode content: %w", err)
	}
	return file.SHA, raw, nil
}

// putFile performs the conditional write. A 409 from the API means the
// sha went stale under us, reported as ErrConflict.
func (c *Client) putFile(ctx context.Context, message string, data []byte, sha string) error {
	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(data),
	}
	if sha != "" {
		payload["sha"] = sha
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("publish marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.fileURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("publish request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish commit: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("publish read body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, string(respBody))
	default:
		return fmt.Errorf("publish commit (status %d): %s", resp.StatusCode, string(respBody))
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if req.Method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}
}

// stripNewlines removes the line breaks GitHub inserts into base64 content.
func stripNewlines(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			buf = append(buf, s[i])
		}
	}
	return string(buf)
}
