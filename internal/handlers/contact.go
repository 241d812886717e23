// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"creatorsite/internal/models"
	"creatorsite/internal/notify"
	"creatorsite/internal/store"
)

// Validation limits for contact form fields.
const (
	maxNameLen    = 200
	maxEmailLen   = 320
	maxServiceLen = 200
	maxMessageLen = 10_000
)

// Contact handles the public contact-form endpoint. Submissions are logged
// to Postgres and relayed to the chat bridge without blocking the visitor.
type Contact struct {
	submissions *store.SubmissionStore
	notifier    *notify.Telegram
}

// NewContact creates the contact handler. notifier may be nil when the chat
// bridge is not configured.
func NewContact(submissions *store.SubmissionStore, notifier *notify.Telegram) *Contact {
	return &Contact{submissions: submissions, notifier: notifier}
}

// contactRequest is the wire shape of a contact-form submission.
type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// validateContact checks contact form inputs and returns the first error found.
func validateContact(req *contactRequest) string {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Service = strings.TrimSpace(req.Service)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(req.Name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if req.Email == "" {
		return "Email is required."
	}
	if utf8.RuneCountInString(req.Email) > maxEmailLen || !strings.Contains(req.Email, "@") {
		return "A valid email address is required."
	}
	if utf8.RuneCountInString(req.Service) > maxServiceLen {
		return "Service is too long (max 200 characters)."
	}
	if req.Message == "" {
		return "Message is required."
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLen {
		return "Message is too long (max 10,000 characters)."
	}
	return ""
}

// Submit accepts a contact-form submission. The visitor gets a confirmation
// whenever validation passes; persistence or relay failures are logged
// server-side and never surface to the form.
func (c *Contact) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if msg := validateContact(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	sub, err := c.submissions.Create(&models.Submission{
		Name:    req.Name,
		Email:   req.Email,
		Service: req.Service,
		Message: req.Message,
	})
	if err != nil {
		// The visitor still gets a confirmation; the relay below carries
		// the submission even when the log write failed.
		slog.Error("store contact submission failed", "error", err)
	}

	if c.notifier != nil {
		go c.relay(sub, notify.Submission{
			Name:    req.Name,
			Email:   req.Email,
			Service: req.Service,
			Message: req.Message,
		})
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// relay sends the chat notification off the request path. Failures are
// logged and never retried.
func (c *Contact) relay(sub *models.Submission, payload notify.Submission) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := c.notifier.Send(ctx, payload); err != nil {
		slog.Warn("contact notification failed", "error", err, "email", payload.Email)
		return
	}
	if sub != nil {
		if err := c.submissions.MarkNotified(sub); err != nil {
			slog.Warn("mark submission notified failed", "error", err, "id", sub.ID)
		}
	}
}
