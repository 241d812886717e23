// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notify relays contact-form submissions to a Telegram chat.
// The relay is fire-and-forget: failures are logged, never retried, and
// never block the visitor-facing confirmation.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"
)

// Submission carries the contact-form fields relayed to the chat.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// Telegram sends formatted messages through the Telegram bot API.
type Telegram struct {
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegram creates a Telegram notifier. Returns nil when the bot token
// or chat id is unset, allowing the app to run without notifications.
func NewTelegram(baseURL, botToken, chatID string) *Telegram {
	if botToken == "" || chatID == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Telegram{
		baseURL:  baseURL,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Send relays a contact submission as an HTML-formatted chat message.
func (t *Telegram) Send(ctx context.Context, sub Submission) error {
	text := fmt.Sprintf(
		"<b>New Contact Form Submission</b> \U0001F4E9\n\n"+
			"<b>Name:</b> %s\n"+
			"<b>Email:</b> <a href=\"mailto:%s\">%s</a>\n"+
			"<b>Service of Interest:</b> %s\n\n"+
			"<b>Message:</b>\n<pre>%s</pre>",
		html.EscapeString(sub.Name),
		html.EscapeString(sub.Email), html.EscapeString(sub.Email),
		html.EscapeString(sub.Service),
		html.EscapeString(sub.Message),
	)

	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("telegram marshal: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}
