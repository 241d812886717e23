// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is a contact-form submission logged to PostgreSQL. Notified
// records whether the Telegram relay succeeded; the relay is best-effort
// and the row is written either way.
type Submission struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Service   string    `json:"service"`
	Message   string    `json:"message"`
	Notified  bool      `json:"notified"`
	CreatedAt time.Time `json:"created_at"`
}
