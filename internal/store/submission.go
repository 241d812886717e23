// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"creatorsite/internal/models"
)

// SubmissionStore handles all contact-submission database operations.
type SubmissionStore struct {
	db *sql.DB
}

// NewSubmissionStore creates a new SubmissionStore with the given database connection.
func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// submissionColumns lists the columns selected in submission queries.
const submissionColumns = `id, name, email, service, message, notified, created_at`

// Create inserts a new submission and returns it with the generated ID.
func (s *SubmissionStore) Create(sub *models.Submission) (*models.Submission, error) {
	result := &models.Submission{}
	err := s.db.QueryRow(`
		INSERT INTO submissions (name, email, service, message, notified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+submissionColumns,
		sub.Name, sub.Email, sub.Service, sub.Message, sub.Notified,
	).Scan(
		&result.ID, &result.Name, &result.Email, &result.Service,
		&result.Message, &result.Notified, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return result, nil
}

// MarkNotified records that the chat relay for a submission succeeded.
func (s *SubmissionStore) MarkNotified(sub *models.Submission) error {
	_, err := s.db.Exec(`UPDATE submissions SET notified = TRUE WHERE id = $1`, sub.ID)
	if err != nil {
		return fmt.Errorf("mark submission notified: %w", err)
	}
	sub.Notified = true
	return nil
}

// List returns submissions ordered by creation date, with pagination.
func (s *SubmissionStore) List(limit, offset int) ([]models.Submission, error) {
	rows, err := s.db.Query(`
		SELECT `+submissionColumns+`
		FROM submissions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var items []models.Submission
	for rows.Next() {
		var sub models.Submission
		if err := rows.Scan(
			&sub.ID, &sub.Name, &sub.Email, &sub.Service,
			&sub.Message, &sub.Notified, &sub.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		items = append(items, sub)
	}
	return items, rows.Err()
}

// Count returns the total number of submissions.
func (s *SubmissionStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM submissions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return count, nil
}
