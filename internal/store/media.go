// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides PostgreSQL access for media metadata and contact
// submissions.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"creatorsite/internal/models"
)

// MediaStore handles all media-metadata database operations.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

// mediaColumns lists the columns selected in media queries.
const mediaColumns = `id, s3_key, original_name, content_type, size_bytes, uploader, created_at`

// scanMedia scans a media row from the result set.
func scanMedia(scanner interface{ Scan(...any) error }) (*models.Media, error) {
	var m models.Media
	err := scanner.Scan(
		&m.ID, &m.S3Key, &m.OriginalName, &m.ContentType,
		&m.SizeBytes, &m.Uploader, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new media record and returns it with the generated ID.
func (s *MediaStore) Create(m *models.Media) (*models.Media, error) {
	row := s.db.QueryRow(`
		INSERT INTO media (s3_key, original_name, content_type, size_bytes, uploader)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+mediaColumns,
		m.S3Key, m.OriginalName, m.ContentType, m.SizeBytes, m.Uploader,
	)
	created, err := scanMedia(row)
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single media record by its UUID. Returns nil if not found.
func (s *MediaStore) FindByID(id uuid.UUID) (*models.Media, error) {
	row := s.db.QueryRow(`SELECT `+mediaColumns+` FROM media WHERE id = $1`, id)
	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media by id: %w", err)
	}
	return m, nil
}

// FindByKey retrieves a media record by its storage key. Returns nil if not found.
func (s *MediaStore) FindByKey(key string) (*models.Media, error) {
	row := s.db.QueryRow(`SELECT `+mediaColumns+` FROM media WHERE s3_key = $1`, key)
	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media by key: %w", err)
	}
	return m, nil
}

// List returns media items ordered by creation date, with pagination.
func (s *MediaStore) List(limit, offset int) ([]models.Media, error) {
	rows, err := s.db.Query(`
		SELECT `+mediaColumns+`
		FROM media
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var items []models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// DeleteByKey removes a media record by storage key and returns it so the
// caller can clean up the corresponding S3 object. Returns nil if no row
// matched.
func (s *MediaStore) DeleteByKey(key string) (*models.Media, error) {
	row := s.db.QueryRow(`
		DELETE FROM media WHERE s3_key = $1
		RETURNING `+mediaColumns, key)
	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete media: %w", err)
	}
	return m, nil
}

// Count returns the total number of media items.
func (s *MediaStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM media`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return count, nil
}
