// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists template documents, their revisions and theme
// presets in PostgreSQL. Theme and sections are stored as JSONB so that
// section types and property sets can grow without schema migrations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"invitecraft/internal/models"
	"invitecraft/internal/slug"
)

// ErrNotFound is returned by writes that target a row that does not exist.
var ErrNotFound = errors.New("not found")

// TemplateStore handles all template database operations. It is the
// persistence collaborator of the editing sessions.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// templateColumns lists the columns selected when loading a full document.
const templateColumns = `id, name, description, category, event_type, theme, sections`

// scanDocument scans a template row into a Document.
func scanDocument(scanner interface{ Scan(...any) error }) (*models.Document, error) {
	var (
		id              uuid.UUID
		doc             models.Document
		theme, sections []byte
	)
	err := scanner.Scan(&id, &doc.Name, &doc.Description, &doc.Category, &doc.EventType, &theme, &sections)
	if err != nil {
		return nil, err
	}
	doc.ID = id.String()
	if err := json.Unmarshal(theme, &doc.Theme); err != nil {
		return nil, fmt.Errorf("decode theme: %w", err)
	}
	if err := json.Unmarshal(sections, &doc.Sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	if doc.Sections == nil {
		doc.Sections = []models.Section{}
	}
	return &doc, nil
}

// encodeDocument returns the JSONB payloads of a document.
func encodeDocument(doc *models.Document) (theme, sections []byte, err error) {
	theme, err = json.Marshal(doc.Theme)
	if err != nil {
		return nil, nil, fmt.Errorf("encode theme: %w", err)
	}
	secs := doc.Sections
	if secs == nil {
		secs = []models.Section{}
	}
	sections, err = json.Marshal(secs)
	if err != nil {
		return nil, nil, fmt.Errorf("encode sections: %w", err)
	}
	return theme, sections, nil
}

// List returns a summary of every template, most recently edited first.
func (s *TemplateStore) List(ctx context.Context) ([]models.TemplateSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, event_type, jsonb_array_length(sections),
		       version, created_at, updated_at
		FROM templates
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var items []models.TemplateSummary
	for rows.Next() {
		var t models.TemplateSummary
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Slug, &t.EventType, &t.Sections,
			&t.Version, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// FindDocument loads a template document by id. Returns nil if not found.
func (s *TemplateStore) FindDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return doc, nil
}

// FindSlug returns the stored slug of a template. Returns "" if not found.
func (s *TemplateStore) FindSlug(ctx context.Context, id uuid.UUID) (string, error) {
	var sl string
	err := s.db.QueryRowContext(ctx, `SELECT slug FROM templates WHERE id = $1`, id).Scan(&sl)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find template slug: %w", err)
	}
	return sl, nil
}

// CreateDocument inserts a new template with version 1. The document id
// must be a UUID.
func (s *TemplateStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return fmt.Errorf("create template: invalid id %q: %w", doc.ID, err)
	}
	theme, sections, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, slug, description, category, event_type, theme, sections)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, doc.Name, slug.ForTemplate(doc.Name, doc.ID), doc.Description, doc.Category, doc.EventType, theme, sections)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

// SaveDocument overwrites a template with doc and increments its version.
func (s *TemplateStore) SaveDocument(ctx context.Context, doc *models.Document) error {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return fmt.Errorf("save template: invalid id %q: %w", doc.ID, err)
	}
	theme, sections, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE templates SET
			name = $1, slug = $2, description = $3, category = $4, event_type = $5,
			theme = $6, sections = $7, version = version + 1, updated_at = NOW()
		WHERE id = $8
	`, doc.Name, slug.ForTemplate(doc.Name, doc.ID), doc.Description, doc.Category, doc.EventType, theme, sections, id)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("save template %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a template and, by cascade, its revisions.
func (s *TemplateStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete template %s: %w", id, ErrNotFound)
	}
	return nil
}
