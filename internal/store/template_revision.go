// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"invitecraft/internal/models"
)

// TemplateRevisionStore keeps the snapshots written after successful saves.
type TemplateRevisionStore struct {
	db *sql.DB
}

// NewTemplateRevisionStore creates a new TemplateRevisionStore backed by the given database.
func NewTemplateRevisionStore(db *sql.DB) *TemplateRevisionStore {
	return &TemplateRevisionStore{db: db}
}

// RecordRevision stores doc as the newest revision of its template unless
// the newest revision already has the same digest.
func (s *TemplateRevisionStore) RecordRevision(ctx context.Context, doc *models.Document, label string) error {
	templateID, err := uuid.Parse(doc.ID)
	if err != nil {
		return fmt.Errorf("record revision: invalid template id %q: %w", doc.ID, err)
	}
	digest := doc.Digest()

	var latest string
	err = s.db.QueryRowContext(ctx, `
		SELECT digest FROM template_revisions
		WHERE template_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, templateID).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("latest revision digest: %w", err)
	}
	if latest == digest {
		return nil
	}

	snapshot, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode revision snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO template_revisions (template_id, label, digest, snapshot)
		VALUES ($1, $2, $3, $4)
	`, templateID, label, digest, snapshot)
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

// ListByTemplateID returns the revisions of a template, newest first,
// without their snapshots.
func (s *TemplateRevisionStore) ListByTemplateID(ctx context.Context, templateID uuid.UUID) ([]models.TemplateRevision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template_id, label, digest, created_at
		FROM template_revisions
		WHERE template_id = $1
		ORDER BY created_at DESC
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list template revisions: %w", err)
	}
	defer rows.Close()

	var revisions []models.TemplateRevision
	for rows.Next() {
		var r models.TemplateRevision
		if err := rows.Scan(&r.ID, &r.TemplateID, &r.Label, &r.Digest, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan template revision: %w", err)
		}
		revisions = append(revisions, r)
	}
	return revisions, rows.Err()
}

// FindByID returns a revision with its snapshot. Returns nil if not found.
func (s *TemplateRevisionStore) FindByID(ctx context.Context, id uuid.UUID) (*models.TemplateRevision, error) {
	var (
		r        models.TemplateRevision
		snapshot []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, template_id, label, digest, snapshot, created_at
		FROM template_revisions
		WHERE id = $1
	`, id).Scan(&r.ID, &r.TemplateID, &r.Label, &r.Digest, &snapshot, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template revision: %w", err)
	}
	r.Snapshot = &models.Document{}
	if err := json.Unmarshal(snapshot, r.Snapshot); err != nil {
		return nil, fmt.Errorf("decode revision snapshot: %w", err)
	}
	return &r, nil
}
