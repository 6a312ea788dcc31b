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

// ThemePresetStore handles theme preset database operations.
type ThemePresetStore struct {
	db *sql.DB
}

// NewThemePresetStore creates a new ThemePresetStore.
func NewThemePresetStore(db *sql.DB) *ThemePresetStore {
	return &ThemePresetStore{db: db}
}

// presetColumns lists the columns selected in preset queries.
const presetColumns = `id, name, theme, created_at`

// scanPreset scans a preset row from the result set.
func scanPreset(scanner interface{ Scan(...any) error }) (*models.ThemePreset, error) {
	var (
		p     models.ThemePreset
		theme []byte
	)
	if err := scanner.Scan(&p.ID, &p.Name, &theme, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(theme, &p.Theme); err != nil {
		return nil, fmt.Errorf("decode preset theme: %w", err)
	}
	return &p, nil
}

// List returns all presets ordered by name.
func (s *ThemePresetStore) List(ctx context.Context) ([]models.ThemePreset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+presetColumns+` FROM theme_presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list theme presets: %w", err)
	}
	defer rows.Close()

	var items []models.ThemePreset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme preset: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a preset by its UUID. Returns nil if not found.
func (s *ThemePresetStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ThemePreset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+presetColumns+` FROM theme_presets WHERE id = $1`, id)
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find theme preset by id: %w", err)
	}
	return p, nil
}

// Create inserts a new preset and returns it with the generated ID.
func (s *ThemePresetStore) Create(ctx context.Context, name string, theme models.Theme) (*models.ThemePreset, error) {
	data, err := json.Marshal(theme)
	if err != nil {
		return nil, fmt.Errorf("encode preset theme: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO theme_presets (name, theme)
		VALUES ($1, $2)
		RETURNING `+presetColumns,
		name, data,
	)
	p, err := scanPreset(row)
	if err != nil {
		return nil, fmt.Errorf("create theme preset: %w", err)
	}
	return p, nil
}

// Delete removes a preset.
func (s *ThemePresetStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM theme_presets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete theme preset: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete theme preset %s: %w", id, ErrNotFound)
	}
	return nil
}
