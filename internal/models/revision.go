// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// TemplateSummary is the listing view of a persisted template.
type TemplateSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	EventType string    `json:"eventType,omitempty"`
	Sections  int       `json:"sections"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateRevision is a persisted snapshot written after a successful save.
type TemplateRevision struct {
	ID         uuid.UUID `json:"id"`
	TemplateID uuid.UUID `json:"template_id"`
	Label      string    `json:"label"`
	Digest     string    `json:"digest"`
	Snapshot   *Document `json:"snapshot,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
