// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mutation implements the pure operations that move a template
// document from one state to the next. Every operation returns a new
// *models.Document and leaves its input untouched; operations that target
// a section id that does not exist return the input document unchanged.
package mutation

import (
	"errors"
	"fmt"
	"sort"

	"invitecraft/internal/models"
)

// ErrDuplicateSectionID is returned when a mutation would introduce a
// section id that is already present in the document.
var ErrDuplicateSectionID = errors.New("duplicate section id")

// IDFactory produces a statistically unique identifier for a new section.
type IDFactory func() string

// Defaults supplies the initial property map of a section type.
// *schema.Registry satisfies it.
type Defaults interface {
	DefaultProperties(sectionType string) map[string]any
}

// Normalize sorts sections by their current order and renumbers them so that
// orders are exactly 0..N-1 in slice order. The sort is stable, so sections
// sharing an order keep their relative position.
func Normalize(doc *models.Document) *models.Document {
	out := doc.ShallowCopy()
	sort.SliceStable(out.Sections, func(i, j int) bool {
		return out.Sections[i].Order < out.Sections[j].Order
	})
	for i := range out.Sections {
		out.Sections[i].Order = i
	}
	return out
}

// Validate checks document-level invariants that normalization cannot
// repair. It is used on documents coming from persistence.
func Validate(doc *models.Document) error {
	seen := make(map[string]bool, len(doc.Sections))
	for _, s := range doc.Sections {
		if seen[s.ID] {
			return fmt.Errorf("section %q: %w", s.ID, ErrDuplicateSectionID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Rename replaces the document display name.
func Rename(doc *models.Document, name string) *models.Document {
	out := doc.ShallowCopy()
	out.Name = name
	return out
}

// SetDescription replaces the document description.
func SetDescription(doc *models.Document, description string) *models.Document {
	out := doc.ShallowCopy()
	out.Description = description
	return out
}

// SetCategory replaces the document category tag.
func SetCategory(doc *models.Document, category string) *models.Document {
	out := doc.ShallowCopy()
	out.Category = category
	return out
}

// SetEventType replaces the document event-type tag.
func SetEventType(doc *models.Document, eventType string) *models.Document {
	out := doc.ShallowCopy()
	out.EventType = eventType
	return out
}

// ReplaceTheme swaps the whole theme record.
func ReplaceTheme(doc *models.Document, theme models.Theme) *models.Document {
	out := doc.ShallowCopy()
	out.Theme = theme
	return out
}

// SetThemeColor replaces one color role. The value is stored verbatim.
// An unknown role leaves the document unchanged.
func SetThemeColor(doc *models.Document, role models.ColorRole, value string) *models.Document {
	theme, ok := doc.Theme.WithColor(role, value)
	if !ok {
		return doc
	}
	return ReplaceTheme(doc, theme)
}

// SetThemeFont replaces one font role. An unknown role leaves the document
// unchanged.
func SetThemeFont(doc *models.Document, role models.FontRole, family string) *models.Document {
	theme, ok := doc.Theme.WithFont(role, family)
	if !ok {
		return doc
	}
	return ReplaceTheme(doc, theme)
}

// AddSection appends a visible section of the given type with properties
// seeded from defaults. It returns the new document and the new section id.
// A factory that yields an id already in use is rejected with
// ErrDuplicateSectionID; the caller must retry with a fresh id.
func AddSection(doc *models.Document, defaults Defaults, sectionType string, newID IDFactory) (*models.Document, string, error) {
	id := newID()
	if doc.HasSection(id) {
		return doc, "", fmt.Errorf("add %s section %q: %w", sectionType, id, ErrDuplicateSectionID)
	}

	props := map[string]any{}
	if defaults != nil {
		props = defaults.DefaultProperties(sectionType)
	}

	out := Normalize(doc)
	out.Sections = append(out.Sections, models.Section{
		ID:         id,
		Type:       sectionType,
		Order:      len(out.Sections),
		Visible:    true,
		Properties: props,
	})
	return out, id, nil
}

// DuplicateSection inserts a copy of a section directly after it, with a
// fresh id. A missing source id is a no-op that returns an empty id.
func DuplicateSection(doc *models.Document, id string, newID IDFactory) (*models.Document, string, error) {
	current := Normalize(doc)
	src, idx := current.Section(id)
	if idx < 0 {
		return doc, "", nil
	}
	copyID := newID()
	if doc.HasSection(copyID) {
		return doc, "", fmt.Errorf("duplicate section %q as %q: %w", id, copyID, ErrDuplicateSectionID)
	}

	clone := (&models.Document{Sections: []models.Section{src}}).Clone().Sections[0]
	clone.ID = copyID

	out := current.ShallowCopy()
	out.Sections = make([]models.Section, 0, len(current.Sections)+1)
	for i, s := range current.Sections {
		out.Sections = append(out.Sections, s)
		if i == idx {
			out.Sections = append(out.Sections, clone)
		}
	}
	for i := range out.Sections {
		out.Sections[i].Order = i
	}
	return out, copyID, nil
}

// RemoveSection deletes a section and renumbers the rest. Removing a
// section that does not exist is not an error.
func RemoveSection(doc *models.Document, id string) *models.Document {
	_, idx := doc.Section(id)
	if idx < 0 {
		return doc
	}
	out := doc.ShallowCopy()
	out.Sections = append(out.Sections[:idx:idx], out.Sections[idx+1:]...)
	return Normalize(out)
}

// SetSectionVisibility shows or hides a section.
func SetSectionVisibility(doc *models.Document, id string, visible bool) *models.Document {
	_, idx := doc.Section(id)
	if idx < 0 {
		return doc
	}
	out := doc.ShallowCopy()
	out.Sections[idx].Visible = visible
	return Normalize(out)
}

// SetProperty replaces a single property value of a section. The key does
// not have to be part of the section type's schema.
func SetProperty(doc *models.Document, sectionID, name string, value any) *models.Document {
	_, idx := doc.Section(sectionID)
	if idx < 0 {
		return doc
	}
	out := doc.ShallowCopy()
	old := out.Sections[idx].Properties
	props := make(map[string]any, len(old)+1)
	for k, v := range old {
		props[k] = v
	}
	props[name] = value
	out.Sections[idx].Properties = props
	return Normalize(out)
}

// ReorderSections assigns orders by position in ids. Sections of the
// document that are missing from ids keep their prior relative order and
// are appended after the listed ones. Unknown or repeated ids are ignored.
func ReorderSections(doc *models.Document, ids []string) *models.Document {
	current := Normalize(doc)
	rank := make(map[string]int, len(ids))
	for _, id := range ids {
		if _, dup := rank[id]; dup {
			continue
		}
		if current.HasSection(id) {
			rank[id] = len(rank)
		}
	}

	next := len(rank)
	out := current.ShallowCopy()
	for i := range out.Sections {
		if r, ok := rank[out.Sections[i].ID]; ok {
			out.Sections[i].Order = r
			continue
		}
		out.Sections[i].Order = next
		next++
	}
	return Normalize(out)
}

// MoveSection shifts a section by delta positions, clamped to the ends of
// the document.
func MoveSection(doc *models.Document, id string, delta int) *models.Document {
	current := Normalize(doc)
	_, idx := current.Section(id)
	if idx < 0 {
		return doc
	}
	target := idx + delta
	if target < 0 {
		target = 0
	}
	if target > len(current.Sections)-1 {
		target = len(current.Sections) - 1
	}

	ids := make([]string, 0, len(current.Sections))
	for _, s := range current.Sections {
		if s.ID != id {
			ids = append(ids, s.ID)
		}
	}
	ids = append(ids[:target], append([]string{id}, ids[target:]...)...)
	return ReorderSections(current, ids)
}

// RestoreSnapshot replaces the document content with a snapshot while
// keeping the document identity. Used to roll back to a persisted revision.
func RestoreSnapshot(doc, snapshot *models.Document) *models.Document {
	out := snapshot.Clone()
	out.ID = doc.ID
	if out.Sections == nil {
		out.Sections = []models.Section{}
	}
	return Normalize(out)
}
