// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models holds the in-memory document model edited by the template
// configuration engine: a Document (the invitation template) made of ordered,
// typed Sections plus a Theme.
package models

import (
	"encoding/hex"
	"encoding/json"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mohae/deepcopy"
	"golang.org/x/crypto/blake2b"
)

// Section is one configurable block of a template (hero, countdown,
// gallery, ...). Properties is keyed by property name; keys may exist that
// the section type's schema does not know about.
type Section struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Order      int            `json:"order"`
	Visible    bool           `json:"visible"`
	Properties map[string]any `json:"properties"`
}

// Document is the aggregate root of the editor: a template with its theme
// and its ordered sections. A Document is treated as immutable once it has
// been handed out; every mutation produces a new instance.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	EventType   string    `json:"eventType,omitempty"`
	Theme       Theme     `json:"theme"`
	Sections    []Section `json:"sections"`
}

// NewDocument synthesizes an empty document with the default theme.
func NewDocument(id, name string) *Document {
	return &Document{
		ID:       id,
		Name:     name,
		Theme:    DefaultTheme(),
		Sections: []Section{},
	}
}

// Section returns the section with the given id and its index, or -1.
func (d *Document) Section(id string) (Section, int) {
	if d == nil {
		return Section{}, -1
	}
	for i, s := range d.Sections {
		if s.ID == id {
			return s, i
		}
	}
	return Section{}, -1
}

// HasSection reports whether a section with the given id exists.
func (d *Document) HasSection(id string) bool {
	_, i := d.Section(id)
	return i >= 0
}

// Clone returns a deep copy of the document. Property values (lists,
// location maps) are copied recursively so the clone shares nothing with d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return deepcopy.Copy(d).(*Document)
}

// ShallowCopy copies the document header and the section slice. Section
// property maps are still shared and must be replaced, not written to.
func (d *Document) ShallowCopy() *Document {
	out := *d
	out.Sections = make([]Section, len(d.Sections))
	copy(out.Sections, d.Sections)
	return &out
}

// equalOpts treats nil and empty maps/slices as equal so that a document
// loaded from JSON compares equal to the one that was saved.
var equalOpts = cmp.Options{
	cmpopts.EquateEmpty(),
}

// Equal reports deep structural equality of two documents.
func Equal(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	return cmp.Equal(a, b, equalOpts)
}

// Diff returns a human readable diff between two documents, empty when equal.
func Diff(a, b *Document) string {
	return cmp.Diff(a, b, equalOpts)
}

// Digest returns a stable BLAKE2b-256 hex digest of the document's JSON
// encoding. encoding/json sorts map keys, so equal documents hash equally.
func (d *Document) Digest() string {
	data, err := json.Marshal(d)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
