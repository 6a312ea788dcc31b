// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"invitecraft/internal/models"
	"invitecraft/internal/schema"
)

// paletteEntry is one row of the add-section menu.
type paletteEntry struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// SchemaPalette lists the section types in catalog order.
func (a *API) SchemaPalette(w http.ResponseWriter, r *http.Request) {
	types := a.manager.Options().Registry.SectionTypes()
	out := make([]paletteEntry, len(types))
	for i, st := range types {
		out[i] = paletteEntry{Type: st.Type, Label: st.Label, Icon: st.Icon, Description: st.Description}
	}
	writeJSON(w, http.StatusOK, out)
}

// SchemaType returns the property definitions of one section type, both
// in catalog order and grouped for the property panel. An unknown type has
// no definitions.
func (a *API) SchemaType(w http.ResponseWriter, r *http.Request) {
	reg := a.manager.Options().Registry
	sectionType := chi.URLParam(r, "type")
	defs := reg.Definitions(sectionType)
	if defs == nil {
		defs = []schema.Definition{}
	}
	groups := reg.Groups(sectionType)
	if groups == nil {
		groups = []schema.Group{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"type":        sectionType,
		"definitions": defs,
		"groups":      groups,
		"defaults":    reg.DefaultProperties(sectionType),
	})
}

// ThemesList returns the stored theme presets.
func (a *API) ThemesList(w http.ResponseWriter, r *http.Request) {
	presets, err := a.presets.List(r.Context())
	if err != nil {
		slog.Error("list theme presets failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list presets.")
		return
	}
	if presets == nil {
		presets = []models.ThemePreset{}
	}
	writeJSON(w, http.StatusOK, presets)
}
