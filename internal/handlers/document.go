// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"invitecraft/internal/editor"
	"invitecraft/internal/models"
)

// TemplateMeta updates name, description, category or event type as one change.
func (a *API) TemplateMeta(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var m editor.Meta
	if !decodeJSON(w, r, &m) {
		return
	}
	if msg := validateMeta(m); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	s.UpdateMeta(m)
	writeState(w, http.StatusOK, s, "")
}

// TemplateTheme replaces the whole theme.
func (a *API) TemplateTheme(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var theme models.Theme
	if !decodeJSON(w, r, &theme) {
		return
	}
	s.ReplaceTheme(theme)
	writeState(w, http.StatusOK, s, "")
}

// valueRequest is the body of endpoints that set a single value.
type valueRequest struct {
	Value string `json:"value"`
}

// TemplateThemeColor changes one color role.
func (a *API) TemplateThemeColor(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	role := models.ColorRole(chi.URLParam(r, "role"))
	if _, valid := s.Document().Theme.WithColor(role, ""); !valid {
		writeError(w, http.StatusBadRequest, "Unknown color role.")
		return
	}
	var req valueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateThemeValue(req.Value); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	s.SetThemeColor(role, req.Value)
	writeState(w, http.StatusOK, s, "")
}

// TemplateThemeFont changes one font role.
func (a *API) TemplateThemeFont(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	role := models.FontRole(chi.URLParam(r, "role"))
	if _, valid := s.Document().Theme.WithFont(role, ""); !valid {
		writeError(w, http.StatusBadRequest, "Unknown font role.")
		return
	}
	var req valueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateThemeValue(req.Value); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	s.SetThemeFont(role, req.Value)
	writeState(w, http.StatusOK, s, "")
}

// TemplateApplyPreset replaces the theme with a stored preset.
func (a *API) TemplateApplyPreset(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	presetID, ok := parseID(w, r, "presetID")
	if !ok {
		return
	}
	preset, err := a.presets.FindByID(r.Context(), presetID)
	if err != nil {
		slog.Error("find theme preset failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load preset.")
		return
	}
	if preset == nil {
		writeError(w, http.StatusNotFound, "Preset not found.")
		return
	}
	s.ReplaceTheme(preset.Theme)
	writeState(w, http.StatusOK, s, "")
}

// SectionAdd appends a section of the requested type.
func (a *API) SectionAdd(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Type string `json:"type"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateIdentifier("Type", req.Type, maxSectionTypeLen); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	_, id, err := s.AddSection(req.Type)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeState(w, http.StatusCreated, s, id)
}

// SectionsReorder rearranges sections to follow the given ids.
func (a *API) SectionsReorder(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var req struct {
		IDs []string `json:"ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.ReorderSections(req.IDs)
	writeState(w, http.StatusOK, s, "")
}

// SectionRemove deletes a section.
func (a *API) SectionRemove(w http.ResponseWriter, r *http.Request) {
	s, sid, ok := a.section(w, r)
	if !ok {
		return
	}
	s.RemoveSection(sid)
	writeState(w, http.StatusOK, s, "")
}

// SectionDuplicate copies a section directly after itself.
func (a *API) SectionDuplicate(w http.ResponseWriter, r *http.Request) {
	s, sid, ok := a.section(w, r)
	if !ok {
		return
	}
	_, id, err := s.DuplicateSection(sid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusCreated
	if id == "" {
		status = http.StatusOK
	}
	writeState(w, status, s, id)
}

// SectionMove shifts a section by delta positions.
func (a *API) SectionMove(w http.ResponseWriter, r *http.Request) {
	s, sid, ok := a.section(w, r)
	if !ok {
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.MoveSection(sid, req.Delta)
	writeState(w, http.StatusOK, s, "")
}

// SectionVisibility shows or hides a section.
func (a *API) SectionVisibility(w http.ResponseWriter, r *http.Request) {
	s, sid, ok := a.section(w, r)
	if !ok {
		return
	}
	var req struct {
		Visible *bool `json:"visible"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Visible == nil {
		writeError(w, http.StatusBadRequest, "visible is required.")
		return
	}
	s.SetSectionVisibility(sid, *req.Visible)
	writeState(w, http.StatusOK, s, "")
}

// SectionProperty sets one property of a section. Any JSON value is accepted;
// names outside the section type's schema are kept as they are.
func (a *API) SectionProperty(w http.ResponseWriter, r *http.Request) {
	s, sid, ok := a.section(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	if msg := validateIdentifier("Property", name, maxPropertyLen); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	var req struct {
		Value any `json:"value"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.SetProperty(sid, name, req.Value)
	writeState(w, http.StatusOK, s, "")
}
