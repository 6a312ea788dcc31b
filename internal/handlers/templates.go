// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"invitecraft/internal/models"
)

// TemplatesList returns every persisted template, most recent first.
func (a *API) TemplatesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.templates.List(r.Context())
	if err != nil {
		slog.Error("list templates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list templates.")
		return
	}
	if items == nil {
		items = []models.TemplateSummary{}
	}
	writeJSON(w, http.StatusOK, items)
}

// TemplateCreate persists a new empty template and opens it.
func (a *API) TemplateCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		EventType string `json:"eventType"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if len(req.EventType) > maxEventTypeLen {
		writeError(w, http.StatusBadRequest, "Event type is too long (max 100 characters).")
		return
	}

	s, err := a.manager.Create(r.Context(), req.Name, req.EventType)
	if err != nil {
		slog.Error("create template failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create template.")
		return
	}
	w.Header().Set("Location", "/api/templates/"+s.ID())
	writeState(w, http.StatusCreated, s, "")
}

// TemplateOpen opens the editing session of a template and returns its state.
// A matching If-None-Match answers 304.
func (a *API) TemplateOpen(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	tag := etag(s.Document().Digest())
	if ifNoneMatch(r, tag) {
		w.Header().Set("ETag", tag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeState(w, http.StatusOK, s, "")
}

// TemplateCloseSession flushes pending changes and closes the session.
func (a *API) TemplateCloseSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := a.manager.Close(r.Context(), id); err != nil {
		slog.Warn("session closed with unsaved changes", "template_id", id, "error", err)
		writeError(w, http.StatusBadGateway, "Session closed but the last save failed; a draft was kept.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TemplateStatus returns the save status without the document.
func (a *API) TemplateStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	resp := map[string]any{"status": s.Status()}
	if err := s.LastSaveError(); err != nil {
		resp["saveError"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// TemplateSave persists pending changes immediately. A failed save is
// reported through the status, not the HTTP code.
func (a *API) TemplateSave(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := s.Save(r.Context()); err != nil {
		slog.Warn("manual save failed", "template_id", s.ID(), "error", err)
	}
	writeState(w, http.StatusOK, s, "")
}

// TemplateUndo steps back one history entry.
func (a *API) TemplateUndo(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	if _, err := s.Undo(); err != nil {
		writeServiceError(w, err)
		return
	}
	writeState(w, http.StatusOK, s, "")
}

// TemplateRedo steps forward one history entry.
func (a *API) TemplateRedo(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	if _, err := s.Redo(); err != nil {
		writeServiceError(w, err)
		return
	}
	writeState(w, http.StatusOK, s, "")
}

// historyEntry describes one undo timeline entry without its snapshot.
type historyEntry struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Timestamp string `json:"timestamp"`
	Current   bool   `json:"current"`
}

// TemplateHistory lists the undo timeline, newest first.
func (a *API) TemplateHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	entries, pos := s.History()
	out := make([]historyEntry, len(entries))
	for i, e := range entries {
		out[i] = historyEntry{
			Index:     i,
			Label:     e.Label,
			Timestamp: e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Current:   i == pos,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out, "position": pos})
}

// TemplateHistoryRestore jumps to a history entry by index.
func (a *API) TemplateHistoryRestore(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid index.")
		return
	}
	if _, err := s.RestoreVersion(index); err != nil {
		writeServiceError(w, err)
		return
	}
	writeState(w, http.StatusOK, s, "")
}
