// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP API of the template editor.
// Handlers receive their dependencies through the API struct and drive
// the editing sessions owned by an editor.Manager.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"invitecraft/internal/editor"
	"invitecraft/internal/history"
	"invitecraft/internal/models"
	"invitecraft/internal/mutation"
	"invitecraft/internal/resources"
	"invitecraft/internal/share"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

// TemplateLister reads persisted template metadata.
type TemplateLister interface {
	List(ctx context.Context) ([]models.TemplateSummary, error)
	FindSlug(ctx context.Context, id uuid.UUID) (string, error)
}

// RevisionReader reads persisted revisions.
type RevisionReader interface {
	ListByTemplateID(ctx context.Context, templateID uuid.UUID) ([]models.TemplateRevision, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.TemplateRevision, error)
}

// PresetReader reads theme presets.
type PresetReader interface {
	List(ctx context.Context) ([]models.ThemePreset, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ThemePreset, error)
}

// MediaStorage stores uploaded media and builds their public URLs.
type MediaStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
}

// API groups the editor HTTP handlers and their dependencies.
type API struct {
	manager   *editor.Manager
	templates TemplateLister
	revisions RevisionReader
	presets   PresetReader
	loader    *resources.Loader
	media     MediaStorage
	linker    *share.Linker
}

// NewAPI creates the handler group. media and linker may be nil when
// object storage or the public site URL are not configured.
func NewAPI(manager *editor.Manager, templates TemplateLister, revisions RevisionReader, presets PresetReader, loader *resources.Loader, media MediaStorage, linker *share.Linker) *API {
	return &API{
		manager:   manager,
		templates: templates,
		revisions: revisions,
		presets:   presets,
		loader:    loader,
		media:     media,
		linker:    linker,
	}
}

// stateResponse is the body of every endpoint that returns a session.
type stateResponse struct {
	editor.State
	SaveError string `json:"saveError,omitempty"`
	SectionID string `json:"sectionId,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// etag quotes a document digest for the ETag header.
func etag(digest string) string {
	return `"` + digest + `"`
}

// writeState writes the session state with the document digest as ETag.
func writeState(w http.ResponseWriter, status int, s *editor.Session, sectionID string) {
	resp := stateResponse{State: s.State(), SectionID: sectionID}
	if err := s.LastSaveError(); err != nil {
		resp.SaveError = err.Error()
	}
	w.Header().Set("ETag", etag(resp.Digest))
	writeJSON(w, status, resp)
}

// decodeJSON reads a JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return false
	}
	return true
}

// parseID parses a UUID URL parameter, writing 400 when it is malformed.
func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+param+".")
		return uuid.Nil, false
	}
	return id, true
}

// session opens the session named by the {id} URL parameter.
func (a *API) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return nil, false
	}
	s, err := a.manager.Open(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return s, true
}

// section opens the session and reads the {sid} parameter. Operations on a
// section that does not exist leave the document unchanged and still answer
// with the current state.
func (a *API) section(w http.ResponseWriter, r *http.Request) (*editor.Session, string, bool) {
	s, ok := a.session(w, r)
	if !ok {
		return nil, "", false
	}
	return s, chi.URLParam(r, "sid"), true
}

// writeServiceError maps an editor or history error to an HTTP status.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrNotFound):
		writeError(w, http.StatusNotFound, "Template not found.")
	case errors.Is(err, history.ErrNothingToUndo),
		errors.Is(err, history.ErrNothingToRedo),
		errors.Is(err, mutation.ErrDuplicateSectionID):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, history.ErrIndexOutOfRange):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Request canceled.")
	default:
		slog.Error("editor request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error.")
	}
}

// Health returns a simple JSON health check response along with the
// number of open editing sessions.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": a.manager.Len(),
	})
}

// ifNoneMatch reports whether the request's If-None-Match matches tag.
func ifNoneMatch(r *http.Request, tag string) bool {
	for _, v := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		v = strings.TrimSpace(v)
		if v == tag || v == "*" {
			return true
		}
	}
	return false
}
