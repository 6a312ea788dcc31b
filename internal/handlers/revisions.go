// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"invitecraft/internal/models"
)

// TemplateRevisions lists the persisted revisions of a template, newest first.
func (a *API) TemplateRevisions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	revs, err := a.revisions.ListByTemplateID(r.Context(), id)
	if err != nil {
		slog.Error("list revisions failed", "template_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list revisions.")
		return
	}
	if revs == nil {
		revs = []models.TemplateRevision{}
	}
	writeJSON(w, http.StatusOK, revs)
}

// TemplateRevisionRestore loads a revision into the editor. Restoring is an
// ordinary change, so it can be undone and is autosaved.
func (a *API) TemplateRevisionRestore(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	rid, ok := parseID(w, r, "rid")
	if !ok {
		return
	}
	rev, err := a.revisions.FindByID(r.Context(), rid)
	if err != nil {
		slog.Error("find revision failed", "revision_id", rid, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load revision.")
		return
	}
	if rev == nil || rev.TemplateID.String() != s.ID() || rev.Snapshot == nil {
		writeError(w, http.StatusNotFound, "Revision not found.")
		return
	}
	s.RestoreSnapshot(rev.Snapshot, "Restore revision from "+rev.CreatedAt.UTC().Format("Jan 2 15:04"))
	writeState(w, http.StatusOK, s, "")
}
