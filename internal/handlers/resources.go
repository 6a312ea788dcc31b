// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"invitecraft/internal/resources"
)

// resourceView annotates an extracted item with its load state.
type resourceView struct {
	resources.Item
	Eager  bool `json:"eager"`
	Loaded bool `json:"loaded"`
}

// quality returns the ?quality= parameter, or ok=false when absent.
func quality(r *http.Request) (resources.NetworkQuality, bool) {
	q := r.URL.Query().Get("quality")
	if q == "" {
		return "", false
	}
	return resources.ParseQuality(q), true
}

// TemplateResources lists the media of the current document in load order.
// Items within the eager tiers for the requested quality are marked;
// without ?quality= the configured network signal decides.
func (a *API) TemplateResources(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	q, explicit := quality(r)
	if !explicit {
		q = a.loader.Quality()
	}
	eager := q.EagerThrough()

	items := s.Resources()
	out := make([]resourceView, len(items))
	for i, it := range items {
		out[i] = resourceView{
			Item:   it,
			Eager:  it.Priority <= eager,
			Loaded: a.loader.Loaded(it.URL),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quality":      q,
		"eagerThrough": eager,
		"items":        out,
	})
}

// TemplatePreload schedules the eager tiers of the current document. Without
// ?quality= the configured network signal is used.
func (a *API) TemplatePreload(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	items := s.Resources()

	var (
		rep resources.Report
		err error
	)
	if q, explicit := quality(r); explicit {
		rep, err = a.loader.ScheduleFor(r.Context(), q, items)
	} else {
		rep, err = a.loader.Schedule(r.Context(), items)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// TemplateRetryPreloads re-issues every failed preload.
func (a *API) TemplateRetryPreloads(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.session(w, r); !ok {
		return
	}
	rep, err := a.loader.RetryFailed(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
