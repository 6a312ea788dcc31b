// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"invitecraft/internal/share"
)

// maxQRSize caps the requested QR code edge length.
const maxQRSize = 1024

// TemplateQR serves a PNG QR code of the invitation's public link. The
// slug is the persisted one, so the code always matches the saved name.
func (a *API) TemplateQR(w http.ResponseWriter, r *http.Request) {
	if a.linker == nil {
		writeError(w, http.StatusServiceUnavailable, "Public site URL is not configured.")
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	size := share.DefaultSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > maxQRSize {
			writeError(w, http.StatusBadRequest, "size must be between 64 and 1024.")
			return
		}
		size = n
	}

	sl, err := a.templates.FindSlug(r.Context(), id)
	if err != nil {
		slog.Error("find template slug failed", "template_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load template.")
		return
	}
	if sl == "" {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}

	png, err := a.linker.QR(sl, size)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Share-URL", a.linker.URL(sl))
	w.Write(png)
}
