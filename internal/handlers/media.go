// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"invitecraft/internal/storage"
)

// maxUploadSize is the maximum allowed media upload size (20 MB).
const maxUploadSize = 20 << 20

// allowedMediaTypes maps accepted MIME types to the extension used when
// the uploaded file has none.
var allowedMediaTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"audio/mpeg":      ".mp3",
	"audio/wave":      ".wav",
	"application/ogg": ".ogg",
	"font/woff":       ".woff",
	"font/woff2":      ".woff2",
	"font/ttf":        ".ttf",
	"font/otf":        ".otf",
}

// MediaUpload stores an image, audio or font file for a template and
// returns its key and public URL. The client then sets the URL as a
// property value.
func (a *API) MediaUpload(w http.ResponseWriter, r *http.Request) {
	if a.media == nil {
		writeError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}
	s, ok := a.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 20 MB.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}
	contentType := detectMediaType(header.Filename, data)
	ext, allowed := allowedMediaTypes[contentType]
	if !allowed {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File type %q is not allowed.", contentType))
		return
	}

	name := header.Filename
	if filepath.Ext(name) == "" {
		name += ext
	}
	key := storage.MediaKey(s.ID(), name)
	if err := a.media.Upload(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "Failed to upload file.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"key":  key,
		"url":  a.media.FileURL(key),
		"type": contentType,
		"size": len(data),
	})
}

// detectMediaType sniffs the content type, correcting SVG which is
// reported as XML or plain text.
func detectMediaType(filename string, data []byte) string {
	contentType := http.DetectContentType(data)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if strings.HasSuffix(strings.ToLower(filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		return "image/svg+xml"
	}
	return contentType
}
