// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import "github.com/go-chi/chi/v5"

// Routes mounts the editor API on r. The router package mounts it under /api.
func (a *API) Routes(r chi.Router) {
	r.Get("/schema", a.SchemaPalette)
	r.Get("/schema/{type}", a.SchemaType)
	r.Get("/themes", a.ThemesList)

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", a.TemplatesList)
		r.Post("/", a.TemplateCreate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.TemplateOpen)
			r.Delete("/session", a.TemplateCloseSession)
			r.Get("/status", a.TemplateStatus)
			r.Post("/save", a.TemplateSave)
			r.Put("/meta", a.TemplateMeta)

			// Theme
			r.Put("/theme", a.TemplateTheme)
			r.Put("/theme/colors/{role}", a.TemplateThemeColor)
			r.Put("/theme/fonts/{role}", a.TemplateThemeFont)
			r.Post("/theme/preset/{presetID}", a.TemplateApplyPreset)

			// Sections
			r.Post("/sections", a.SectionAdd)
			r.Put("/sections/order", a.SectionsReorder)
			r.Route("/sections/{sid}", func(r chi.Router) {
				r.Delete("/", a.SectionRemove)
				r.Post("/duplicate", a.SectionDuplicate)
				r.Post("/move", a.SectionMove)
				r.Put("/visibility", a.SectionVisibility)
				r.Put("/properties/{name}", a.SectionProperty)
			})

			// History
			r.Post("/undo", a.TemplateUndo)
			r.Post("/redo", a.TemplateRedo)
			r.Get("/history", a.TemplateHistory)
			r.Post("/history/{index}/restore", a.TemplateHistoryRestore)

			// Revisions
			r.Get("/revisions", a.TemplateRevisions)
			r.Post("/revisions/{rid}/restore", a.TemplateRevisionRestore)

			// Resources
			r.Get("/resources", a.TemplateResources)
			r.Post("/resources/preload", a.TemplatePreload)
			r.Post("/resources/retry", a.TemplateRetryPreloads)

			// Sharing and media
			r.Get("/qr.png", a.TemplateQR)
			r.Post("/media", a.MediaUpload)
		})
	})
}
