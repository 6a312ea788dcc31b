// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"log/slog"
	"time"

	"invitecraft/internal/resources"
	"invitecraft/internal/schema"
)

const warmTimeout = 30 * time.Second

// WarmCritical preloads the critical media of every changed document in the
// background. It returns the unsubscribe function.
func WarmCritical(bus *Bus, loader *resources.Loader, reg *schema.Registry, opts ...resources.ExtractOption) func() {
	return bus.Subscribe(DocumentChanged, func(_ context.Context, ev Event) error {
		var critical []resources.Item
		for _, it := range resources.Extract(ev.Document, reg, opts...) {
			if it.Priority == resources.Critical && !loader.Loaded(it.URL) {
				critical = append(critical, it)
			}
		}
		if len(critical) == 0 {
			return nil
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
			defer cancel()
			rep, err := loader.Schedule(ctx, critical)
			if err != nil {
				slog.Debug("warm critical media", "template_id", ev.TemplateID, "error", err)
				return
			}
			if len(rep.Failed) > 0 {
				slog.Debug("warm critical media", "template_id", ev.TemplateID, "failed", len(rep.Failed))
			}
		}()
		return nil
	})
}
