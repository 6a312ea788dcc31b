// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resources

import (
	"net/url"
	"sort"
	"strings"

	"invitecraft/internal/models"
	"invitecraft/internal/mutation"
	"invitecraft/internal/schema"
)

const (
	// DefaultVisibleSections is how many leading sections are assumed to be
	// on the first screen.
	DefaultVisibleSections = 2

	// DefaultEagerListItems is how many entries of a media list (a gallery)
	// are labelled low before the rest become lazy.
	DefaultEagerListItems = 4
)

type extractConfig struct {
	visible   int
	listEager int
	resolve   func(string) string
	fontURL   func(string) string
}

// ExtractOption tunes Extract.
type ExtractOption func(*extractConfig)

// WithVisibleSections sets the initially visible threshold.
func WithVisibleSections(n int) ExtractOption {
	return func(c *extractConfig) {
		if n > 0 {
			c.visible = n
		}
	}
}

// WithEagerListItems sets how many list entries are labelled low.
func WithEagerListItems(n int) ExtractOption {
	return func(c *extractConfig) {
		if n >= 0 {
			c.listEager = n
		}
	}
}

// WithResolver maps values that are not absolute URLs (storage keys,
// relative paths) to fetchable URLs.
func WithResolver(resolve func(key string) string) ExtractOption {
	return func(c *extractConfig) { c.resolve = resolve }
}

// WithFontURL maps a font family name to its stylesheet URL.
func WithFontURL(fn func(family string) string) ExtractOption {
	return func(c *extractConfig) { c.fontURL = fn }
}

// GoogleFontURL returns the Google Fonts stylesheet URL for a family.
func GoogleFontURL(family string) string {
	return "https://fonts.googleapis.com/css2?family=" + url.QueryEscape(family) + "&display=swap"
}

// Extract walks the theme and every section of doc and returns the media it
// references, ordered by priority. A URL referenced more than once is
// reported once with its most urgent priority.
//
// Theme fonts and the first section are critical, the remaining sections
// above the visible threshold are high, the last section is low and the
// rest are medium. Entries of media lists are low or lazy, and everything
// in a hidden section is lazy. Properties the registry does not know are
// still scanned for absolute URLs.
func Extract(doc *models.Document, reg *schema.Registry, opts ...ExtractOption) []Item {
	cfg := extractConfig{
		visible:   DefaultVisibleSections,
		listEager: DefaultEagerListItems,
		fontURL:   GoogleFontURL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if doc == nil {
		return nil
	}

	c := collector{cfg: cfg, index: map[string]int{}}
	for _, family := range doc.Theme.FontFamilies() {
		c.font(family, Critical, "", "")
	}

	sections := mutation.Normalize(doc).Sections
	for i, s := range sections {
		prio := sectionPriority(i, len(sections), cfg.visible)
		if !s.Visible {
			prio = Lazy
		}
		c.section(reg, s, prio)
	}

	sort.SliceStable(c.items, func(i, j int) bool {
		return c.items[i].Priority < c.items[j].Priority
	})
	return c.items
}

func sectionPriority(i, n, visible int) Priority {
	switch {
	case i == 0:
		return Critical
	case i < visible:
		return High
	case i == n-1:
		return Low
	default:
		return Medium
	}
}

type collector struct {
	cfg   extractConfig
	items []Item
	index map[string]int
}

func (c *collector) section(reg *schema.Registry, s models.Section, prio Priority) {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := s.Properties[name]
		def, known := reg.Definition(s.Type, name)
		if !known {
			c.sniff(value, prio, s.ID, name)
			continue
		}
		switch {
		case def.Type == schema.TypeFont:
			if family, ok := value.(string); ok {
				c.font(family, prio, s.ID, name)
			}
		case def.Type.IsMedia():
			if v, ok := value.(string); ok {
				c.add(v, kindOf(def.Type), prio, s.ID, name)
			}
		case def.Type == schema.TypeList && def.Item.IsMedia():
			list, _ := value.([]any)
			for j, entry := range list {
				itemPrio := Low
				if prio == Lazy || j >= c.cfg.listEager {
					itemPrio = Lazy
				}
				if def.Item == schema.TypeFont {
					if family, ok := entry.(string); ok {
						c.font(family, itemPrio, s.ID, name)
					}
					continue
				}
				c.add(entryURL(entry), kindOf(def.Item), itemPrio, s.ID, name)
			}
		}
	}
}

// sniff picks absolute URLs out of values the registry has no definition
// for. Nested lists and maps are walked one level deep.
func (c *collector) sniff(value any, prio Priority, sectionID, property string) {
	switch v := value.(type) {
	case string:
		if isAbsoluteURL(v) {
			c.add(v, KindFromURL(v), prio, sectionID, property)
		}
	case []any:
		for _, e := range v {
			if s := entryURL(e); isAbsoluteURL(s) {
				c.add(s, KindFromURL(s), Lazy, sectionID, property)
			}
		}
	case map[string]any:
		if s := entryURL(v); isAbsoluteURL(s) {
			c.add(s, KindFromURL(s), prio, sectionID, property)
		}
	}
}

func (c *collector) font(family string, prio Priority, sectionID, property string) {
	family = strings.TrimSpace(family)
	if family == "" || c.cfg.fontURL == nil {
		return
	}
	c.add(c.cfg.fontURL(family), KindFont, prio, sectionID, property)
}

func (c *collector) add(raw string, kind Kind, prio Priority, sectionID, property string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	u := raw
	if !isAbsoluteURL(raw) && !strings.HasPrefix(raw, "/") && c.cfg.resolve != nil {
		u = c.cfg.resolve(raw)
	}
	if i, ok := c.index[u]; ok {
		if prio < c.items[i].Priority {
			c.items[i].Priority = prio
			c.items[i].SectionID = sectionID
			c.items[i].Property = property
		}
		return
	}
	c.index[u] = len(c.items)
	c.items = append(c.items, Item{URL: u, Kind: kind, Priority: prio, SectionID: sectionID, Property: property})
}

// entryURL returns the URL of a list entry, which is either a plain string
// or an object carrying it under "url" or "src".
func entryURL(entry any) string {
	switch v := entry.(type) {
	case string:
		return v
	case map[string]any:
		for _, key := range []string{"url", "src"} {
			if s, ok := v[key].(string); ok {
				return s
			}
		}
	}
	return ""
}

func kindOf(t schema.PropertyType) Kind {
	switch t {
	case schema.TypeImage:
		return KindImage
	case schema.TypeAudio:
		return KindAudio
	case schema.TypeFont:
		return KindFont
	}
	return KindOther
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}
