// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ColorRole names a color slot of a Theme.
type ColorRole string

const (
	ColorPrimary    ColorRole = "primary"
	ColorSecondary  ColorRole = "secondary"
	ColorBackground ColorRole = "background"
	ColorText       ColorRole = "text"
	ColorAccent     ColorRole = "accent"
	ColorHeadings   ColorRole = "headings"
)

// FontRole names a font slot of a Theme.
type FontRole string

const (
	FontHeading FontRole = "heading"
	FontBody    FontRole = "body"
	FontAccent  FontRole = "accent"
)

// FontRoles assigns font families to typographic roles. Empty means the
// renderer's default.
type FontRoles struct {
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body,omitempty"`
	Accent  string `json:"accent,omitempty"`
}

// Theme is the color and font palette of a template. Color strings are
// stored verbatim; any syntax checking belongs to the renderer.
type Theme struct {
	Primary    string    `json:"primary"`
	Secondary  string    `json:"secondary"`
	Background string    `json:"background"`
	Text       string    `json:"text"`
	Accent     string    `json:"accent,omitempty"`
	Headings   string    `json:"headings,omitempty"`
	Fonts      FontRoles `json:"fonts"`
}

// DefaultTheme is the theme given to newly created templates.
func DefaultTheme() Theme {
	return Theme{
		Primary:    "#b76e79",
		Secondary:  "#f4e1d2",
		Background: "#fffaf5",
		Text:       "#333333",
		Fonts: FontRoles{
			Heading: "Playfair Display",
			Body:    "Lato",
		},
	}
}

// WithColor returns a copy of the theme with one color role replaced.
// ok is false for an unknown role, in which case the theme is unchanged.
func (t Theme) WithColor(role ColorRole, value string) (Theme, bool) {
	switch role {
	case ColorPrimary:
		t.Primary = value
	case ColorSecondary:
		t.Secondary = value
	case ColorBackground:
		t.Background = value
	case ColorText:
		t.Text = value
	case ColorAccent:
		t.Accent = value
	case ColorHeadings:
		t.Headings = value
	default:
		return t, false
	}
	return t, true
}

// WithFont returns a copy of the theme with one font role replaced.
func (t Theme) WithFont(role FontRole, family string) (Theme, bool) {
	switch role {
	case FontHeading:
		t.Fonts.Heading = family
	case FontBody:
		t.Fonts.Body = family
	case FontAccent:
		t.Fonts.Accent = family
	default:
		return t, false
	}
	return t, true
}

// FontFamilies returns the non-empty font families in role order.
func (t Theme) FontFamilies() []string {
	var out []string
	for _, f := range []string{t.Fonts.Heading, t.Fonts.Body, t.Fonts.Accent} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ThemePreset is a named theme that can be applied to a template in one step.
type ThemePreset struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Theme     Theme     `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
}
