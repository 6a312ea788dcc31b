// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"

	"invitecraft/internal/editor"
)

// Validation limits for template fields.
const (
	maxNameLen        = 200
	maxDescriptionLen = 1_000
	maxCategoryLen    = 100
	maxEventTypeLen   = 100
	maxThemeValueLen  = 200
	maxSectionTypeLen = 100
	maxPropertyLen    = 100
)

// validateName checks a template name and returns the first error found.
func validateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	return ""
}

// validateMeta checks the optional metadata fields of an update.
func validateMeta(m editor.Meta) string {
	if m.Name != nil {
		if msg := validateName(*m.Name); msg != "" {
			return msg
		}
	}
	if m.Description != nil && utf8.RuneCountInString(*m.Description) > maxDescriptionLen {
		return "Description is too long (max 1,000 characters)."
	}
	if m.Category != nil && utf8.RuneCountInString(*m.Category) > maxCategoryLen {
		return "Category is too long (max 100 characters)."
	}
	if m.EventType != nil && utf8.RuneCountInString(*m.EventType) > maxEventTypeLen {
		return "Event type is too long (max 100 characters)."
	}
	return ""
}

// validateThemeValue checks a color or font family value.
func validateThemeValue(v string) string {
	if utf8.RuneCountInString(v) > maxThemeValueLen {
		return "Value is too long (max 200 characters)."
	}
	return ""
}

// validateIdentifier checks a section type or property name.
func validateIdentifier(kind, v string, max int) string {
	if strings.TrimSpace(v) == "" {
		return kind + " is required."
	}
	if len(v) > max {
		return kind + " is too long."
	}
	return ""
}
