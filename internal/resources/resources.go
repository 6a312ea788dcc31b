// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package resources derives the media a template document references and
// preloads it in priority order, so that what the first screen shows is
// requested before anything further down the page.
package resources

import (
	"fmt"
	"path"
	"strings"
)

// Kind classifies a media resource.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindFont  Kind = "font"
	KindOther Kind = "other"
)

var extKinds = map[string]Kind{
	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage, ".gif": KindImage,
	".webp": KindImage, ".svg": KindImage, ".avif": KindImage,
	".mp3": KindAudio, ".ogg": KindAudio, ".wav": KindAudio, ".m4a": KindAudio,
	".aac": KindAudio, ".flac": KindAudio,
	".woff": KindFont, ".woff2": KindFont, ".ttf": KindFont, ".otf": KindFont,
}

// KindFromURL guesses the kind of a resource from its file extension.
func KindFromURL(u string) Kind {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if k, ok := extKinds[strings.ToLower(path.Ext(u))]; ok {
		return k
	}
	return KindOther
}

// Priority orders resources for loading. Lower values load first.
type Priority int

const (
	Critical Priority = iota
	High
	Medium
	Low
	Lazy
)

var priorityNames = [...]string{"critical", "high", "medium", "low", "lazy"}

func (p Priority) String() string {
	if p < Critical || p > Lazy {
		return "unknown"
	}
	return priorityNames[p]
}

// MarshalText encodes the priority by name.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a priority name.
func (p *Priority) UnmarshalText(text []byte) error {
	for i, name := range priorityNames {
		if string(text) == name {
			*p = Priority(i)
			return nil
		}
	}
	return fmt.Errorf("unknown priority %q", text)
}

// NetworkQuality is the externally measured connection quality.
type NetworkQuality string

const (
	QualitySlow   NetworkQuality = "slow"
	QualityMedium NetworkQuality = "medium"
	QualityFast   NetworkQuality = "fast"
)

// ParseQuality maps a string to a NetworkQuality, falling back to medium.
func ParseQuality(s string) NetworkQuality {
	switch NetworkQuality(strings.ToLower(strings.TrimSpace(s))) {
	case QualitySlow:
		return QualitySlow
	case QualityFast:
		return QualityFast
	default:
		return QualityMedium
	}
}

// EagerThrough returns the lowest priority tier that is requested eagerly on
// this connection. Lazy resources are never eager.
func (q NetworkQuality) EagerThrough() Priority {
	switch q {
	case QualitySlow:
		return Critical
	case QualityFast:
		return Low
	default:
		return High
	}
}

// Item is one media resource referenced by a document.
type Item struct {
	URL       string   `json:"url"`
	Kind      Kind     `json:"kind"`
	Priority  Priority `json:"priority"`
	SectionID string   `json:"sectionId,omitempty"`
	Property  string   `json:"property,omitempty"`
}
