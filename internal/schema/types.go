// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package schema

// PropertyType tags the kind of value a section property holds.
type PropertyType string

const (
	TypeText     PropertyType = "text"
	TypeTextarea PropertyType = "textarea"
	TypeNumber   PropertyType = "number"
	TypeBoolean  PropertyType = "boolean"
	TypeColor    PropertyType = "color"
	TypeImage    PropertyType = "image"
	TypeDate     PropertyType = "date"
	TypeTime     PropertyType = "time"
	TypeLocation PropertyType = "location"
	TypeSelect   PropertyType = "select"
	TypeList     PropertyType = "list"
	TypeFont     PropertyType = "font"
	TypeAudio    PropertyType = "audio"
)

var knownTypes = map[PropertyType]bool{
	TypeText: true, TypeTextarea: true, TypeNumber: true, TypeBoolean: true,
	TypeColor: true, TypeImage: true, TypeDate: true, TypeTime: true,
	TypeLocation: true, TypeSelect: true, TypeList: true, TypeFont: true,
	TypeAudio: true,
}

// Valid reports whether t is one of the known property types.
func (t PropertyType) Valid() bool {
	return knownTypes[t]
}

// IsMedia reports whether values of this type reference a media resource.
func (t PropertyType) IsMedia() bool {
	return t == TypeImage || t == TypeAudio || t == TypeFont
}

// Option is one choice of a select property.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Definition describes one configurable property of a section type.
// Definitions are immutable once the registry is loaded.
type Definition struct {
	Name        string       `yaml:"name" json:"name"`
	Type        PropertyType `yaml:"type" json:"type"`
	Label       string       `yaml:"label" json:"label"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Default     any          `yaml:"default,omitempty" json:"default,omitempty"`
	Min         *float64     `yaml:"min,omitempty" json:"min,omitempty"`
	Max         *float64     `yaml:"max,omitempty" json:"max,omitempty"`
	Step        *float64     `yaml:"step,omitempty" json:"step,omitempty"`
	Options     []Option     `yaml:"options,omitempty" json:"options,omitempty"`
	Group       string       `yaml:"group,omitempty" json:"group,omitempty"`
	Required    bool         `yaml:"required,omitempty" json:"required"`

	// Item is the element type of a list property (e.g. image for a gallery).
	Item PropertyType `yaml:"item,omitempty" json:"item,omitempty"`
}

// SectionType is the catalog entry for one kind of section.
type SectionType struct {
	Type        string       `yaml:"type" json:"type"`
	Label       string       `yaml:"label" json:"label"`
	Icon        string       `yaml:"icon,omitempty" json:"icon,omitempty"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Properties  []Definition `yaml:"properties" json:"properties"`
}

// Group is a set of definitions sharing a grouping category, used by
// editors to lay out property panels.
type Group struct {
	Name        string       `json:"name"`
	Definitions []Definition `json:"definitions"`
}

// EmptyValue returns the zero value stored for a property of type t when
// its definition has no default.
func EmptyValue(t PropertyType) any {
	switch t {
	case TypeBoolean:
		return false
	case TypeNumber:
		return float64(0)
	case TypeList:
		return []any{}
	case TypeLocation:
		return map[string]any{}
	default:
		return ""
	}
}
