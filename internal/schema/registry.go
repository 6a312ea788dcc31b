// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package schema is the static catalog of section types and their typed
// property definitions. The catalog is loaded once at process start from
// YAML and is read-only afterwards.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/mohae/deepcopy"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// catalogFile is the on-disk shape of a catalog document.
type catalogFile struct {
	Sections []SectionType `yaml:"sections"`
}

// Registry maps section types to their property definitions. The zero
// value and a nil *Registry behave as an empty catalog.
type Registry struct {
	types map[string]*SectionType
	order []string
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded catalog.
// It panics if the embedded catalog is malformed, which is a build defect.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := Load(embeddedCatalog)
		if err != nil {
			panic(fmt.Sprintf("schema: embedded catalog: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// Load parses a YAML catalog and validates it.
func Load(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("schema: parse catalog: %w", err)
	}

	reg := &Registry{types: make(map[string]*SectionType, len(file.Sections))}
	for i := range file.Sections {
		st := file.Sections[i]
		st.Type = strings.TrimSpace(st.Type)
		if st.Type == "" {
			return nil, fmt.Errorf("schema: section %d has an empty type", i)
		}
		if _, exists := reg.types[st.Type]; exists {
			return nil, fmt.Errorf("schema: duplicate section type %q", st.Type)
		}

		seen := make(map[string]bool, len(st.Properties))
		for j := range st.Properties {
			def := &st.Properties[j]
			def.Name = strings.TrimSpace(def.Name)
			if def.Name == "" {
				return nil, fmt.Errorf("schema: %s: property %d has an empty name", st.Type, j)
			}
			if seen[def.Name] {
				return nil, fmt.Errorf("schema: %s: duplicate property %q", st.Type, def.Name)
			}
			seen[def.Name] = true
			if !def.Type.Valid() {
				return nil, fmt.Errorf("schema: %s.%s: unknown property type %q", st.Type, def.Name, def.Type)
			}
			if def.Item != "" && !def.Item.Valid() {
				return nil, fmt.Errorf("schema: %s.%s: unknown item type %q", st.Type, def.Name, def.Item)
			}
			if def.Label == "" {
				def.Label = def.Name
			}
			def.Default = normalizeValue(def.Default)
		}

		reg.types[st.Type] = &st
		reg.order = append(reg.order, st.Type)
	}
	return reg, nil
}

// normalizeValue converts YAML-decoded values to the shapes produced by
// encoding/json so that defaults compare equal to persisted values.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// Has reports whether the section type is in the catalog.
func (r *Registry) Has(sectionType string) bool {
	if r == nil {
		return false
	}
	_, ok := r.types[sectionType]
	return ok
}

// SectionTypes lists the catalog entries in catalog order.
func (r *Registry) SectionTypes() []SectionType {
	if r == nil {
		return nil
	}
	out := make([]SectionType, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.types[name])
	}
	return out
}

// Definitions returns the property definitions of a section type in catalog
// order. An unknown type has no definitions.
func (r *Registry) Definitions(sectionType string) []Definition {
	if r == nil {
		return nil
	}
	st, ok := r.types[sectionType]
	if !ok {
		return nil
	}
	out := make([]Definition, len(st.Properties))
	copy(out, st.Properties)
	return out
}

// Schema returns the definitions of a section type keyed by property name.
// Unknown section types yield an empty, non-nil map so that editors degrade
// to "no editable properties".
func (r *Registry) Schema(sectionType string) map[string]Definition {
	defs := r.Definitions(sectionType)
	out := make(map[string]Definition, len(defs))
	for _, d := range defs {
		out[d.Name] = d
	}
	return out
}

// Definition looks up a single property definition.
func (r *Registry) Definition(sectionType, name string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	st, ok := r.types[sectionType]
	if !ok {
		return Definition{}, false
	}
	for _, d := range st.Properties {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// DefaultProperties builds the initial property map for a new section:
// each definition's default, or the type's empty value when it has none.
// The returned map and its values are fresh copies.
func (r *Registry) DefaultProperties(sectionType string) map[string]any {
	defs := r.Definitions(sectionType)
	out := make(map[string]any, len(defs))
	for _, d := range defs {
		out[d.Name] = defaultValue(d)
	}
	return out
}

func defaultValue(d Definition) any {
	if d.Default != nil {
		return deepcopy.Copy(d.Default)
	}
	return EmptyValue(d.Type)
}

// Resolve returns the properties a renderer should see: the stored values,
// with defaults filled in for every required property that is missing.
// Unknown keys are passed through. The input map is not modified.
func (r *Registry) Resolve(sectionType string, props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	for _, d := range r.Definitions(sectionType) {
		if !d.Required {
			continue
		}
		if _, ok := out[d.Name]; !ok {
			out[d.Name] = defaultValue(d)
		}
	}
	return out
}

// Groups buckets the definitions of a section type by group name, in order
// of first appearance. Ungrouped definitions land in "general".
func (r *Registry) Groups(sectionType string) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, d := range r.Definitions(sectionType) {
		name := d.Group
		if name == "" {
			name = "general"
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Definitions = append(groups[i].Definitions, d)
	}
	return groups
}
