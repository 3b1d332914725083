// Package field describes the filterable attributes of a record set.
//
// A Definition carries the key used in condition paths, a display title
// for natural-language output, and a Type that drives value normalization
// in the engine and operator availability in the registry.
package field

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is the declared type of a filterable field.
type Type string

const (
	TypeText        Type = "text"
	TypeNumber      Type = "number"
	TypeDate        Type = "date"
	TypeBoolean     Type = "boolean"
	TypeSelect      Type = "select"
	TypeMultiSelect Type = "multiselect"
)

// AllTypes lists every field type in declaration order.
var AllTypes = []Type{TypeText, TypeNumber, TypeDate, TypeBoolean, TypeSelect, TypeMultiSelect}

// Valid reports whether t is one of the declared field types.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeNumber, TypeDate, TypeBoolean, TypeSelect, TypeMultiSelect:
		return true
	}
	return false
}

// ParseType converts a string into a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return t, nil
}

// UnmarshalText rejects unknown field types at decode time.
func (t *Type) UnmarshalText(data []byte) error {
	parsed, err := ParseType(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Option is one enumerated choice of a select or multiselect field.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// Definition declares one filterable attribute.
type Definition struct {
	Key     string   `json:"key" yaml:"key"`
	Title   string   `json:"title" yaml:"title"`
	Type    Type     `json:"type" yaml:"type"`
	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`
}

// DisplayTitle returns Title, falling back to Key.
func (d Definition) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Key
}

// Set is an ordered collection of definitions indexed by key.
// The zero value is an empty set.
type Set struct {
	defs  []Definition
	index map[string]int
}

// NewSet builds a Set. Later definitions with a duplicate key replace earlier ones.
func NewSet(defs ...Definition) *Set {
	s := &Set{index: make(map[string]int, len(defs))}
	for _, d := range defs {
		if i, ok := s.index[d.Key]; ok {
			s.defs[i] = d
			continue
		}
		s.index[d.Key] = len(s.defs)
		s.defs = append(s.defs, d)
	}
	return s
}

// Lookup returns the definition for key.
func (s *Set) Lookup(key string) (Definition, bool) {
	if s == nil || s.index == nil {
		return Definition{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return Definition{}, false
	}
	return s.defs[i], true
}

// Has reports whether key is defined.
func (s *Set) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// TypeOf returns the declared type of key, or "" when the key is unknown.
func (s *Set) TypeOf(key string) Type {
	d, _ := s.Lookup(key)
	return d.Type
}

// Title returns the display title of key, or key itself when unknown.
func (s *Set) Title(key string) string {
	if d, ok := s.Lookup(key); ok {
		return d.DisplayTitle()
	}
	return key
}

// Definitions returns a copy of the definitions in declaration order.
func (s *Set) Definitions() []Definition {
	if s == nil {
		return nil
	}
	out := make([]Definition, len(s.defs))
	copy(out, s.defs)
	return out
}

// Len returns the number of definitions.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.defs)
}

// MarshalJSON encodes the set as a plain array of definitions.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Definitions())
}

// UnmarshalJSON decodes a plain array of definitions.
func (s *Set) UnmarshalJSON(data []byte) error {
	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return err
	}
	*s = *NewSet(defs...)
	return nil
}
