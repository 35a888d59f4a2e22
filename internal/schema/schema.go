// SPDX-License-Identifier: MIT

// Package schema defines validation schemas: named sets of declarative
// field specs that compile onto the checking constructor grid. Schemas
// are the unit of storage and the unit of validation requests.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Schema is a named set of field specifications.
type Schema struct {
	ID          string               `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      map[string]FieldSpec `json:"fields" yaml:"fields"`

	Version   int       `json:"version,omitempty" yaml:"version,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Fingerprint returns a stable content hash over the schema's fields,
// usable as an ID. Two schemas with the same fields share a fingerprint
// regardless of metadata.
func (s *Schema) Fingerprint() string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		spec := s.Fields[name]
		// Marshal cannot fail for these field types; an empty spec still
		// contributes the field name.
		raw, _ := json.Marshal(spec)
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write(raw)
		h.Write([]byte{0})
	}
	return "sch-" + hex.EncodeToString(h.Sum(nil))[:16]
}

// EnsureID assigns the fingerprint as ID when none is set.
func (s *Schema) EnsureID() {
	if s.ID == "" {
		s.ID = s.Fingerprint()
	}
}
