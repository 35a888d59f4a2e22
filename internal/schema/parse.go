// SPDX-License-Identifier: MIT

package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a single schema document, rejecting unknown keys and
// extra documents.
func ParseYAML(data []byte) (Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Schema
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Schema{}, errors.New("schema document is empty")
		}
		return Schema{}, fmt.Errorf("parse schema: %w", err)
	}
	if err := dec.Decode(new(Schema)); !errors.Is(err, io.EOF) {
		return Schema{}, errors.New("schema file must contain a single document")
	}
	return s, nil
}

// ParseJSON decodes a schema document, rejecting unknown keys. Numbers in
// defaults and literals keep their int/float distinction.
func ParseJSON(data []byte) (Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var s Schema
	if err := dec.Decode(&s); err != nil {
		return Schema{}, fmt.Errorf("parse schema: %w", err)
	}
	return s, nil
}
