// SPDX-License-Identifier: MIT

package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverYAML = `
name: server
description: listener settings
fields:
  port:
    port: true
    default: 8080
  host:
    type: str
    hostname: true
  ratio:
    type: float
    between: [0, 1]
`

func TestParseYAML(t *testing.T) {
	s, err := ParseYAML([]byte(serverYAML))
	require.NoError(t, err)
	assert.Equal(t, "server", s.Name)
	require.Len(t, s.Fields, 3)
	assert.True(t, s.Fields["port"].Port)
	assert.Equal(t, 8080, s.Fields["port"].Default)
	assert.Equal(t, []float64{0, 1}, s.Fields["ratio"].Between)

	_, err = Compile(s)
	require.NoError(t, err)
}

func TestParseYAML_UnknownKnob(t *testing.T) {
	doc := `
name: server
fields:
  port:
    prot: true
`
	_, err := ParseYAML([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prot")
}

func TestParseYAML_Empty(t *testing.T) {
	_, err := ParseYAML(nil)
	require.EqualError(t, err, "schema document is empty")
}

func TestParseYAML_MultiDocument(t *testing.T) {
	doc := `
name: one
fields:
  a: {type: int}
---
name: two
fields:
  b: {type: int}
`
	_, err := ParseYAML([]byte(doc))
	require.EqualError(t, err, "schema file must contain a single document")
}

func TestParseJSON(t *testing.T) {
	doc := `{
		"name": "server",
		"fields": {
			"port": {"port": true, "default": 8080},
			"level": {"literals": ["debug", "info", 3]}
		}
	}`
	s, err := ParseJSON([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, int64(8080), s.Fields["port"].Default)
	assert.Equal(t, []any{"debug", "info", int64(3)}, s.Fields["level"].Literals)
}

func TestParseJSON_UnknownKnob(t *testing.T) {
	doc := `{"name": "server", "fields": {"port": {"prot": true}}}`
	_, err := ParseJSON([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prot")
}

func TestFieldSpec_JSONRoundTripKeepsIntDefault(t *testing.T) {
	in := Schema{
		ID:   "sch-a",
		Name: "server",
		Fields: map[string]FieldSpec{
			"port":  {Type: "int", Default: 8080},
			"level": {Literals: []any{1, 2.5, "x"}},
		},
	}
	buf, err := json.Marshal(in)
	require.NoError(t, err)

	var out Schema
	require.NoError(t, json.Unmarshal(buf, &out))
	assert.Equal(t, int64(8080), out.Fields["port"].Default)
	assert.Equal(t, []any{int64(1), 2.5, "x"}, out.Fields["level"].Literals)

	fields, err := Compile(out)
	require.NoError(t, err)
	vals, err := fields.Validate(map[string]any{"level": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(8080), vals["port"])
}

func TestCoerceNumbers(t *testing.T) {
	var values map[string]any
	dec := json.NewDecoder(strings.NewReader(`{"a": 2, "b": 2.5, "c": [1, 2.5, "x"]}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&values))

	out, ok := CoerceNumbers(values).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(2), out["a"])
	assert.Equal(t, 2.5, out["b"])
	assert.Equal(t, []any{int64(1), 2.5, "x"}, out["c"])
}
