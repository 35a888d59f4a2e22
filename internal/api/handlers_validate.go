// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/checkings/checkings/internal/engine"
	"github.com/checkings/checkings/internal/ratelimit"
	"github.com/checkings/checkings/internal/schema"
)

// validateRequest is the body of POST /api/v1/validate. The schema is
// referenced by ID or name, or supplied inline; inline documents are
// validated against without being registered.
type validateRequest struct {
	SchemaID   string          `json:"schema_id,omitempty"`
	SchemaName string          `json:"schema,omitempty"`
	Inline     json.RawMessage `json:"inline_schema,omitempty"`
	Payload    map[string]any  `json:"payload"`
}

// batchRequest is the body of POST /api/v1/validate/batch.
type batchRequest struct {
	SchemaID   string           `json:"schema_id,omitempty"`
	SchemaName string           `json:"schema,omitempty"`
	Payloads   []map[string]any `json:"payloads"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if !s.allowClient(r) {
		writeRateLimited(w)
		return
	}

	var req validateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Payload == nil {
		writeError(w, errors.New("payload is required"))
		return
	}
	payload, _ := schema.CoerceNumbers(req.Payload).(map[string]any)

	if len(req.Inline) > 0 {
		if req.SchemaID != "" || req.SchemaName != "" {
			writeError(w, errors.New("inline_schema and a schema reference are mutually exclusive"))
			return
		}
		s.validateInline(w, r, req.Inline, payload)
		return
	}

	rep, err := s.engine.Validate(r.Context(), engine.Ref{ID: req.SchemaID, Name: req.SchemaName}, payload)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	if !rep.Valid {
		s.audit.ValidationRejected(r.Context(), ratelimit.GetClientIP(r), rep.SchemaID, len(rep.Failures))
	}
	writeJSON(w, http.StatusOK, rep)
}

// validateInline compiles the supplied document and validates against
// it. The document never reaches the registry.
func (s *Server) validateInline(w http.ResponseWriter, r *http.Request, doc json.RawMessage, payload map[string]any) {
	parsed, err := schema.ParseJSON(doc)
	if err != nil {
		writeUnprocessable(w, err)
		return
	}

	rep, err := s.engine.ValidateInline(r.Context(), &parsed, payload)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	if !rep.Valid {
		s.audit.ValidationRejected(r.Context(), ratelimit.GetClientIP(r), rep.SchemaID, len(rep.Failures))
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleValidateBatch(w http.ResponseWriter, r *http.Request) {
	if !s.allowClient(r) {
		writeRateLimited(w)
		return
	}

	var req batchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	for i, payload := range req.Payloads {
		req.Payloads[i], _ = schema.CoerceNumbers(payload).(map[string]any)
	}

	result, err := s.engine.ValidateBatch(r.Context(), engine.Ref{ID: req.SchemaID, Name: req.SchemaName}, req.Payloads)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	if result.Failed > 0 {
		s.audit.ValidationRejected(r.Context(), ratelimit.GetClientIP(r), result.SchemaID, result.Failed)
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeBody decodes a JSON request body with the size guard applied.
// Numbers decode as json.Number so the int/float distinction survives
// for the kind checks. On failure it writes the error response and
// returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeTooLarge(w, errors.New("request body too large"))
			return false
		}
		writeError(w, errors.New("invalid JSON body"))
		return false
	}
	return true
}

// writeEngineError maps engine errors onto HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrSchemaNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, engine.ErrNoSchemaRef), errors.Is(err, engine.ErrEmptyBatch):
		writeError(w, err)
	case errors.Is(err, engine.ErrBatchTooLarge):
		writeTooLarge(w, err)
	case errors.Is(err, engine.ErrSchemaInvalid):
		writeUnprocessable(w, err)
	default:
		writeError(w, err)
	}
}
