// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/checkings/checkings/internal/metrics"
	"github.com/checkings/checkings/internal/ratelimit"
	"github.com/checkings/checkings/internal/registry"
	"github.com/checkings/checkings/internal/schema"
)

// schemaListResponse wraps GET /api/v1/schemas.
type schemaListResponse struct {
	Schemas []*schema.Schema `json:"schemas"`
	Count   int              `json:"count"`
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas, err := s.store.List(r.Context())
	if err != nil {
		metrics.IncSchemaOp("list", err)
		writeError(w, err)
		return
	}
	metrics.IncSchemaOp("list", nil)

	writeJSON(w, http.StatusOK, schemaListResponse{Schemas: schemas, Count: len(schemas)})
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeNotFound(w)
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// handleCreateSchema registers a schema document. The request body is
// the document itself; the ID is always the server-derived fingerprint,
// so identical field sets collide instead of multiplying. Names are
// unique here too, keeping GetByName unambiguous; directory sync goes
// through the store and updates an existing name as a version bump
// instead.
func (s *Server) handleCreateSchema(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	doc, err := schema.ParseJSON(body)
	if err != nil {
		writeError(w, err)
		return
	}
	if doc.Name == "" {
		writeError(w, errors.New("schema name is required"))
		return
	}
	if len(doc.Fields) == 0 {
		writeError(w, errors.New("schema needs at least one field"))
		return
	}

	if _, err := schema.Compile(doc); err != nil {
		writeUnprocessable(w, err)
		return
	}

	doc.ID = ""
	doc.EnsureID()
	if doc.Version <= 0 {
		doc.Version = 1
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if existing, err := s.store.GetByName(r.Context(), doc.Name); err == nil {
		writeConflict(w, fmt.Errorf("schema name %q already registered as %s", doc.Name, existing.ID))
		return
	} else if !errors.Is(err, registry.ErrNotFound) {
		writeError(w, err)
		return
	}
	if _, err := s.store.Get(r.Context(), doc.ID); err == nil {
		writeConflict(w, fmt.Errorf("schema %s already exists", doc.ID))
		return
	}

	if err := s.store.Put(r.Context(), &doc); err != nil {
		metrics.IncSchemaOp("create", err)
		writeError(w, err)
		return
	}
	metrics.IncSchemaOp("create", nil)
	s.refreshSchemaGauge(r.Context())

	s.audit.SchemaCreated(r.Context(), ratelimit.GetClientIP(r), doc.ID, doc.Name)
	writeJSON(w, http.StatusCreated, doc)
}

// handleUpdateSchema replaces the fields of an existing schema. The ID
// stays stable and the version bumps, which retires every cached verdict
// of the old version without a purge.
func (s *Server) handleUpdateSchema(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	current, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeNotFound(w)
			return
		}
		writeError(w, err)
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	doc, err := schema.ParseJSON(body)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(doc.Fields) == 0 {
		writeError(w, errors.New("schema needs at least one field"))
		return
	}

	if _, err := schema.Compile(doc); err != nil {
		writeUnprocessable(w, err)
		return
	}

	updated := *current
	updated.Fields = doc.Fields
	if doc.Name != "" {
		updated.Name = doc.Name
	}
	if doc.Description != "" {
		updated.Description = doc.Description
	}
	updated.Version = current.Version + 1
	updated.UpdatedAt = time.Now().UTC()

	if err := s.store.Put(r.Context(), &updated); err != nil {
		metrics.IncSchemaOp("update", err)
		writeError(w, err)
		return
	}
	metrics.IncSchemaOp("update", nil)

	s.engine.Invalidate(id)
	s.audit.SchemaUpdated(r.Context(), ratelimit.GetClientIP(r), id, updated.Version)
	writeJSON(w, http.StatusOK, &updated)
}

func (s *Server) handleDeleteSchema(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeNotFound(w)
			return
		}
		metrics.IncSchemaOp("delete", err)
		writeError(w, err)
		return
	}
	metrics.IncSchemaOp("delete", nil)
	s.refreshSchemaGauge(r.Context())

	s.engine.Invalidate(id)
	s.audit.SchemaDeleted(r.Context(), ratelimit.GetClientIP(r), id)
	w.WriteHeader(http.StatusNoContent)
}

// readBody reads a request body with the size guard applied. On failure
// it writes the error response and returns false.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeTooLarge(w, errors.New("request body too large"))
			return nil, false
		}
		writeError(w, errors.New("failed to read request body"))
		return nil, false
	}
	return body, true
}

// refreshSchemaGauge re-counts registered schemas after create/delete.
// Best effort; the gauge corrects itself on the next successful count.
func (s *Server) refreshSchemaGauge(ctx context.Context) {
	schemas, err := s.store.List(ctx)
	if err != nil {
		return
	}
	metrics.SetSchemasLoaded(len(schemas))
}
