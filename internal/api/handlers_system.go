// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/checkings/checkings/internal/cache"
)

// statusResponse is the body of GET /api/v1/status: a liveness summary
// plus a snapshot of the counters that matter at a glance.
type statusResponse struct {
	Status        string      `json:"status"`
	Version       string      `json:"version"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	Schemas       int         `json:"schemas"`
	Store         string      `json:"store"`
	Cache         cache.Stats `json:"cache"`
	Validations   int64       `json:"validations_total"`
	FieldFailures int64       `json:"field_failures_total"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:        "ok",
		Version:       s.version,
		UptimeSeconds: int64(s.Uptime().Seconds()),
		Store:         s.cfg.Store,
	}

	if schemas, err := s.store.List(r.Context()); err == nil {
		resp.Schemas = len(schemas)
	}
	if s.verdicts != nil {
		resp.Cache = s.verdicts.Stats()
	}

	// Counter totals come from the same registry /metrics serves, so
	// the two surfaces cannot disagree.
	if families, err := prometheus.DefaultGatherer.Gather(); err == nil {
		resp.Validations = counterTotal(families, "checkings_validations_total")
		resp.FieldFailures = counterTotal(families, "checkings_field_failures_total")
	}

	writeJSON(w, http.StatusOK, resp)
}

// counterTotal sums a counter family across all label combinations.
func counterTotal(families []*dto.MetricFamily, name string) int64 {
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return int64(total)
	}
	return 0
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if s.reports == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "report persistence is disabled"})
		return
	}

	rep, err := s.reports.Read(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeNotFound(w)
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}
