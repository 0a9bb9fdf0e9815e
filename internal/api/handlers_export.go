package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/davargas/facturex/internal/export"
)

func (s *Server) handleStartExport(w http.ResponseWriter, r *http.Request) {
	var req export.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	job, err := s.controller.StartJob(req)
	if errors.Is(err, export.ErrExportInFlight) {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, job.Snapshot())
}

func (s *Server) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.controller.Job(chi.URLParam(r, "jobID"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleDismissExport(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Dismiss(chi.URLParam(r, "jobID")); err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportArtifact(w http.ResponseWriter, r *http.Request) {
	job, err := s.controller.Job(chi.URLParam(r, "jobID"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	if job.State() != export.StateCompleted {
		jsonError(w, "export is not completed", http.StatusConflict)
		return
	}
	name, path := job.ArtifactPath()
	w.Header().Set("Content-Type", contentTypeFor(name))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

// handleEstimate computes the advisory size estimate for the filters in
// the query string without starting a job or touching the network.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := export.Request{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Format:    export.Format(q.Get("format")),
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, export.EstimateSize(req))
}

func contentTypeFor(name string) string {
	switch {
	case strings.HasSuffix(name, ".csv"):
		return "text/csv"
	case strings.HasSuffix(name, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(name, ".zip"):
		return "application/zip"
	}
	return "application/octet-stream"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
