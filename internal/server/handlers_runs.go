package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/db"
)

// RunResponse is a recorded run with its sections
type RunResponse struct {
	db.Run
	Sections []db.RunSection `json:"sections"`
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	run, err := s.runs.GetRun(r.Context(), runID)
	if err != nil {
		s.logger.Error("failed to get run", "run_id", runID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	if run == nil {
		err := &ErrRunNotFound{RunID: runID}
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sections, err := s.runs.ListSections(r.Context(), runID)
	if err != nil {
		s.logger.Error("failed to list run sections", "run_id", runID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to get run sections")
		return
	}
	if sections == nil {
		sections = []db.RunSection{}
	}
	writeJSON(w, http.StatusOK, RunResponse{Run: *run, Sections: sections})
}
