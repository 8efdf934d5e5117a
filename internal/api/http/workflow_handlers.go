package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sahayak/sahayak-sync/internal/domain/submission"
	"github.com/sahayak/sahayak-sync/internal/domain/workflow"
)

type workflowSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	EstimatedTime string `json:"estimatedTime"`
	Difficulty    string `json:"difficulty"`
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	defs := s.catalog.List(category)
	out := make([]workflowSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, workflowSummary{
			ID:            d.ID,
			Name:          d.Name,
			Description:   d.Description,
			Category:      d.Category,
			EstimatedTime: d.EstimatedTime,
			Difficulty:    d.Difficulty,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflowId")
	def, err := s.catalog.Get(id)
	if err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			respondError(w, http.StatusNotFound, "WORKFLOW_NOT_FOUND", "workflow not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, def)
}

func (s *Server) trackWorkflow(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "referenceNumber")
	info, err := s.trackingSvc.Track(r.Context(), ref)
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			respondError(w, http.StatusNotFound, "WORKFLOW_NOT_FOUND", "workflow not found with this reference number")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, info)
}
