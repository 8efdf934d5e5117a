package httpapi

import (
	"net/http"
	"strconv"

	"github.com/sahayak/sahayak-sync/internal/domain/sync"
)

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req sync.BatchRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_SYNC_DATA", err.Error())
		return
	}
	if req.Items == nil {
		respondError(w, http.StatusBadRequest, "INVALID_SYNC_DATA", "items array is required")
		return
	}
	resp := s.submissionSvc.ProcessBatch(r.Context(), &req)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) listSyncFailures(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "deviceId is required")
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid limit")
			return
		}
		limit = n
	}
	failures, err := s.submissionSvc.ListFailures(r.Context(), deviceID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"failures": failures,
		"count":    len(failures),
	})
}
