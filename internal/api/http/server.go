package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	appSubmission "github.com/sahayak/sahayak-sync/internal/application/submission"
	appTracking "github.com/sahayak/sahayak-sync/internal/application/tracking"
	"github.com/sahayak/sahayak-sync/internal/domain/workflow"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	submissionSvc *appSubmission.Service
	trackingSvc   *appTracking.Service
	catalog       *workflow.Catalog
	logger        zerolog.Logger
}

// NewServer creates the API server.
func NewServer(
	submissionSvc *appSubmission.Service,
	trackingSvc *appTracking.Service,
	catalog *workflow.Catalog,
	logger zerolog.Logger,
) *Server {
	return &Server{
		submissionSvc: submissionSvc,
		trackingSvc:   trackingSvc,
		catalog:       catalog,
		logger:        logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/sync", func(r chi.Router) {
			r.Post("/", s.handleSync)
			r.Get("/failures", s.listSyncFailures)
		})
		r.Route("/workflows", func(r chi.Router) {
			r.Get("/", s.listWorkflows)
			r.Get("/track/{referenceNumber}", s.trackWorkflow)
			r.Get("/{workflowId}", s.getWorkflow)
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
