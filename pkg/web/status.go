// -------------------------------------------------------------------------------
// vault-bootstrap - Status API
//
// JSON view of the token renewal tasks and a health endpoint. Served
// alongside Prometheus metrics on the same port.
// -------------------------------------------------------------------------------

// Package web provides the HTTP status endpoints.
package web

// -------------------------------------------------------------------------
// IMPORTS
// -------------------------------------------------------------------------

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"vault-bootstrap/pkg/health"
	"vault-bootstrap/pkg/vault"
)

// -------------------------------------------------------------------------
// TYPES
// -------------------------------------------------------------------------

// Status provides HTTP handlers for renewal task status.
type Status struct {
	tasks         health.TaskSource
	healthChecker health.Checker
}

// StatusResponse is the body of /api/status.
type StatusResponse struct {
	Hostname string             `json:"hostname"`
	Tasks    []vault.TaskStatus `json:"tasks"`
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Tasks  int    `json:"tasks"`
	Error  string `json:"error,omitempty"`
}

// -------------------------------------------------------------------------
// CONSTRUCTOR
// -------------------------------------------------------------------------

// NewStatus creates the status handlers.
func NewStatus(tasks health.TaskSource, healthChecker health.Checker) *Status {
	return &Status{
		tasks:         tasks,
		healthChecker: healthChecker,
	}
}

// -------------------------------------------------------------------------
// PUBLIC METHODS
// -------------------------------------------------------------------------

// RegisterHandlers registers the status HTTP handlers.
func (s *Status) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", s.handleAPIStatus)
	mux.HandleFunc("/healthz", s.handleHealth)
}

// -------------------------------------------------------------------------
// HTTP HANDLERS
// -------------------------------------------------------------------------

// handleAPIStatus returns renewal task status as JSON.
func (s *Status) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tasks := s.tasks.Snapshot()
	if tasks == nil {
		tasks = []vault.TaskStatus{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(StatusResponse{
		Hostname: getHostname(),
		Tasks:    tasks,
	})
}

// handleHealth reports 503 once a renewal task has failed.
func (s *Status) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	result, err := s.healthChecker.Check()
	if err != nil {
		slog.Error("Health check error", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "error", Error: err.Error()})
		return
	}

	if !result.Success {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "unhealthy", Tasks: result.Tasks, Error: result.Error.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ok", Tasks: result.Tasks})
}

// -------------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------------

func getHostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
