// Package api exposes the gateway's HTTP surface next to the websocket
// endpoint: a health/stats document and the Prometheus metrics handler.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatgate/internal/gateway"
	"chatgate/pkg/interfaces"
)

// Server serves the non-websocket endpoints.
type Server struct {
	admission interfaces.AdmissionController
	registry  *gateway.Registry
	started   time.Time
}

// NewServer creates the HTTP API server.
func NewServer(admission interfaces.AdmissionController, registry *gateway.Registry) *Server {
	return &Server{
		admission: admission,
		registry:  registry,
		started:   time.Now(),
	}
}

// Register mounts the API endpoints on the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
}

// healthResponse is the JSON document served by /health. Sessions counts
// live connections on this process; AdmissionCounts is the shared store's
// view across all processes.
type healthResponse struct {
	Status          string           `json:"status"`
	UptimeSeconds   int64            `json:"uptime_seconds"`
	Sessions        int              `json:"sessions"`
	SessionClients  map[string]int   `json:"session_clients"`
	AdmissionCounts map[string]int64 `json:"admission_counts"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{
		Status:         "ok",
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
		Sessions:       s.registry.Count(),
		SessionClients: s.registry.PerClient(),
	}

	counts, err := s.admission.Snapshot(r.Context())
	if err != nil {
		// The store being down degrades health but the process itself
		// still answers.
		resp.Status = "degraded"
		log.Printf("health: admission snapshot failed: %v", err)
	} else {
		resp.AdmissionCounts = counts
	}

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("health: failed to encode response: %v", err)
	}
}
