package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/apiwatch/internal/core/domain"
)

// Server exposes the health record and manual controls over HTTP.
type Server struct {
	tracker *Tracker
	server  *http.Server
}

// StatusResponse is the payload for GET /status and the mutating
// endpoints.
type StatusResponse struct {
	Status      domain.Status  `json:"status"`
	Summary     domain.Summary `json:"summary"`
	Quality     domain.Quality `json:"quality"`
	LastChecked string         `json:"last_checked"`
}

// NewServer creates a status server on the given port.
func NewServer(tracker *Tracker, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		tracker: tracker,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/check", s.handleCheck)
	mux.HandleFunc("/refresh", s.handleCheck)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/offline", s.handleOffline)
	mux.HandleFunc("/clear", s.handleClear)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeStatus(w, s.tracker.Status())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.writeStatus(w, s.tracker.Check(r.Context()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.writeStatus(w, s.tracker.ResetAndRetry(r.Context()))
}

func (s *Server) handleOffline(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.writeStatus(w, s.tracker.ForceOffline())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.writeStatus(w, s.tracker.ClearErrors())
}

func (s *Server) writeStatus(w http.ResponseWriter, snap domain.Status) {
	resp := StatusResponse{
		Status:      snap,
		Summary:     snap.Summary(),
		Quality:     snap.Quality(),
		LastChecked: snap.LastCheckedDisplay(time.Now()),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
