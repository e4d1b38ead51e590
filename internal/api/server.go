// Package api provides the HTTP API over stored runs.
// GET endpoints are public and read-only.
// POST /api/v1/runs starts a simulation and requires a bearer token.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hailsim/internal/config"
	"github.com/talgya/hailsim/internal/engine"
	"github.com/talgya/hailsim/internal/persistence"
)

const (
	maxConfigBytes = 1 << 20
	defaultLimit   = 20
	maxLimit       = 500

	// Cap for runs started over HTTP so one request cannot spin forever.
	maxRequestTicks = 1_000_000
)

// Server serves stored runs over HTTP.
type Server struct {
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// RunLimit bounds simulation starts per client per hour. 0 uses 30.
	RunLimit int
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	limit := s.RunLimit
	if limit == 0 {
		limit = 30
	}
	runLimiter := NewRateLimiter(limit, time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/v1/run/{id}", s.handleRunDetail)
	mux.HandleFunc("POST /api/v1/runs", s.adminOnly(RateLimitMiddleware(runLimiter, s.handleStartRun)))
	mux.HandleFunc("DELETE /api/v1/run/{id}", s.adminOnly(s.handleDeleteRun))
	return mux
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no HAILSIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	lastRun, err := s.DB.GetMeta("last_run_id")
	if err != nil {
		lastRun = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "hailsim",
		"strategies":  config.Strategies,
		"last_run_id": lastRun,
		"post_runs":   s.AdminKey != "",
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLimit)
	}

	runs, err := s.DB.ListRuns(r.URL.Query().Get("strategy"), limit)
	if err != nil {
		slog.Error("list runs failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	rec, err := s.DB.LoadRun(r.PathValue("id"))
	if errors.Is(err, persistence.ErrRunNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load run failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	err := s.DB.DeleteRun(r.PathValue("id"))
	if errors.Is(err, persistence.ErrRunNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("delete run failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStartRun runs a simulation from a partial JSON config over the
// defaults, stores it, and returns the result.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxConfigBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}

	cfg, err := config.Parse(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if cfg.MaxTicks == 0 || cfg.MaxTicks > maxRequestTicks {
		cfg.MaxTicks = maxRequestTicks
	}

	res, err := engine.Run(cfg)
	if errors.Is(err, engine.ErrTickLimit) {
		// Unfinished runs are not stored, but the partial tallies are returned.
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  err.Error(),
			"result": res,
		})
		return
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := s.DB.SaveRun(res, cfg); err != nil {
		slog.Error("save run failed", "run_id", res.RunID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := s.DB.SaveMeta("last_run_id", res.RunID); err != nil {
		slog.Warn("save last run id failed", "error", err)
	}

	writeJSON(w, http.StatusCreated, res)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
