// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/thorsenk/rffl-tools/internal/adapters/repository"
	"github.com/thorsenk/rffl-tools/internal/domain/korm"
	"github.com/thorsenk/rffl-tools/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit queues a season for processing. duplicate is true when the
	// season is already queued or running.
	Submit(ctx context.Context, season int) (jobID uuid.UUID, duplicate bool, err error)

	Seasons(ctx context.Context) ([]types.SeasonSummary, error)
	Season(ctx context.Context, season int) (*korm.SeasonResult, error)
	// Standings returns final standings for week 0, otherwise as of week.
	Standings(ctx context.Context, season, week int) ([]types.StandingEntry, error)
	Markdown(ctx context.Context, season int) (string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	seasonsHandler *SeasonsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		seasonsHandler: NewSeasonsHandler(deps, time.Now),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/seasons", MetricsMiddleware(s.seasonsHandler.HandleSeasons, "seasons"))
	mux.HandleFunc("/seasons/{year}", MetricsMiddleware(s.seasonsHandler.HandleSeason, "season"))
	mux.HandleFunc("/seasons/{year}/standings", MetricsMiddleware(s.seasonsHandler.HandleStandings, "standings"))
	mux.HandleFunc("/seasons/{year}/markdown", MetricsMiddleware(s.seasonsHandler.HandleMarkdown, "markdown"))
}

// submitRequest mirrors the OpenAPI schema for POST /seasons.
type submitRequest struct {
	Season int `json:"season"`
}

func (s submitRequest) validate() error {
	if s.Season < minSeason || s.Season > maxSeason {
		return errors.New("season must be a four-digit year")
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	JobID     string `json:"job_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound reports whether err means the season or week does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, korm.ErrWeekNotFound)
}

// writeLookupError maps read-path errors to 404 or 500.
func writeLookupError(w http.ResponseWriter, err error) {
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
