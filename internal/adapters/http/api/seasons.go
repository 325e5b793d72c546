package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/thorsenk/rffl-tools/internal/adapters/mq/queue"
	"github.com/thorsenk/rffl-tools/internal/adapters/report"
)

const (
	minSeason = 1000
	maxSeason = 9999
)

// SeasonsHandler serves season submission and the processed season reads.
type SeasonsHandler struct {
	deps Dependencies
	now  func() time.Time
}

// NewSeasonsHandler creates a seasons handler. now stamps rendered documents.
func NewSeasonsHandler(deps Dependencies, now func() time.Time) *SeasonsHandler {
	return &SeasonsHandler{deps: deps, now: now}
}

// HandleSeasons handles GET /seasons (listing) and POST /seasons (submit).
func (h *SeasonsHandler) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.submit(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SeasonsHandler) list(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.deps.Seasons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, seasons)
}

func (h *SeasonsHandler) submit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_season"
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	id, duplicate, err := h.deps.Submit(r.Context(), req.Season)
	switch {
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	case errors.Is(err, queue.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", JobID: id.String()})
}

// HandleSeason handles GET /seasons/{year}.
func (h *SeasonsHandler) HandleSeason(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	season, ok := seasonParam(w, r, "api.get_season")
	if !ok {
		return
	}
	res, err := h.deps.Season(r.Context(), season)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.NewDocument(res, h.now()))
}

// HandleStandings handles GET /seasons/{year}/standings[?week=N].
func (h *SeasonsHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_standings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	season, ok := seasonParam(w, r, op)
	if !ok {
		return
	}

	week := 0
	if v := r.URL.Query().Get("week"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("invalid week %q", v)))
			return
		}
		week = n
	}

	entries, err := h.deps.Standings(r.Context(), season, week)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleMarkdown handles GET /seasons/{year}/markdown.
func (h *SeasonsHandler) HandleMarkdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	season, ok := seasonParam(w, r, "api.get_markdown")
	if !ok {
		return
	}
	md, err := h.deps.Markdown(r.Context(), season)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(md))
}

// seasonParam parses the {year} path value, writing a 400 when it is not a year.
func seasonParam(w http.ResponseWriter, r *http.Request, op string) (int, bool) {
	v := r.PathValue("year")
	season, err := strconv.Atoi(v)
	if err != nil || season < minSeason || season > maxSeason {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("invalid season %q", v)))
		return 0, false
	}
	return season, true
}
