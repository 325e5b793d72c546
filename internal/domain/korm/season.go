package korm

import (
	"fmt"

	"github.com/thorsenk/rffl-tools/internal/domain/model"
)

// RosterWeek is the week whose scores define the season's team roster.
const RosterWeek = 1

// ProcessSeason runs the competition across cfg's week window.
//
// The roster is fixed from week 1's scores; a season without week 1 data
// fails with ErrMissingRosterWeek. Weeks without data are skipped. The run
// stops early once at most one team is still alive.
func ProcessSeason(cfg SeasonConfig, scores model.SeasonScores) (*SeasonResult, error) {
	if cfg.Window.Start < 1 || cfg.Window.End < cfg.Window.Start {
		return nil, fmt.Errorf("season %d window %d-%d: %w", cfg.Season, cfg.Window.Start, cfg.Window.End, ErrInvalidWindow)
	}
	roster, ok := scores[RosterWeek]
	if !ok {
		return nil, fmt.Errorf("season %d: %w", cfg.Season, ErrMissingRosterWeek)
	}

	teams := roster.Teams()
	results := make(map[string]*TeamResult, len(teams))
	for _, code := range teams {
		results[code] = NewTeamResult(code)
	}

	var (
		weeks      []WeekResult
		endedEarly bool
	)
	for week := cfg.Window.Start; week <= cfg.Window.End; week++ {
		if activeCount(results) <= 1 {
			endedEarly = true
			break
		}
		set, ok := scores[week]
		if !ok {
			continue
		}
		weeks = append(weeks, ProcessWeek(week, set, results))
	}

	standings := AssignFinalStandings(results, scores, cfg.Payouts)

	var winner string
	if len(standings) > 0 && standings[0].FinalPlace == 1 {
		winner = standings[0].TeamCode
	}

	return &SeasonResult{
		Season:      cfg.Season,
		Window:      cfg.Window,
		EntryFee:    cfg.EntryFee,
		Pool:        cfg.Pool,
		Teams:       teams,
		Weeks:       weeks,
		TeamResults: results,
		Winner:      winner,
		EndedEarly:  endedEarly,
	}, nil
}
