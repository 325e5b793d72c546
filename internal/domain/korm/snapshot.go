package korm

import (
	"fmt"
	"sort"
)

// SnapshotEntry is a team's standing as of a given week.
type SnapshotEntry struct {
	Place      int    `json:"place"`
	Team       string `json:"team"`
	Strikes    int    `json:"strikes"`
	Status     Status `json:"status"`
	Eliminated bool   `json:"eliminated"`
}

// StandingsAsOf replays the season's week records through week and returns
// alive teams first, fewest strikes first. It returns ErrWeekNotFound when
// week was never processed.
func StandingsAsOf(r *SeasonResult, week int) ([]SnapshotEntry, error) {
	if _, ok := r.Week(week); !ok {
		return nil, fmt.Errorf("season %d week %d: %w", r.Season, week, ErrWeekNotFound)
	}

	strikes := make(map[string]int, len(r.Teams))
	out := make(map[string]bool)
	for _, w := range r.Weeks {
		if w.Week > week {
			break
		}
		for _, t := range w.Struck {
			strikes[t]++
		}
		for _, t := range w.Eliminated {
			out[t] = true
		}
	}

	entries := make([]SnapshotEntry, 0, len(r.Teams))
	for _, code := range r.Teams {
		e := SnapshotEntry{Team: code, Strikes: strikes[code], Eliminated: out[code]}
		switch {
		case e.Eliminated:
			e.Status = StatusEliminated
		case e.Strikes > 0:
			e.Status = StatusOnNotice
		default:
			e.Status = StatusActive
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Eliminated != b.Eliminated {
			return !a.Eliminated
		}
		if a.Strikes != b.Strikes {
			return a.Strikes < b.Strikes
		}
		return a.Team < b.Team
	})
	for i := range entries {
		entries[i].Place = i + 1
	}
	return entries, nil
}
