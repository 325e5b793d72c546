package korm

import (
	"sort"

	"github.com/thorsenk/rffl-tools/internal/domain/model"
)

// ProcessWeek applies one week's scores to the team states in place and
// returns the week's record.
//
// The strike mode is chosen from every team still alive on the roster, even
// those with no score this week. Teams without a score can be neither struck
// nor ranked. Every team scoring at or below the cutoff score is struck, so a
// tie straddling the cutoff strikes more than the nominal count.
func ProcessWeek(week int, scores model.ScoreSet, teams map[string]*TeamResult) WeekResult {
	activeStart := activeCount(teams)
	mode := ModeFor(activeStart)

	scored := make([]ScoreEntry, 0, activeStart)
	for code, team := range teams {
		if team.IsEliminated() {
			continue
		}
		score, ok := scores[code]
		if !ok {
			continue
		}
		scored = append(scored, ScoreEntry{Team: code, Score: score})
	}

	// Lowest first; ties by team code for a stable strike order.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score < scored[j].Score
		}
		return scored[i].Team < scored[j].Team
	})

	var struck, eliminated []string
	if k := mode.Cutoff(); len(scored) >= k {
		threshold := scored[k-1].Score
		for _, e := range scored {
			if e.Score > threshold {
				break
			}
			struck = append(struck, e.Team)
			if teams[e.Team].AddStrike(week, e.Score) {
				eliminated = append(eliminated, e.Team)
			}
		}
	}

	display := make([]ScoreEntry, len(scored))
	copy(display, scored)
	sort.SliceStable(display, func(i, j int) bool {
		if display[i].Score != display[j].Score {
			return display[i].Score > display[j].Score
		}
		return display[i].Team < display[j].Team
	})

	return WeekResult{
		Week:             week,
		ActiveCountStart: activeStart,
		Mode:             mode,
		Scores:           display,
		Struck:           nonNil(struck),
		Eliminated:       nonNil(eliminated),
		ActiveCountEnd:   activeCount(teams),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
