package korm

import (
	"sort"

	"github.com/thorsenk/rffl-tools/internal/domain/model"
)

// AssignFinalStandings sets FinalPlace and Payout on every team and returns
// the teams in place order.
//
// Teams still alive always rank above eliminated teams, whatever their
// points. Alive teams order by fewer strikes, then more season points.
// Eliminated teams order by later elimination week, then more season points.
// Season points count every week in scores. The result depends only on the
// team states and scores, so repeated calls assign the same places.
func AssignFinalStandings(teams map[string]*TeamResult, scores model.SeasonScores, payouts PayoutTable) []*TeamResult {
	points := make(map[string]float64, len(teams))
	var alive, out []*TeamResult
	for code, t := range teams {
		points[code] = scores.TotalPoints(code)
		if t.IsEliminated() {
			out = append(out, t)
		} else {
			alive = append(alive, t)
		}
	}

	sort.Slice(alive, func(i, j int) bool {
		a, b := alive[i], alive[j]
		if a.StrikeCount() != b.StrikeCount() {
			return a.StrikeCount() < b.StrikeCount()
		}
		if points[a.TeamCode] != points[b.TeamCode] {
			return points[a.TeamCode] > points[b.TeamCode]
		}
		return a.TeamCode < b.TeamCode
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.EliminationWeek != b.EliminationWeek {
			return a.EliminationWeek > b.EliminationWeek
		}
		if points[a.TeamCode] != points[b.TeamCode] {
			return points[a.TeamCode] > points[b.TeamCode]
		}
		return a.TeamCode < b.TeamCode
	})

	ranked := append(alive, out...)
	for i, t := range ranked {
		t.FinalPlace = i + 1
		t.Payout = payouts.For(t.FinalPlace)
	}
	return ranked
}
