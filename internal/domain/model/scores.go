// Package model contains domain models passed between layers.
package model

import "sort"

// ScoreSet maps team code to that team's score for one week.
type ScoreSet map[string]float64

// SeasonScores maps week number to the week's scores.
// Loaders are responsible for capping weeks to the configured window.
type SeasonScores map[int]ScoreSet

// Weeks returns the weeks present, ascending.
func (s SeasonScores) Weeks() []int {
	weeks := make([]int, 0, len(s))
	for w := range s {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

// Has reports whether week has score data.
func (s SeasonScores) Has(week int) bool {
	_, ok := s[week]
	return ok
}

// TotalPoints sums a team's score over every week present, including weeks
// that were never processed for strikes. Weeks are summed in ascending order.
func (s SeasonScores) TotalPoints(team string) float64 {
	var total float64
	for _, w := range s.Weeks() {
		total += s[w][team]
	}
	return total
}

// Set records a score, creating the week on first use.
func (s SeasonScores) Set(week int, team string, score float64) {
	set, ok := s[week]
	if !ok {
		set = make(ScoreSet)
		s[week] = set
	}
	set[team] = score
}

// Teams returns the team codes present in the set, ascending.
func (s ScoreSet) Teams() []string {
	teams := make([]string, 0, len(s))
	for t := range s {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	return teams
}
