// Package korm implements the KORM weekly elimination competition: strikes
// for the lowest weekly scores, elimination on the second strike, and final
// standings once one team is left or the week window closes.
//
// The package performs no I/O. A season run owns its TeamResult map and is
// the only writer to it.
package korm

import (
	"fmt"
	"sort"
)

// Status is a team's position in the elimination state machine.
// Transitions only move forward: active -> on_notice -> eliminated.
type Status int

// Team statuses.
const (
	StatusActive Status = iota
	StatusOnNotice
	StatusEliminated
)

// strikesToEliminate is the strike count that removes a team.
const strikesToEliminate = 2

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusOnNotice:
		return "on_notice"
	case StatusEliminated:
		return "eliminated"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusActive, StatusOnNotice, StatusEliminated:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseStatus parses the text form of a Status.
func ParseStatus(v string) (Status, error) {
	switch v {
	case "active":
		return StatusActive, nil
	case "on_notice":
		return StatusOnNotice, nil
	case "eliminated":
		return StatusEliminated, nil
	}
	return StatusActive, fmt.Errorf("%w: %q", ErrInvalidStatus, v)
}

// StrikeMode names how many teams a week strikes.
type StrikeMode string

// Strike modes.
const (
	TwoStrike StrikeMode = "2-strike"
	OneStrike StrikeMode = "1-strike"
)

// twoStrikeMinActive is the active count at which a week strikes the bottom two.
const twoStrikeMinActive = 5

// ModeFor picks the strike mode from the active team count at week start.
func ModeFor(activeCount int) StrikeMode {
	if activeCount >= twoStrikeMinActive {
		return TwoStrike
	}
	return OneStrike
}

// Cutoff is the rank whose score becomes the strike threshold.
func (m StrikeMode) Cutoff() int {
	if m == TwoStrike {
		return 2
	}
	return 1
}

// Strike is one penalty mark. Strikes are never removed.
type Strike struct {
	Week  int     `json:"week"`
	Score float64 `json:"score"`
}

// TeamResult is a team's running state for one season.
type TeamResult struct {
	TeamCode string
	Strikes  []Strike
	Status   Status
	// EliminationWeek is the week of the second strike; 0 while not eliminated.
	EliminationWeek int
	// FinalPlace is 0 until standings are assigned.
	FinalPlace int
	Payout     int
}

// NewTeamResult returns an active team with no strikes.
func NewTeamResult(code string) *TeamResult {
	return &TeamResult{TeamCode: code, Status: StatusActive}
}

// StrikeCount returns the number of strikes recorded.
func (t *TeamResult) StrikeCount() int { return len(t.Strikes) }

// StrikeWeeks returns the weeks in which strikes were given, in order.
func (t *TeamResult) StrikeWeeks() []int {
	weeks := make([]int, len(t.Strikes))
	for i, s := range t.Strikes {
		weeks[i] = s.Week
	}
	return weeks
}

// IsEliminated reports whether the team is out.
func (t *TeamResult) IsEliminated() bool { return t.Status == StatusEliminated }

// AddStrike records a strike and advances the status. It reports whether the
// strike eliminated the team. Eliminated teams are left untouched.
func (t *TeamResult) AddStrike(week int, score float64) (eliminated bool) {
	if t.IsEliminated() {
		return false
	}
	t.Strikes = append(t.Strikes, Strike{Week: week, Score: score})
	switch {
	case len(t.Strikes) >= strikesToEliminate:
		t.Status = StatusEliminated
		t.EliminationWeek = week
		return true
	case len(t.Strikes) == 1:
		t.Status = StatusOnNotice
	}
	return false
}

// ScoreEntry is one team's score in a week's display list.
type ScoreEntry struct {
	Team  string  `json:"team"`
	Score float64 `json:"score"`
}

// WeekResult is the immutable record of one processed week.
type WeekResult struct {
	Week             int
	ActiveCountStart int
	Mode             StrikeMode
	// Scores is sorted by score, highest first.
	Scores         []ScoreEntry
	Struck         []string
	Eliminated     []string
	ActiveCountEnd int
}

// WasStruck reports whether team received a strike this week.
func (w WeekResult) WasStruck(team string) bool { return contains(w.Struck, team) }

// WasEliminated reports whether team was eliminated this week.
func (w WeekResult) WasEliminated(team string) bool { return contains(w.Eliminated, team) }

// Window is an inclusive week range.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether week falls within the window.
func (w Window) Contains(week int) bool { return week >= w.Start && week <= w.End }

// SeasonResult is the outcome of a full season run.
type SeasonResult struct {
	Season      int
	Window      Window
	EntryFee    int
	Pool        int
	Teams       []string
	Weeks       []WeekResult
	TeamResults map[string]*TeamResult
	// Winner is empty when no team holds first place.
	Winner     string
	EndedEarly bool
}

// Standings returns the team results ordered by final place. Teams without
// a place sort last, by team code.
func (r *SeasonResult) Standings() []*TeamResult {
	out := make([]*TeamResult, 0, len(r.TeamResults))
	for _, t := range r.TeamResults {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := placeKey(out[i].FinalPlace), placeKey(out[j].FinalPlace)
		if pi != pj {
			return pi < pj
		}
		return out[i].TeamCode < out[j].TeamCode
	})
	return out
}

// Week returns the processed result for week, if any.
func (r *SeasonResult) Week(week int) (WeekResult, bool) {
	for _, w := range r.Weeks {
		if w.Week == week {
			return w, true
		}
	}
	return WeekResult{}, false
}

// ActiveCount returns the number of teams not yet eliminated.
func (r *SeasonResult) ActiveCount() int { return activeCount(r.TeamResults) }

func placeKey(p int) int {
	if p <= 0 {
		return int(^uint(0) >> 1)
	}
	return p
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func activeCount(teams map[string]*TeamResult) int {
	n := 0
	for _, t := range teams {
		if !t.IsEliminated() {
			n++
		}
	}
	return n
}
