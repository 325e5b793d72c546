// Package report renders processed seasons as a JSON results document, a
// markdown history and an XLSX workbook, and reads the JSON document back.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/thorsenk/rffl-tools/internal/domain/korm"
)

// Document is the persisted JSON form of a season result.
type Document struct {
	Season         int           `json:"season"`
	Window         korm.Window   `json:"korm_window"`
	EntryFee       int           `json:"entry_fee"`
	Pool           int           `json:"pool"`
	Teams          []string      `json:"teams"`
	EndedEarly     bool          `json:"ended_early"`
	Weeks          []WeekDoc     `json:"weeks"`
	FinalStandings []StandingDoc `json:"final_standings"`
	Winner         *string       `json:"winner"`
	Generated      time.Time     `json:"generated"`
}

// WeekDoc is one processed week.
type WeekDoc struct {
	Week           int               `json:"week"`
	ActiveCount    int               `json:"active_count"`
	ActiveCountEnd int               `json:"active_count_end"`
	StrikeMode     korm.StrikeMode   `json:"strike_mode"`
	Scores         []korm.ScoreEntry `json:"scores"`
	Strikes        []string          `json:"strikes"`
	Eliminations   []string          `json:"eliminations"`
}

// StandingDoc is one team's final line.
type StandingDoc struct {
	Place           int           `json:"place"`
	Team            string        `json:"team"`
	Strikes         int           `json:"strikes"`
	StrikeWeeks     []int         `json:"strike_weeks"`
	StrikeHistory   []korm.Strike `json:"strike_history"`
	Status          korm.Status   `json:"status"`
	EliminationWeek *int          `json:"elimination_week"`
	Payout          int           `json:"payout"`
}

// NewDocument builds the document for r, stamped with generated.
func NewDocument(r *korm.SeasonResult, generated time.Time) Document {
	doc := Document{
		Season:     r.Season,
		Window:     r.Window,
		EntryFee:   r.EntryFee,
		Pool:       r.Pool,
		Teams:      append([]string{}, r.Teams...),
		EndedEarly: r.EndedEarly,
		Weeks:      make([]WeekDoc, 0, len(r.Weeks)),
		Generated:  generated,
	}
	for _, w := range r.Weeks {
		doc.Weeks = append(doc.Weeks, WeekDoc{
			Week:           w.Week,
			ActiveCount:    w.ActiveCountStart,
			ActiveCountEnd: w.ActiveCountEnd,
			StrikeMode:     w.Mode,
			Scores:         w.Scores,
			Strikes:        w.Struck,
			Eliminations:   w.Eliminated,
		})
	}
	for _, t := range r.Standings() {
		s := StandingDoc{
			Place:         t.FinalPlace,
			Team:          t.TeamCode,
			Strikes:       t.StrikeCount(),
			StrikeWeeks:   t.StrikeWeeks(),
			StrikeHistory: append([]korm.Strike{}, t.Strikes...),
			Status:        t.Status,
			Payout:        t.Payout,
		}
		if t.EliminationWeek > 0 {
			week := t.EliminationWeek
			s.EliminationWeek = &week
		}
		doc.FinalStandings = append(doc.FinalStandings, s)
	}
	if r.Winner != "" {
		winner := r.Winner
		doc.Winner = &winner
	}
	return doc
}

// Result rebuilds the season result described by the document.
func (d Document) Result() (*korm.SeasonResult, error) {
	if d.Season == 0 {
		return nil, fmt.Errorf("%w: missing season", ErrInvalidDocument)
	}
	r := &korm.SeasonResult{
		Season:      d.Season,
		Window:      d.Window,
		EntryFee:    d.EntryFee,
		Pool:        d.Pool,
		Teams:       d.Teams,
		EndedEarly:  d.EndedEarly,
		Weeks:       make([]korm.WeekResult, 0, len(d.Weeks)),
		TeamResults: make(map[string]*korm.TeamResult, len(d.FinalStandings)),
	}
	for _, w := range d.Weeks {
		r.Weeks = append(r.Weeks, korm.WeekResult{
			Week:             w.Week,
			ActiveCountStart: w.ActiveCount,
			Mode:             w.StrikeMode,
			Scores:           w.Scores,
			Struck:           w.Strikes,
			Eliminated:       w.Eliminations,
			ActiveCountEnd:   w.ActiveCountEnd,
		})
	}
	for _, s := range d.FinalStandings {
		if len(s.StrikeHistory) != s.Strikes {
			return nil, fmt.Errorf("%w: team %s has %d strikes but %d in history",
				ErrInvalidDocument, s.Team, s.Strikes, len(s.StrikeHistory))
		}
		t := &korm.TeamResult{
			TeamCode:   s.Team,
			Strikes:    s.StrikeHistory,
			Status:     s.Status,
			FinalPlace: s.Place,
			Payout:     s.Payout,
		}
		if s.EliminationWeek != nil {
			t.EliminationWeek = *s.EliminationWeek
		}
		r.TeamResults[s.Team] = t
	}
	if d.Winner != nil {
		r.Winner = *d.Winner
	}
	return r, nil
}

// Encode writes r as an indented JSON document.
func Encode(w io.Writer, r *korm.SeasonResult, generated time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NewDocument(r, generated)); err != nil {
		return fmt.Errorf("encode season %d: %w", r.Season, err)
	}
	return nil
}

// Decode reads a JSON document and rebuilds its season result.
func Decode(rd io.Reader) (*korm.SeasonResult, error) {
	var doc Document
	if err := json.NewDecoder(rd).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc.Result()
}
