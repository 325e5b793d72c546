// Package types contains read shapes shared by the service and its transports.
package types

// StandingEntry is one team's line in a standings table.
type StandingEntry struct {
	Place           int    `json:"place"`
	Team            string `json:"team"`
	Strikes         int    `json:"strikes"`
	StrikeWeeks     []int  `json:"strike_weeks,omitempty"`
	Status          string `json:"status"`
	EliminationWeek int    `json:"elimination_week,omitempty"`
	Payout          int    `json:"payout"`
}

// SeasonSummary is a processed season as listed by the service.
type SeasonSummary struct {
	Season     int    `json:"season"`
	Teams      int    `json:"teams"`
	Weeks      int    `json:"weeks"`
	Winner     string `json:"winner,omitempty"`
	EndedEarly bool   `json:"ended_early"`
}

// Outcome classifies a season processing attempt.
type Outcome string

// Season processing outcomes.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeMissing Outcome = "missing"
	OutcomeFailed  Outcome = "failed"
)

// SeasonOutcome is the latest processing result for a season.
type SeasonOutcome struct {
	Season  int     `json:"season"`
	Outcome Outcome `json:"outcome"`
	Error   string  `json:"error,omitempty"`
}
