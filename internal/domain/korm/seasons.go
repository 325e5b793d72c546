package korm

import "sort"

// ScoreSource names the historical file shape a season's scores come in.
type ScoreSource string

// Known score sources.
const (
	// SourceHeadToHead is a per-matchup list with home and away scores.
	SourceHeadToHead ScoreSource = "h2h"
	// SourceTeamWeek is one row per team per week.
	SourceTeamWeek ScoreSource = "teamweek"
)

// PayoutTable maps final place to prize amount.
type PayoutTable map[int]int

// For returns the payout for place, zero for unlisted places.
func (p PayoutTable) For(place int) int { return p[place] }

// Standard and pilot-season payout tables.
var (
	StandardPayouts = PayoutTable{1: 800, 2: 300, 3: 100}
	PilotPayouts    = PayoutTable{1: 320, 2: 120, 3: 40}
)

// SeasonConfig holds the fixed parameters of one season.
type SeasonConfig struct {
	Season   int
	Window   Window
	EntryFee int
	Pool     int
	Payouts  PayoutTable
	Source   ScoreSource
	Note     string
}

const (
	defaultEntryFee = 100
	defaultPool     = 1200
	shortSeasonEnd  = 13
	longSeasonEnd   = 14
)

// Registry resolves season configuration by year.
type Registry struct {
	seasons map[int]SeasonConfig
}

// NewRegistry returns a registry seeded with the league's known seasons.
func NewRegistry() *Registry {
	r := &Registry{seasons: make(map[int]SeasonConfig)}
	r.Set(SeasonConfig{
		Season: 2018, Window: Window{Start: 1, End: shortSeasonEnd},
		EntryFee: 40, Pool: 480, Payouts: PilotPayouts,
		Source: SourceHeadToHead, Note: "Pilot year",
	})
	for _, y := range []int{2019, 2020} {
		r.Set(standardSeason(y, shortSeasonEnd))
	}
	for y := 2021; y <= 2025; y++ {
		r.Set(standardSeason(y, longSeasonEnd))
	}
	return r
}

func standardSeason(year, end int) SeasonConfig {
	return SeasonConfig{
		Season:   year,
		Window:   Window{Start: 1, End: end},
		EntryFee: defaultEntryFee,
		Pool:     defaultPool,
		Payouts:  StandardPayouts,
		Source:   SourceTeamWeek,
	}
}

// Set adds or replaces a season. Missing payouts and source are defaulted.
func (r *Registry) Set(cfg SeasonConfig) {
	if len(cfg.Payouts) == 0 {
		cfg.Payouts = StandardPayouts
	}
	if cfg.Source == "" {
		cfg.Source = SourceTeamWeek
	}
	r.seasons[cfg.Season] = cfg
}

// Lookup returns the season's configuration, or the standard 14-week
// configuration for years the registry does not know.
func (r *Registry) Lookup(year int) SeasonConfig {
	if cfg, ok := r.seasons[year]; ok {
		return cfg
	}
	return standardSeason(year, longSeasonEnd)
}

// Known reports whether year is explicitly configured.
func (r *Registry) Known(year int) bool {
	_, ok := r.seasons[year]
	return ok
}

// Years returns the configured years, ascending.
func (r *Registry) Years() []int {
	years := make([]int, 0, len(r.seasons))
	for y := range r.seasons {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// LookupSeason resolves year against the built-in season table.
func LookupSeason(year int) SeasonConfig {
	return NewRegistry().Lookup(year)
}
