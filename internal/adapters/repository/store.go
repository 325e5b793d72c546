// Package repository stores processed season results.
package repository

import (
	"context"

	"github.com/thorsenk/rffl-tools/internal/domain/korm"
	"github.com/thorsenk/rffl-tools/internal/domain/types"
)

// Store provides read/write access to processed seasons.
//
// Saved results are treated as immutable: callers must not modify a result
// after saving it or after reading it back.
type Store interface {
	// Save inserts or replaces the result for its season.
	Save(ctx context.Context, r *korm.SeasonResult) error

	// Get returns the stored result for season.
	// Returns ErrNotFound if the season was never saved.
	Get(ctx context.Context, season int) (*korm.SeasonResult, error)

	// Standings returns the season's final standings in place order.
	// Returns ErrNotFound if the season was never saved.
	Standings(ctx context.Context, season int) ([]types.StandingEntry, error)

	// Seasons lists stored seasons, ascending.
	Seasons(ctx context.Context) ([]types.SeasonSummary, error)

	// Count returns the number of stored seasons.
	Count(ctx context.Context) int

	Close() error
}

// Summarize builds the listing row for a result.
func Summarize(r *korm.SeasonResult) types.SeasonSummary {
	return types.SeasonSummary{
		Season:     r.Season,
		Teams:      len(r.Teams),
		Weeks:      len(r.Weeks),
		Winner:     r.Winner,
		EndedEarly: r.EndedEarly,
	}
}

// StandingEntries converts a result's final standings to read shapes.
func StandingEntries(r *korm.SeasonResult) []types.StandingEntry {
	ranked := r.Standings()
	out := make([]types.StandingEntry, 0, len(ranked))
	for _, t := range ranked {
		var weeks []int
		if t.StrikeCount() > 0 {
			weeks = t.StrikeWeeks()
		}
		out = append(out, types.StandingEntry{
			Place:           t.FinalPlace,
			Team:            t.TeamCode,
			Strikes:         t.StrikeCount(),
			StrikeWeeks:     weeks,
			Status:          t.Status.String(),
			EliminationWeek: t.EliminationWeek,
			Payout:          t.Payout,
		})
	}
	return out
}
