package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/thorsenk/rffl-tools/internal/domain/korm"
	"github.com/thorsenk/rffl-tools/internal/domain/types"
	"github.com/thorsenk/rffl-tools/pkg/metrics"
)

// InMemoryStore keeps results in a map guarded by a RWMutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	seasons map[int]*korm.SeasonResult
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{seasons: make(map[int]*korm.SeasonResult)}
}

// Save implements Store.Save.
func (s *InMemoryStore) Save(ctx context.Context, r *korm.SeasonResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r == nil {
		return ErrNilResult
	}
	s.mu.Lock()
	s.seasons[r.Season] = r
	n := len(s.seasons)
	s.mu.Unlock()

	metrics.UpdateSeasonsStored(n)
	return nil
}

// Get implements Store.Get.
func (s *InMemoryStore) Get(ctx context.Context, season int) (*korm.SeasonResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.seasons[season]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, fmt.Errorf("season %d: %w", season, ErrNotFound)
	}
	return r, nil
}

// Standings implements Store.Standings.
func (s *InMemoryStore) Standings(ctx context.Context, season int) ([]types.StandingEntry, error) {
	r, err := s.Get(ctx, season)
	if err != nil {
		return nil, err
	}
	return StandingEntries(r), nil
}

// Seasons implements Store.Seasons.
func (s *InMemoryStore) Seasons(ctx context.Context) ([]types.SeasonSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]types.SeasonSummary, 0, len(s.seasons))
	for _, r := range s.seasons {
		out = append(out, Summarize(r))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out, nil
}

// Count implements Store.Count.
func (s *InMemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seasons)
}

// Close implements Store.Close.
func (s *InMemoryStore) Close() error { return nil }
