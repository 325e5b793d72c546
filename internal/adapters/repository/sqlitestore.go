package repository

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/thorsenk/rffl-tools/internal/adapters/report"
	"github.com/thorsenk/rffl-tools/internal/domain/korm"
	"github.com/thorsenk/rffl-tools/internal/domain/types"
	"github.com/thorsenk/rffl-tools/pkg/metrics"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS seasons (
	season      INTEGER PRIMARY KEY,
	teams       INTEGER NOT NULL,
	weeks       INTEGER NOT NULL,
	winner      TEXT NOT NULL DEFAULT '',
	ended_early INTEGER NOT NULL DEFAULT 0,
	document    TEXT NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS standings (
	season           INTEGER NOT NULL REFERENCES seasons(season) ON DELETE CASCADE,
	place            INTEGER NOT NULL,
	team             TEXT NOT NULL,
	strikes          INTEGER NOT NULL,
	strike_weeks     TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	elimination_week INTEGER NOT NULL DEFAULT 0,
	payout           INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (season, team)
);
CREATE INDEX IF NOT EXISTS standings_team ON standings(team);
`

// SQLiteStore persists results in a SQLite database: the full JSON results
// document per season, plus one standings row per team.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
	now         func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	s := &SQLiteStore{busyTimeout: 5 * time.Second, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		filepath.Clean(path), s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	s.db = db
	return s, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save implements Store.Save.
func (s *SQLiteStore) Save(ctx context.Context, r *korm.SeasonResult) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if r == nil {
		return ErrNilResult
	}

	now := s.now()
	var doc bytes.Buffer
	if err := report.Encode(&doc, r, now); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO seasons (season, teams, weeks, winner, ended_early, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(season) DO UPDATE SET
			teams = excluded.teams,
			weeks = excluded.weeks,
			winner = excluded.winner,
			ended_early = excluded.ended_early,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		r.Season, len(r.Teams), len(r.Weeks), r.Winner, r.EndedEarly, doc.String(), now.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save season %d: %w", r.Season, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM standings WHERE season = ?`, r.Season); err != nil {
		return fmt.Errorf("clear standings %d: %w", r.Season, err)
	}
	for _, e := range StandingEntries(r) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO standings (season, place, team, strikes, strike_weeks, status, elimination_week, payout)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Season, e.Place, e.Team, e.Strikes, joinWeeks(e.StrikeWeeks), e.Status, e.EliminationWeek, e.Payout)
		if err != nil {
			return fmt.Errorf("save standing %d/%s: %w", r.Season, e.Team, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit season %d: %w", r.Season, err)
	}

	metrics.UpdateSeasonsStored(s.Count(ctx))
	return nil
}

// Get implements Store.Get.
func (s *SQLiteStore) Get(ctx context.Context, season int) (*korm.SeasonResult, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM seasons WHERE season = ?`, season).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, fmt.Errorf("season %d: %w", season, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load season %d: %w", season, err)
	}
	return report.Decode(strings.NewReader(doc))
}

// Standings implements Store.Standings from the standings table.
func (s *SQLiteStore) Standings(ctx context.Context, season int) ([]types.StandingEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT place, team, strikes, strike_weeks, status, elimination_week, payout
		FROM standings WHERE season = ? ORDER BY place, team`, season)
	if err != nil {
		return nil, fmt.Errorf("query standings %d: %w", season, err)
	}
	defer rows.Close()

	var out []types.StandingEntry
	for rows.Next() {
		var (
			e     types.StandingEntry
			weeks string
		)
		if err := rows.Scan(&e.Place, &e.Team, &e.Strikes, &weeks, &e.Status, &e.EliminationWeek, &e.Payout); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		e.StrikeWeeks = splitWeeks(weeks)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, fmt.Errorf("season %d: %w", season, ErrNotFound)
	}
	return out, nil
}

// Seasons implements Store.Seasons.
func (s *SQLiteStore) Seasons(ctx context.Context) ([]types.SeasonSummary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT season, teams, weeks, winner, ended_early FROM seasons ORDER BY season`)
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	out := []types.SeasonSummary{}
	for rows.Next() {
		var sum types.SeasonSummary
		if err := rows.Scan(&sum.Season, &sum.Teams, &sum.Weeks, &sum.Winner, &sum.EndedEarly); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Count implements Store.Count. It returns 0 when the database is unavailable.
func (s *SQLiteStore) Count(ctx context.Context) int {
	if s.ready(ctx) != nil {
		return 0
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seasons`).Scan(&n); err != nil {
		return 0
	}
	return n
}

func (s *SQLiteStore) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return ErrNoDatabase
	}
	return nil
}

func joinWeeks(weeks []int) string {
	parts := make([]string, len(weeks))
	for i, w := range weeks {
		parts[i] = strconv.Itoa(w)
	}
	return strings.Join(parts, ",")
}

func splitWeeks(v string) []int {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	weeks := make([]int, 0, len(parts))
	for _, p := range parts {
		if w, err := strconv.Atoi(p); err == nil {
			weeks = append(weeks, w)
		}
	}
	return weeks
}
