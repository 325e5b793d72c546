// Package config defines the processor's configuration and how it is loaded.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/thorsenk/rffl-tools/internal/domain/korm"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir is the league data root holding seasons/<year>/.
	DataDir string `koanf:"data_dir"`

	// OutputDir, when set, receives reports instead of each season's directory.
	OutputDir string `koanf:"output_dir"`

	// QueueSize bounds the season job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of season workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize caps the number of in-flight season keys tracked.
	DedupeSize int `koanf:"dedupe_size"`

	// Store selects the results repository: memory or sqlite.
	Store string `koanf:"store"`

	// SQLitePath is the database file used when Store is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// LeagueID is printed in the markdown footer.
	LeagueID string `koanf:"league_id"`

	// Seasons adds or overrides entries in the season table. File only.
	Seasons []SeasonOverride `koanf:"seasons"`
}

// SeasonOverride describes one season in configuration.
type SeasonOverride struct {
	Season   int    `koanf:"season"`
	Start    int    `koanf:"start"`
	End      int    `koanf:"end"`
	EntryFee int    `koanf:"entry_fee"`
	Pool     int    `koanf:"pool"`
	Source   string `koanf:"source"`
	Note     string `koanf:"note"`
	// Payouts maps place ("1", "2", ...) to prize.
	Payouts map[string]int `koanf:"payouts"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Addr:        ":9080",
		DataDir:     "data",
		QueueSize:   64,
		WorkerCount: runtime.NumCPU(),
		DedupeSize:  1024,
		Store:       StoreMemory,
		SQLitePath:  "korm.db",
		LeagueID:    "323196",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	for _, s := range c.Seasons {
		if s.Season == 0 {
			return fmt.Errorf("%w: season override without a season", ErrInvalidConfig)
		}
		if s.Start < 1 || s.End < s.Start {
			return fmt.Errorf("%w: season %d window %d-%d", ErrInvalidConfig, s.Season, s.Start, s.End)
		}
		switch korm.ScoreSource(s.Source) {
		case "", korm.SourceHeadToHead, korm.SourceTeamWeek:
		default:
			return fmt.Errorf("%w: season %d source %q", ErrInvalidConfig, s.Season, s.Source)
		}
		for place := range s.Payouts {
			if p, err := strconv.Atoi(place); err != nil || p < 1 {
				return fmt.Errorf("%w: season %d payout place %q", ErrInvalidConfig, s.Season, place)
			}
		}
	}
	return nil
}

// Registry returns the built-in season table with the configured overrides
// applied. An override without entry fee or pool inherits the built-in
// season's values.
func (c *Config) Registry() *korm.Registry {
	r := korm.NewRegistry()
	for _, s := range c.Seasons {
		base := r.Lookup(s.Season)
		cfg := korm.SeasonConfig{
			Season:   s.Season,
			Window:   korm.Window{Start: s.Start, End: s.End},
			EntryFee: base.EntryFee,
			Pool:     base.Pool,
			Payouts:  base.Payouts,
			Source:   base.Source,
			Note:     s.Note,
		}
		if s.EntryFee > 0 {
			cfg.EntryFee = s.EntryFee
		}
		if s.Pool > 0 {
			cfg.Pool = s.Pool
		}
		if s.Source != "" {
			cfg.Source = korm.ScoreSource(s.Source)
		}
		if len(s.Payouts) > 0 {
			cfg.Payouts = make(korm.PayoutTable, len(s.Payouts))
			for place, amount := range s.Payouts {
				p, _ := strconv.Atoi(place)
				cfg.Payouts[p] = amount
			}
		}
		r.Set(cfg)
	}
	return r
}
