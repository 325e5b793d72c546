// Package loader reads a season's weekly scores from the league data directory.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/thorsenk/rffl-tools/internal/domain/korm"
	"github.com/thorsenk/rffl-tools/internal/domain/model"
	"github.com/thorsenk/rffl-tools/pkg/logger"
)

// File names inside data/seasons/<year>/.
const (
	HeadToHeadFile   = "h2h.csv"
	TeamWeekCSVFile  = "teamweek_unified.csv"
	TeamWeekXLSXFile = "teamweek_unified.xlsx"
	reportsDir       = "reports"
)

// Loader resolves and parses score files under DataDir.
type Loader struct {
	DataDir string
	log     logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report which file was read.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// New returns a loader rooted at dataDir.
func New(dataDir string, opts ...Option) *Loader {
	l := &Loader{DataDir: dataDir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SeasonDir returns the directory holding a season's files.
func (l *Loader) SeasonDir(year int) string {
	return filepath.Join(l.DataDir, "seasons", strconv.Itoa(year))
}

// Load reads the scores for cfg's season, capped at the window end.
// It returns ErrDataNotFound when no score file exists.
func (l *Loader) Load(ctx context.Context, cfg korm.SeasonConfig) (model.SeasonScores, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := l.SeasonDir(cfg.Season)
	maxWeek := cfg.Window.End

	if cfg.Source == korm.SourceHeadToHead {
		return l.parseFile(ctx, filepath.Join(dir, HeadToHeadFile), maxWeek, ParseHeadToHead)
	}

	scores, err := l.parseFile(ctx, filepath.Join(dir, reportsDir, TeamWeekCSVFile), maxWeek, ParseTeamWeek)
	if !errors.Is(err, ErrDataNotFound) {
		return scores, err
	}
	return l.parseFile(ctx, filepath.Join(dir, reportsDir, TeamWeekXLSXFile), maxWeek, ParseTeamWeekXLSX)
}

type parseFunc func(io.Reader, int) (model.SeasonScores, error)

func (l *Loader) parseFile(ctx context.Context, path string, maxWeek int, parse parseFunc) (model.SeasonScores, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrDataNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scores, err := parse(f, maxWeek)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if l.log != nil {
		l.log.Debug(ctx, "scores loaded",
			logger.String("file", path),
			logger.Int("weeks", len(scores)))
	}
	return scores, nil
}
