package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/thorsenk/rffl-tools/internal/domain/korm"
	"github.com/thorsenk/rffl-tools/pkg/logger"
)

// Output file names.
const (
	ResultsFile   = "korm_results.json"
	HistoryFile   = "korm_history.md"
	StandingsFile = "korm_standings.xlsx"
)

// Files lists the paths written for one season.
type Files struct {
	JSON     string `json:"json"`
	Markdown string `json:"markdown"`
	Workbook string `json:"workbook"`
}

// Writer renders season results into a directory.
type Writer struct {
	leagueID string
	now      func() time.Time
	log      logger.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithLeagueID sets the league id printed in the markdown footer.
func WithLeagueID(id string) WriterOption {
	return func(w *Writer) { w.leagueID = id }
}

// WithClock sets the source of the generated timestamp.
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) { w.now = now }
}

// WithLogger sets the writer's logger.
func WithLogger(l logger.Logger) WriterOption {
	return func(w *Writer) { w.log = l }
}

// NewWriter returns a report writer.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{leagueID: DefaultLeagueID, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// LeagueID returns the league id used in reports.
func (w *Writer) LeagueID() string { return w.leagueID }

// Now returns the timestamp reports are stamped with.
func (w *Writer) Now() time.Time { return w.now() }

// Write renders the three season reports into dir, creating it if needed.
func (w *Writer) Write(ctx context.Context, dir string, r *korm.SeasonResult) (Files, error) {
	if err := ctx.Err(); err != nil {
		return Files{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create output dir: %w", err)
	}

	generated := w.now()
	files := Files{
		JSON:     filepath.Join(dir, ResultsFile),
		Markdown: filepath.Join(dir, HistoryFile),
		Workbook: filepath.Join(dir, StandingsFile),
	}
	renders := []struct {
		path   string
		render func(io.Writer) error
	}{
		{files.JSON, func(out io.Writer) error { return Encode(out, r, generated) }},
		{files.Markdown, func(out io.Writer) error { return Markdown(out, r, generated, w.leagueID) }},
		{files.Workbook, func(out io.Writer) error { return Workbook(out, r) }},
	}
	for _, rd := range renders {
		var buf bytes.Buffer
		if err := rd.render(&buf); err != nil {
			return Files{}, fmt.Errorf("render %s: %w", filepath.Base(rd.path), err)
		}
		if err := os.WriteFile(rd.path, buf.Bytes(), 0o644); err != nil {
			return Files{}, fmt.Errorf("write %s: %w", rd.path, err)
		}
	}

	if w.log != nil {
		w.log.Info(ctx, "season reports written",
			logger.Int("season", r.Season),
			logger.String("dir", dir))
	}
	return files, nil
}
