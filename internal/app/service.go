// Package service wires the KORM season processor to its loaders, stores,
// report writers and the background job pool used by the CLI and HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thorsenk/rffl-tools/internal/adapters/loader"
	jobqueue "github.com/thorsenk/rffl-tools/internal/adapters/mq/queue"
	workerpool "github.com/thorsenk/rffl-tools/internal/adapters/mq/worker"
	"github.com/thorsenk/rffl-tools/internal/adapters/report"
	"github.com/thorsenk/rffl-tools/internal/adapters/repository"
	"github.com/thorsenk/rffl-tools/internal/domain/dedupe"
	"github.com/thorsenk/rffl-tools/internal/domain/korm"
	"github.com/thorsenk/rffl-tools/internal/domain/model"
	"github.com/thorsenk/rffl-tools/internal/domain/types"
	"github.com/thorsenk/rffl-tools/pkg/logger"
	"github.com/thorsenk/rffl-tools/pkg/metrics"
)

// ScoreLoader reads a season's weekly scores.
type ScoreLoader interface {
	Load(ctx context.Context, cfg korm.SeasonConfig) (model.SeasonScores, error)
}

// ReportWriter renders a processed season into a directory.
type ReportWriter interface {
	Write(ctx context.Context, dir string, r *korm.SeasonResult) (report.Files, error)
}

// seasonDirer is implemented by loaders that know where a season's files live.
type seasonDirer interface {
	SeasonDir(year int) string
}

// Service runs seasons through the KORM processor and keeps the results.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	deduper  dedupe.Deduper
	queue    *jobqueue.InMemoryQueue
	pool     *workerpool.Pool
	loader   ScoreLoader
	writer   ReportWriter
	registry *korm.Registry

	workerCount int
	queueSize   int
	dedupeSize  int
	outputDir   string
	leagueID    string
	now         func() time.Time

	outcomes map[int]types.SeasonOutcome

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending season jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many in-flight season keys are tracked.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the results repository. The default is an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLoader sets the score loader.
func WithLoader(l ScoreLoader) Option {
	return func(s *Service) {
		s.loader = l
	}
}

// WithReportWriter sets the writer used after each season is processed.
// A nil writer disables report files.
func WithReportWriter(w ReportWriter) Option {
	return func(s *Service) {
		s.writer = w
	}
}

// WithSeasons sets the season registry.
func WithSeasons(r *korm.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithOutputDir writes reports under dir/<year> instead of the season's data directory.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		s.outputDir = dir
	}
}

// WithLeagueID sets the league id used when rendering markdown on demand.
func WithLeagueID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.leagueID = id
		}
	}
}

// WithClock overrides the time source used to stamp rendered markdown.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. The store, deduper and registry are ready
// immediately so seasons can be processed synchronously without Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   64,
		dedupeSize:  1024,
		leagueID:    report.DefaultLeagueID,
		now:         time.Now,
		outcomes:    make(map[int]types.SeasonOutcome),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewInMemoryStore()
	}
	if s.registry == nil {
		s.registry = korm.NewRegistry()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	return s
}

// Start creates the job queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting season service...")

	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.ProcessorFunc(s.processJob))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "season service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop aborts background processing and closes the store. Queued jobs are dropped.
func (s *Service) Stop() {
	s.mu.Lock()
	pool, q := s.pool, s.queue
	s.started = false
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping season service...")

	// Workers record outcomes under s.mu, so they are stopped without holding it.
	if pool != nil {
		pool.Stop()
	}
	if q != nil {
		_ = q.Close()
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "error closing store", logger.Error(err))
	}

	s.logger.Info(ctx, "season service stopped")
}

// Drain stops accepting jobs and waits for every queued season to finish.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.RLock()
	pool := s.pool
	s.mu.RUnlock()

	if pool == nil {
		return nil
	}
	return pool.Drain(ctx)
}

// Submit queues season for background processing. A season that is already
// queued or running is reported as a duplicate and not queued again.
func (s *Service) Submit(ctx context.Context, season int) (uuid.UUID, bool, error) {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()

	if q == nil || q.IsClosed() {
		return uuid.Nil, false, jobqueue.ErrStopped
	}
	if !s.registry.Known(season) {
		s.logger.Warn(ctx, "season has no registry entry, using defaults", logger.Int("season", season))
	}

	key := dedupe.SeasonKey(season)
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordJobDuplicate()
		s.logger.Debug(ctx, "season already in flight", logger.Int("season", season))
		return uuid.Nil, true, nil
	}

	job := jobqueue.NewJob(season)
	if !q.Enqueue(ctx, job) {
		s.deduper.Unrecord(ctx, key)
		if q.IsClosed() {
			return uuid.Nil, false, jobqueue.ErrStopped
		}
		return uuid.Nil, false, jobqueue.ErrFull
	}

	s.logger.Debug(ctx, "season queued",
		logger.Int("season", season),
		logger.String("job_id", job.ID.String()),
	)
	return job.ID, false, nil
}

// processJob is the worker pool's processor. It releases the season key when done.
func (s *Service) processJob(ctx context.Context, job jobqueue.Job) error {
	defer s.deduper.Unrecord(ctx, dedupe.SeasonKey(job.Season))
	_, err := s.ProcessSeason(ctx, job.Season)
	return err
}

// SeasonConfig returns the registry entry for season.
func (s *Service) SeasonConfig(season int) korm.SeasonConfig {
	return s.registry.Lookup(season)
}

// KnownSeason reports whether season has an explicit registry entry.
func (s *Service) KnownSeason(season int) bool {
	return s.registry.Known(season)
}

// ReportDir returns where season's report files are written.
func (s *Service) ReportDir(season int) string {
	if s.outputDir != "" {
		return filepath.Join(s.outputDir, strconv.Itoa(season))
	}
	if d, ok := s.loader.(seasonDirer); ok {
		return d.SeasonDir(season)
	}
	return ""
}

// ProcessSeason loads season's scores, runs the season, stores the result
// and writes the reports. The outcome is recorded whether or not it succeeds.
func (s *Service) ProcessSeason(ctx context.Context, season int) (*korm.SeasonResult, error) {
	start := time.Now()
	res, err := s.processSeason(ctx, season)
	metrics.RecordSeasonLatency(float64(time.Since(start).Milliseconds()))

	outcome := types.SeasonOutcome{Season: season, Outcome: types.OutcomeSuccess}
	switch {
	case errors.Is(err, loader.ErrDataNotFound):
		outcome.Outcome = types.OutcomeMissing
		outcome.Error = err.Error()
		s.logger.Warn(ctx, "season data not found", logger.Int("season", season), logger.Error(err))
	case err != nil:
		outcome.Outcome = types.OutcomeFailed
		outcome.Error = err.Error()
		metrics.RecordErrorByComponent("service", "process_season")
		s.logger.Error(ctx, "season processing failed", logger.Int("season", season), logger.Error(err))
	}
	metrics.RecordSeasonOutcome(string(outcome.Outcome))

	s.mu.Lock()
	s.outcomes[season] = outcome
	s.mu.Unlock()

	return res, err
}

func (s *Service) processSeason(ctx context.Context, season int) (*korm.SeasonResult, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("season %d: %w", season, ErrNoLoader)
	}

	cfg := s.registry.Lookup(season)
	scores, err := s.loader.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load season %d: %w", season, err)
	}

	res, err := s.ProcessScores(ctx, cfg, scores)
	if err != nil {
		return nil, err
	}

	if s.writer == nil {
		return res, nil
	}
	dir := s.ReportDir(season)
	if dir == "" {
		return nil, fmt.Errorf("season %d: %w", season, ErrNoOutputDir)
	}
	files, err := s.writer.Write(ctx, dir, res)
	if err != nil {
		return nil, fmt.Errorf("write season %d reports: %w", season, err)
	}
	s.logger.Info(ctx, "season reports written",
		logger.Int("season", season),
		logger.String("json", files.JSON),
		logger.String("markdown", files.Markdown),
		logger.String("workbook", files.Workbook),
	)
	return res, nil
}

// ProcessScores runs an already loaded season and saves the result.
func (s *Service) ProcessScores(ctx context.Context, cfg korm.SeasonConfig, scores model.SeasonScores) (*korm.SeasonResult, error) {
	res, err := korm.ProcessSeason(cfg, scores)
	if err != nil {
		return nil, fmt.Errorf("process season %d: %w", cfg.Season, err)
	}

	for _, w := range res.Weeks {
		metrics.RecordWeek(string(w.Mode), len(w.Struck), len(w.Eliminated))
	}
	if res.EndedEarly {
		metrics.RecordEarlyFinish()
	}

	if err := s.store.Save(ctx, res); err != nil {
		return nil, fmt.Errorf("save season %d: %w", cfg.Season, err)
	}

	s.logger.Info(ctx, "season processed",
		logger.Int("season", res.Season),
		logger.Int("teams", len(res.Teams)),
		logger.Int("weeks", len(res.Weeks)),
		logger.String("winner", res.Winner),
		logger.Bool("ended_early", res.EndedEarly),
	)
	return res, nil
}

// Season returns the stored result for season.
func (s *Service) Season(ctx context.Context, season int) (*korm.SeasonResult, error) {
	return s.store.Get(ctx, season)
}

// Seasons lists every stored season.
func (s *Service) Seasons(ctx context.Context) ([]types.SeasonSummary, error) {
	return s.store.Seasons(ctx)
}

// Standings returns final standings when week is 0, otherwise the
// standings as they stood after week.
func (s *Service) Standings(ctx context.Context, season, week int) ([]types.StandingEntry, error) {
	if week == 0 {
		return s.store.Standings(ctx, season)
	}

	res, err := s.store.Get(ctx, season)
	if err != nil {
		return nil, err
	}
	snap, err := korm.StandingsAsOf(res, week)
	if err != nil {
		return nil, err
	}

	out := make([]types.StandingEntry, 0, len(snap))
	for _, e := range snap {
		entry := types.StandingEntry{
			Place:   e.Place,
			Team:    e.Team,
			Strikes: e.Strikes,
			Status:  e.Status.String(),
		}
		if t, ok := res.TeamResults[e.Team]; ok {
			for _, st := range t.Strikes {
				if st.Week <= week {
					entry.StrikeWeeks = append(entry.StrikeWeeks, st.Week)
				}
			}
			if e.Eliminated {
				entry.EliminationWeek = t.EliminationWeek
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// Markdown renders the stored season as a markdown narrative.
func (s *Service) Markdown(ctx context.Context, season int) (string, error) {
	res, err := s.store.Get(ctx, season)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := report.Markdown(&b, res, s.now(), s.leagueID); err != nil {
		return "", fmt.Errorf("render season %d: %w", season, err)
	}
	return b.String(), nil
}

// Outcomes returns the latest outcome of every season processed, by season.
func (s *Service) Outcomes() []types.SeasonOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.SeasonOutcome, 0, len(s.outcomes))
	for _, o := range s.outcomes {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stored := s.store.Count(ctx)
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"inFlight":      s.deduper.Size(),
		"seasonsStored": stored,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		ps := s.pool.Stats()

		stats["queueLength"] = queueLen
		stats["activeWorkers"] = ps.Active
		stats["processed"] = ps.Processed
		stats["failed"] = ps.Failed

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	metrics.UpdateSeasonsStored(stored)

	return stats
}
