package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/thorsenk/rffl-tools/internal/adapters/loader"
	"github.com/thorsenk/rffl-tools/internal/adapters/report"
	"github.com/thorsenk/rffl-tools/internal/adapters/repository"
	service "github.com/thorsenk/rffl-tools/internal/app"
	"github.com/thorsenk/rffl-tools/internal/config"
	"github.com/thorsenk/rffl-tools/pkg/logger"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// cliEnv carries what every command shares once setup has run.
type cliEnv struct {
	out    io.Writer
	logOut io.Writer
	cfg    *config.Config
}

func newApp(out, logOut io.Writer) *cli.App {
	env := &cliEnv{out: out, logOut: logOut}
	return &cli.App{
		Name:      "korm",
		Usage:     "process RFFL King of Rage Mountain seasons",
		Writer:    out,
		ErrWriter: logOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Usage: "league data root holding seasons/<year>/ (overrides RFFL_DATA_DIR)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
		},
		Before: env.setup,
		// main reports errors and sets the exit status.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			env.generateCommand(),
			env.generateAllCommand(),
			env.standingsCommand(),
			env.simulateCommand(),
			env.serveCommand(),
		},
	}
}

// setup loads configuration (defaults -> optional file -> env -> flags) and
// initializes logging.
func (e *cliEnv) setup(c *cli.Context) error {
	cfg, err := config.Load(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.InitWithWriter(e.logOut, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(c.Context, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	e.cfg = cfg
	return nil
}

// newService builds the season service from configuration. Reports are
// written only when withReports is set.
func (e *cliEnv) newService(ctx context.Context, withReports bool) (*service.Service, error) {
	cfg := e.cfg

	var store repository.Store
	if cfg.Store == config.StoreSQLite {
		s, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		store = s
	}

	opts := []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithStore(store),
		service.WithLoader(loader.New(cfg.DataDir, loader.WithLogger(logger.Named("loader")))),
		service.WithSeasons(cfg.Registry()),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithOutputDir(cfg.OutputDir),
		service.WithLeagueID(cfg.LeagueID),
	}
	if withReports {
		opts = append(opts, service.WithReportWriter(report.NewWriter(
			report.WithLeagueID(cfg.LeagueID),
			report.WithLogger(logger.Named("report")),
		)))
	}
	return service.New(opts...), nil
}
