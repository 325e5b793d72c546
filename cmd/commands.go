package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/thorsenk/rffl-tools/internal/adapters/loader"
	"github.com/thorsenk/rffl-tools/internal/adapters/report"
	"github.com/thorsenk/rffl-tools/internal/domain/korm"
	"github.com/thorsenk/rffl-tools/internal/domain/types"
	"github.com/thorsenk/rffl-tools/internal/seasongen"
)

const (
	firstSeason = 2018
	lastSeason  = 2025
)

func (e *cliEnv) generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "generate KORM results for a single season",
		ArgsUsage: "<year>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write reports under DIR/<year> instead of the season directory"},
		},
		Action: func(c *cli.Context) error {
			year, err := yearArg(c)
			if err != nil {
				return err
			}
			if c.IsSet("output") {
				e.cfg.OutputDir = c.String("output")
			}

			svc, err := e.newService(c.Context, true)
			if err != nil {
				return err
			}
			defer svc.Stop()

			fmt.Fprintf(e.out, "Processing KORM for %d...\n", year)
			if _, err := svc.ProcessSeason(c.Context, year); err != nil {
				if errors.Is(err, loader.ErrDataNotFound) {
					return cli.Exit(fmt.Sprintf("Data not found: %v", err), 1)
				}
				return cli.Exit(fmt.Sprintf("KORM processing failed: %v", err), 1)
			}

			dir := svc.ReportDir(year)
			fmt.Fprintln(e.out, "Generated:")
			fmt.Fprintf(e.out, "   JSON: %s\n", filepath.Join(dir, report.ResultsFile))
			fmt.Fprintf(e.out, "   Markdown: %s\n", filepath.Join(dir, report.HistoryFile))
			fmt.Fprintf(e.out, "   Workbook: %s\n", filepath.Join(dir, report.StandingsFile))
			return nil
		},
	}
}

func (e *cliEnv) generateAllCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate-all",
		Usage: "generate KORM results for every configured season in a range",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "start-year", Value: firstSeason, Usage: "first season to process"},
			&cli.IntFlag{Name: "end-year", Value: lastSeason, Usage: "last season to process"},
		},
		Action: func(c *cli.Context) error {
			start, end := c.Int("start-year"), c.Int("end-year")
			if end < start {
				return cli.Exit(fmt.Sprintf("end year %d is before start year %d", end, start), 1)
			}

			svc, err := e.newService(c.Context, true)
			if err != nil {
				return err
			}
			defer svc.Stop()
			if err := svc.Start(c.Context); err != nil {
				return err
			}

			fmt.Fprintf(e.out, "Processing KORM for seasons %d-%d...\n\n", start, end)
			for year := start; year <= end; year++ {
				if !svc.KnownSeason(year) {
					fmt.Fprintf(e.out, "Skipping %d (no config)\n", year)
					continue
				}
				if _, _, err := svc.Submit(c.Context, year); err != nil {
					return cli.Exit(fmt.Sprintf("KORM batch processing failed: %v", err), 1)
				}
			}
			if err := svc.Drain(c.Context); err != nil {
				return cli.Exit(fmt.Sprintf("KORM batch processing failed: %v", err), 1)
			}

			printOutcomes(e.out, svc.Outcomes())
			return nil
		},
	}
}

func printOutcomes(w io.Writer, outcomes []types.SeasonOutcome) {
	success := 0
	for _, o := range outcomes {
		switch o.Outcome {
		case types.OutcomeSuccess:
			success++
			fmt.Fprintf(w, "OK      %d -> %s\n", o.Season, report.HistoryFile)
		case types.OutcomeMissing:
			fmt.Fprintf(w, "MISSING %d - %s\n", o.Season, o.Error)
		default:
			fmt.Fprintf(w, "FAILED  %d - %s\n", o.Season, o.Error)
		}
	}
	fmt.Fprintf(w, "\nProcessed %d/%d seasons\n", success, len(outcomes))
}

func (e *cliEnv) standingsCommand() *cli.Command {
	return &cli.Command{
		Name:      "standings",
		Usage:     "show KORM standings for a season",
		ArgsUsage: "<year>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "week", Usage: "show standings after a specific week"},
		},
		Action: func(c *cli.Context) error {
			year, err := yearArg(c)
			if err != nil {
				return err
			}
			week := c.Int("week")

			svc, err := e.newService(c.Context, false)
			if err != nil {
				return err
			}
			defer svc.Stop()

			res, err := svc.ProcessSeason(c.Context, year)
			if err != nil {
				if errors.Is(err, loader.ErrDataNotFound) {
					return cli.Exit(fmt.Sprintf("Data not found: %v", err), 1)
				}
				return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
			}

			entries, err := svc.Standings(c.Context, year, week)
			if errors.Is(err, korm.ErrWeekNotFound) {
				return cli.Exit(fmt.Sprintf("Week %d not found", week), 1)
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
			}

			if week > 0 {
				fmt.Fprintf(e.out, "KORM Standings After Week %d - %d\n\n", week, year)
			} else {
				fmt.Fprintf(e.out, "KORM Final Standings - %d\n\n", year)
			}
			printStandings(e.out, entries)

			champion := res.Winner
			if week > 0 {
				champion = soleSurvivor(entries)
			}
			if champion != "" {
				fmt.Fprintf(e.out, "\nChampion: %s 🏆\n", champion)
			}
			return nil
		},
	}
}

func printStandings(w io.Writer, entries []types.StandingEntry) {
	fmt.Fprintln(w, "| Place | Team | Strikes | Status |")
	fmt.Fprintln(w, "|-------|------|---------|--------|")
	for _, s := range entries {
		mark := "-"
		switch s.Status {
		case korm.StatusEliminated.String():
			mark = "☠️"
		case korm.StatusOnNotice.String():
			mark = "⚠️"
		}
		prize := ""
		if s.Payout > 0 {
			prize = fmt.Sprintf(" ($%d)", s.Payout)
		}
		fmt.Fprintf(w, "| %d | %s | %d | %s %s%s |\n", s.Place, s.Team, s.Strikes, mark, s.Status, prize)
	}
}

// soleSurvivor returns the only team not eliminated, if exactly one remains.
func soleSurvivor(entries []types.StandingEntry) string {
	survivor := ""
	for _, s := range entries {
		if s.Status == korm.StatusEliminated.String() {
			continue
		}
		if survivor != "" {
			return ""
		}
		survivor = s.Team
	}
	return survivor
}

func (e *cliEnv) simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "run a synthetic season and print its history",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "teams", Value: 12, Usage: "number of teams"},
			&cli.IntFlag{Name: "weeks", Value: 14, Usage: "number of weeks played"},
			&cli.Int64Flag{Name: "seed", Value: 42, Usage: "random seed"},
			&cli.IntFlag{Name: "season", Value: lastSeason, Usage: "season whose fee and payouts apply"},
		},
		Action: func(c *cli.Context) error {
			teams, weeks := c.Int("teams"), c.Int("weeks")
			if teams < 2 || weeks < 1 {
				return cli.Exit("simulate needs at least two teams and one week", 1)
			}

			svc, err := e.newService(c.Context, false)
			if err != nil {
				return err
			}
			defer svc.Stop()

			season := c.Int("season")
			cfg := svc.SeasonConfig(season)
			cfg.Window = korm.Window{Start: korm.RosterWeek, End: weeks}

			scores := seasongen.New(
				seasongen.WithTeams(teams),
				seasongen.WithWeeks(weeks),
				seasongen.WithSeed(c.Int64("seed")),
			).Generate()
			if _, err := svc.ProcessScores(c.Context, cfg, scores); err != nil {
				return cli.Exit(fmt.Sprintf("Simulation failed: %v", err), 1)
			}

			md, err := svc.Markdown(c.Context, season)
			if err != nil {
				return err
			}
			_, err = io.WriteString(e.out, md)
			return err
		},
	}
}

func yearArg(c *cli.Context) (int, error) {
	if c.NArg() != 1 {
		return 0, cli.Exit("expected a single <year> argument", 1)
	}
	year, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return 0, cli.Exit(fmt.Sprintf("invalid year %q", c.Args().First()), 1)
	}
	return year, nil
}
