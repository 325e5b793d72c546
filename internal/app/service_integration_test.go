package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/thorsenk/rffl-tools/internal/adapters/loader"
	"github.com/thorsenk/rffl-tools/internal/adapters/report"
	"github.com/thorsenk/rffl-tools/internal/adapters/repository"
	service "github.com/thorsenk/rffl-tools/internal/app"
	"github.com/thorsenk/rffl-tools/internal/domain/model"
	"github.com/thorsenk/rffl-tools/internal/domain/types"
)

// seedDataDir lays out a league data directory with a pilot head-to-head
// season (2018) and a team-week season (2024). 2019 is left empty.
func seedDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ld := loader.New(dir)

	var h2h strings.Builder
	h2h.WriteString("week,home_team,away_team,home_score,away_score\n")
	for week := 1; week <= 13; week++ {
		fmt.Fprintf(&h2h, "%d,A,B,100,90\n", week)
		fmt.Fprintf(&h2h, "%d,C,D,80,70\n", week)
	}
	writeSeasonFile(t, filepath.Join(ld.SeasonDir(2018), loader.HeadToHeadFile), h2h.String())

	writeSeasonFile(t, filepath.Join(ld.SeasonDir(2024), "reports", loader.TeamWeekCSVFile), teamWeekCSV(2024, fadingSeason()))
	return dir
}

func teamWeekCSV(season int, scores model.SeasonScores) string {
	var b strings.Builder
	fmt.Fprintf(&b, "season,%s,%s,%s\n", loader.ColumnWeek, loader.ColumnTeamCode, loader.ColumnScore)
	for _, week := range scores.Weeks() {
		for _, team := range scores[week].Teams() {
			fmt.Fprintf(&b, "%d,%d,%s,%.2f\n", season, week, team, scores[week][team])
		}
	}
	return b.String()
}

func writeSeasonFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service over a seeded data directory and a SQLite store", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		dataDir := seedDataDir(t)
		dbPath := filepath.Join(t.TempDir(), "korm.db")
		store, err := repository.OpenSQLite(ctx, dbPath)
		So(err, ShouldBeNil)

		generated := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
		ld := loader.New(dataDir)
		svc := service.New(
			service.WithLoader(ld),
			service.WithStore(store),
			service.WithReportWriter(report.NewWriter(report.WithClock(func() time.Time { return generated }))),
			service.WithWorkerCount(2),
			service.WithQueueSize(8),
		)
		defer svc.Stop()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When three seasons are submitted and drained", func() {
			for _, season := range []int{2018, 2019, 2024} {
				_, dup, err := svc.Submit(ctx, season)
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			}
			So(svc.Drain(ctx), ShouldBeNil)

			Convey("Then each season's outcome is recorded", func() {
				outcomes := svc.Outcomes()
				So(outcomes, ShouldHaveLength, 3)
				So(outcomes[0].Outcome, ShouldEqual, types.OutcomeSuccess)
				So(outcomes[1].Season, ShouldEqual, 2019)
				So(outcomes[1].Outcome, ShouldEqual, types.OutcomeMissing)
				So(outcomes[2].Outcome, ShouldEqual, types.OutcomeSuccess)
			})

			Convey("And the reports are written into the season directories", func() {
				for _, name := range []string{report.ResultsFile, report.HistoryFile, report.StandingsFile} {
					_, err := os.Stat(filepath.Join(ld.SeasonDir(2024), name))
					So(err, ShouldBeNil)
				}

				f, err := os.Open(filepath.Join(ld.SeasonDir(2018), report.ResultsFile))
				So(err, ShouldBeNil)
				defer f.Close()
				res, err := report.Decode(f)
				So(err, ShouldBeNil)
				So(res.Winner, ShouldEqual, "A")
				So(res.EndedEarly, ShouldBeTrue)
			})

			Convey("And the pilot season pays the reduced table", func() {
				entries, err := svc.Standings(ctx, 2018, 0)
				So(err, ShouldBeNil)
				payouts := map[string]int{}
				for _, e := range entries {
					payouts[e.Team] = e.Payout
				}
				So(payouts, ShouldResemble, map[string]int{"A": 320, "B": 120, "C": 40, "D": 0})
			})

			Convey("And the stored seasons survive a restart", func() {
				svc.Stop()

				reopened, err := repository.OpenSQLite(ctx, dbPath)
				So(err, ShouldBeNil)
				defer reopened.Close()

				list, err := reopened.Seasons(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 2)
				So(list[0].Season, ShouldEqual, 2018)
				So(list[1].Season, ShouldEqual, 2024)
			})
		})
	})
}
