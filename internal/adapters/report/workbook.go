package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thorsenk/rffl-tools/internal/domain/korm"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the standings workbook. The weeks sheet comes first and
// carries the team-week score columns, so the workbook can be read back as
// score input.
const (
	SheetWeeks     = "Weeks"
	SheetStandings = "Standings"
)

var (
	weeksHeader     = []any{"week", "team_code", "team_actual_total", "active_count", "strike_mode", "struck", "eliminated"}
	standingsHeader = []any{"place", "team", "strikes", "strike_weeks", "status", "elimination_week", "payout"}
)

// Workbook writes r as an XLSX workbook with weeks and standings sheets.
func Workbook(w io.Writer, r *korm.SeasonResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetWeeks); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetStandings); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	weekRows := [][]any{weeksHeader}
	for _, wk := range r.Weeks {
		for _, e := range wk.Scores {
			weekRows = append(weekRows, []any{
				wk.Week, e.Team, e.Score, wk.ActiveCountStart, string(wk.Mode),
				wk.WasStruck(e.Team), wk.WasEliminated(e.Team),
			})
		}
	}
	if err := writeRows(f, SheetWeeks, weekRows); err != nil {
		return err
	}

	standingRows := [][]any{standingsHeader}
	for _, t := range r.Standings() {
		weeks := make([]string, 0, t.StrikeCount())
		for _, wk := range t.StrikeWeeks() {
			weeks = append(weeks, strconv.Itoa(wk))
		}
		var elim any
		if t.EliminationWeek > 0 {
			elim = t.EliminationWeek
		}
		standingRows = append(standingRows, []any{
			t.FinalPlace, t.TeamCode, t.StrikeCount(), strings.Join(weeks, ","),
			t.Status.String(), elim, t.Payout,
		})
	}
	if err := writeRows(f, SheetStandings, standingRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
