package loader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/thorsenk/rffl-tools/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Team-week column names shared by the CSV and XLSX forms.
const (
	ColumnWeek     = "week"
	ColumnTeamCode = "team_code"
	ColumnScore    = "team_actual_total"
)

// ParseTeamWeek reads a CSV with one row per team per week.
func ParseTeamWeek(r io.Reader, maxWeek int) (model.SeasonScores, error) {
	t, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return teamWeekScores(t, maxWeek)
}

// ParseTeamWeekXLSX reads the team-week columns from the first sheet of an
// XLSX workbook.
func ParseTeamWeekXLSX(r io.Reader, maxWeek int) (model.SeasonScores, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyInput
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	t, err := newTable(rows)
	if err != nil {
		return nil, err
	}
	return teamWeekScores(t, maxWeek)
}

func teamWeekScores(t *table, maxWeek int) (model.SeasonScores, error) {
	cols, err := t.columns(ColumnWeek, ColumnTeamCode, ColumnScore)
	if err != nil {
		return nil, err
	}
	weekCol, teamCol, scoreCol := cols[0], cols[1], cols[2]

	scores := make(model.SeasonScores)
	for _, row := range t.rows {
		week, ok := parseWeek(cell(row, weekCol))
		if !ok || week > maxWeek {
			continue
		}
		team := cell(row, teamCol)
		if team == "" {
			continue
		}
		s, ok := parseScore(cell(row, scoreCol))
		if !ok {
			continue
		}
		scores.Set(week, team, s)
	}
	return scores, nil
}
