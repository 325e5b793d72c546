package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// table is a header row plus data rows, whatever file format they came from.
type table struct {
	header map[string]int
	rows   [][]string
}

func newTable(rows [][]string) (*table, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	header := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}
	return &table{header: header, rows: rows[1:]}, nil
}

func readCSV(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return newTable(rows)
}

// columns resolves the indexes of the named columns.
func (t *table) columns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		col, ok := t.header[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		idx[i] = col
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// maxWeekNumber bounds week values before conversion to int.
const maxWeekNumber = math.MaxInt32

// parseWeek accepts integer weeks, including whole floats such as "3.0".
func parseWeek(v string) (int, bool) {
	if w, err := strconv.Atoi(v); err == nil {
		return w, w > 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || f <= 0 || f > maxWeekNumber {
		return 0, false
	}
	return int(f), true
}

func parseScore(v string) (float64, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
