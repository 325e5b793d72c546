package loader

import (
	"io"

	"github.com/thorsenk/rffl-tools/internal/domain/model"
)

// ParseHeadToHead reads a matchup CSV with week, home_team, away_team,
// home_score and away_score columns. Both sides of every matchup are
// recorded. Weeks after maxWeek are dropped; malformed rows are skipped.
func ParseHeadToHead(r io.Reader, maxWeek int) (model.SeasonScores, error) {
	t, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns("week", "home_team", "away_team", "home_score", "away_score")
	if err != nil {
		return nil, err
	}
	weekCol, homeCol, awayCol, homeScoreCol, awayScoreCol := cols[0], cols[1], cols[2], cols[3], cols[4]

	scores := make(model.SeasonScores)
	for _, row := range t.rows {
		week, ok := parseWeek(cell(row, weekCol))
		if !ok || week > maxWeek {
			continue
		}
		if team := cell(row, homeCol); team != "" {
			if s, ok := parseScore(cell(row, homeScoreCol)); ok {
				scores.Set(week, team, s)
			}
		}
		if team := cell(row, awayCol); team != "" {
			if s, ok := parseScore(cell(row, awayScoreCol)); ok {
				scores.Set(week, team, s)
			}
		}
	}
	return scores, nil
}
