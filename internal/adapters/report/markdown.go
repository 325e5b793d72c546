package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/thorsenk/rffl-tools/internal/domain/korm"
)

// DefaultLeagueID is the league named in the markdown footer.
const DefaultLeagueID = "323196"

// Markdown renders the season history: season info, one table per week,
// final standings and the champion.
func Markdown(w io.Writer, r *korm.SeasonResult, generated time.Time, leagueID string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# KORM History - %d Season\n\n", r.Season)
	b.WriteString("## Season Info\n")
	fmt.Fprintf(&b, "- **Entry Fee:** $%d/team\n", r.EntryFee)
	fmt.Fprintf(&b, "- **Pool:** $%s\n", thousands(r.Pool))
	fmt.Fprintf(&b, "- **Window:** Weeks %d-%d\n", r.Window.Start, r.Window.End)
	fmt.Fprintf(&b, "- **Teams:** %d\n", len(r.Teams))
	if r.EndedEarly {
		b.WriteString("- **Status:** Ended early (Last Team Standing)\n")
	}

	b.WriteString("\n---\n\n## Week-by-Week Results\n")
	strikes := make(map[string]int, len(r.Teams))
	for _, wk := range r.Weeks {
		fmt.Fprintf(&b, "\n### Week %d\n", wk.Week)
		fmt.Fprintf(&b, "- **Active:** %d | **Mode:** %s\n\n", wk.ActiveCountStart, wk.Mode)
		b.WriteString("| Rank | Team | Score | Status |\n")
		b.WriteString("|------|------|-------|--------|\n")

		for _, t := range wk.Struck {
			strikes[t]++
		}
		for i, e := range wk.Scores {
			var status string
			switch {
			case wk.WasEliminated(e.Team):
				status = "☠️ ELIMINATED"
			case wk.WasStruck(e.Team):
				status = fmt.Sprintf("⚠️ Strike %d", strikes[e.Team])
			default:
				status = "Safe"
			}
			fmt.Fprintf(&b, "| %d | %s | %.2f | %s |\n", i+1, e.Team, e.Score, status)
		}
		if len(wk.Eliminated) > 0 {
			fmt.Fprintf(&b, "\n**Eliminations:** %s\n", strings.Join(wk.Eliminated, ", "))
		}
	}

	b.WriteString("\n---\n\n## Final Standings\n\n")
	b.WriteString("| Place | Team | Strikes | Strike History | Prize |\n")
	b.WriteString("|-------|------|---------|----------------|-------|\n")
	for _, t := range r.Standings() {
		place := "-"
		if t.FinalPlace > 0 {
			place = strconv.Itoa(t.FinalPlace)
		}
		team := "**" + t.TeamCode + "**"
		if t.IsEliminated() {
			team = "~~" + t.TeamCode + "~~"
		}
		history := "-"
		if weeks := t.StrikeWeeks(); len(weeks) > 0 {
			parts := make([]string, len(weeks))
			for i, wk := range weeks {
				parts[i] = "W" + strconv.Itoa(wk)
			}
			history = strings.Join(parts, ", ")
		}
		prize := "-"
		if t.Payout > 0 {
			prize = "$" + thousands(t.Payout)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n", place, team, t.StrikeCount(), history, prize)
	}

	if r.Winner != "" {
		fmt.Fprintf(&b, "\n---\n\n## Champion: %s 🏆\n", r.Winner)
	}

	if leagueID == "" {
		leagueID = DefaultLeagueID
	}
	fmt.Fprintf(&b, "\n---\n\n*Generated: %s*\n*RFFL League ID: %s*\n",
		generated.Format(time.DateTime), leagueID)

	_, err := io.WriteString(w, b.String())
	return err
}

// thousands formats n with comma separators.
func thousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	if neg {
		return "-" + out.String()
	}
	return out.String()
}
