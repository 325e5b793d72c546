package korm_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/thorsenk/rffl-tools/internal/domain/korm"
	"github.com/thorsenk/rffl-tools/internal/domain/model"
)

func newTeams(codes ...string) map[string]*korm.TeamResult {
	teams := make(map[string]*korm.TeamResult, len(codes))
	for _, c := range codes {
		teams[c] = korm.NewTeamResult(c)
	}
	return teams
}

func numberedTeams(n int) (map[string]*korm.TeamResult, model.ScoreSet) {
	teams := make(map[string]*korm.TeamResult, n)
	scores := make(model.ScoreSet, n)
	for i := 0; i < n; i++ {
		code := fmt.Sprintf("TEAM%d", i)
		teams[code] = korm.NewTeamResult(code)
		scores[code] = 100.0 - float64(i)*10
	}
	return teams, scores
}

func TestProcessWeek_StrikeMode(t *testing.T) {
	Convey("Given a week to process", t, func() {
		Convey("When 5 teams are active", func() {
			teams, scores := numberedTeams(5)
			result := korm.ProcessWeek(1, scores, teams)

			Convey("Then the bottom two are struck", func() {
				So(result.Mode, ShouldEqual, korm.TwoStrike)
				So(result.Struck, ShouldResemble, []string{"TEAM4", "TEAM3"})
				So(result.ActiveCountStart, ShouldEqual, 5)
			})
		})

		Convey("When 4 teams are active", func() {
			teams, scores := numberedTeams(4)
			result := korm.ProcessWeek(1, scores, teams)

			Convey("Then only the lowest is struck", func() {
				So(result.Mode, ShouldEqual, korm.OneStrike)
				So(result.Struck, ShouldResemble, []string{"TEAM3"})
			})
		})

		Convey("When 12 teams are active", func() {
			teams, scores := numberedTeams(12)
			result := korm.ProcessWeek(1, scores, teams)

			Convey("Then two teams are struck", func() {
				So(result.Mode, ShouldEqual, korm.TwoStrike)
				So(len(result.Struck), ShouldEqual, 2)
			})
		})

		Convey("When an active team has no score this week", func() {
			teams := newTeams("A", "B", "C", "D", "E")
			scores := model.ScoreSet{"A": 100, "B": 90, "C": 80, "D": 70}
			result := korm.ProcessWeek(3, scores, teams)

			Convey("Then it still counts toward the strike mode but cannot be struck", func() {
				So(result.ActiveCountStart, ShouldEqual, 5)
				So(result.Mode, ShouldEqual, korm.TwoStrike)
				So(result.Struck, ShouldResemble, []string{"D", "C"})
				So(len(result.Scores), ShouldEqual, 4)
				So(teams["E"].StrikeCount(), ShouldEqual, 0)
			})
		})

		Convey("When fewer teams scored than the cutoff", func() {
			teams := newTeams("A", "B", "C", "D", "E")
			result := korm.ProcessWeek(2, model.ScoreSet{"A": 42}, teams)

			Convey("Then nobody is struck", func() {
				So(result.Mode, ShouldEqual, korm.TwoStrike)
				So(result.Struck, ShouldBeEmpty)
				So(result.Eliminated, ShouldBeEmpty)
				So(teams["A"].Status, ShouldEqual, korm.StatusActive)
			})
		})
	})
}

func TestProcessWeek_Ties(t *testing.T) {
	Convey("Given teams tied around the strike cutoff", t, func() {
		Convey("When three teams tie at the second-lowest score", func() {
			teams := newTeams("A", "B", "C", "D", "E", "F")
			scores := model.ScoreSet{"A": 100, "B": 90, "C": 70, "D": 70, "E": 70, "F": 50}
			result := korm.ProcessWeek(1, scores, teams)

			Convey("Then all tied teams share the strike", func() {
				So(result.Struck, ShouldResemble, []string{"F", "C", "D", "E"})
				for _, code := range []string{"C", "D", "E", "F"} {
					So(teams[code].Status, ShouldEqual, korm.StatusOnNotice)
				}
				So(teams["A"].StrikeCount(), ShouldEqual, 0)
			})
		})

		Convey("When two teams tie for the lowest score in 2-strike mode", func() {
			teams := newTeams("A", "B", "C", "D", "E")
			scores := model.ScoreSet{"A": 100, "B": 90, "C": 80, "D": 60, "E": 60}
			result := korm.ProcessWeek(1, scores, teams)

			Convey("Then exactly the tied pair is struck", func() {
				So(result.Struck, ShouldResemble, []string{"D", "E"})
			})
		})

		Convey("When two teams tie for the lowest score in 1-strike mode", func() {
			teams := newTeams("A", "B", "C", "D")
			scores := model.ScoreSet{"A": 100, "B": 60, "C": 60, "D": 90}
			result := korm.ProcessWeek(1, scores, teams)

			Convey("Then both are struck", func() {
				So(result.Mode, ShouldEqual, korm.OneStrike)
				So(result.Struck, ShouldResemble, []string{"B", "C"})
			})
		})
	})
}

func TestProcessWeek_Elimination(t *testing.T) {
	Convey("Given a team already on notice", t, func() {
		teams := newTeams("A", "B", "C", "D", "E")
		teams["A"].AddStrike(1, 60)
		scores := model.ScoreSet{"A": 50, "B": 100, "C": 90, "D": 80, "E": 70}

		Convey("When it is struck again", func() {
			result := korm.ProcessWeek(2, scores, teams)

			Convey("Then it is eliminated in that week", func() {
				So(result.Eliminated, ShouldResemble, []string{"A"})
				So(teams["A"].Status, ShouldEqual, korm.StatusEliminated)
				So(teams["A"].EliminationWeek, ShouldEqual, 2)
				So(teams["A"].StrikeWeeks(), ShouldResemble, []int{1, 2})
				So(teams["E"].Status, ShouldEqual, korm.StatusOnNotice)
				So(result.ActiveCountEnd, ShouldEqual, 4)
			})
		})
	})

	Convey("Given an eliminated team", t, func() {
		teams := newTeams("A", "B", "C", "D", "E")
		teams["A"].AddStrike(1, 60)
		teams["A"].AddStrike(2, 55)
		scores := model.ScoreSet{"A": 40, "B": 100, "C": 90, "D": 80, "E": 70}

		Convey("When a later week is processed", func() {
			result := korm.ProcessWeek(3, scores, teams)

			Convey("Then it is ignored", func() {
				So(result.ActiveCountStart, ShouldEqual, 4)
				So(result.Mode, ShouldEqual, korm.OneStrike)
				So(result.Struck, ShouldResemble, []string{"E"})
				So(teams["A"].StrikeCount(), ShouldEqual, 2)
				So(teams["A"].EliminationWeek, ShouldEqual, 2)
				for _, e := range result.Scores {
					So(e.Team, ShouldNotEqual, "A")
				}
			})
		})
	})
}

func TestProcessWeek_DisplayOrder(t *testing.T) {
	Convey("Given a processed week", t, func() {
		teams := newTeams("A", "B", "C", "D", "E")
		scores := model.ScoreSet{"A": 80, "B": 120.5, "C": 95, "D": 95, "E": 60}
		result := korm.ProcessWeek(1, scores, teams)

		Convey("Then scores are listed highest first", func() {
			So(result.Scores, ShouldResemble, []korm.ScoreEntry{
				{Team: "B", Score: 120.5},
				{Team: "C", Score: 95},
				{Team: "D", Score: 95},
				{Team: "A", Score: 80},
				{Team: "E", Score: 60},
			})
		})
	})
}
