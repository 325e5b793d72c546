package korm_test

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/thorsenk/rffl-tools/internal/domain/korm"
)

func TestTeamResult_AddStrike(t *testing.T) {
	Convey("Given a fresh team", t, func() {
		team := korm.NewTeamResult("BUF")
		So(team.Status, ShouldEqual, korm.StatusActive)

		Convey("When it takes one strike", func() {
			out := team.AddStrike(3, 71.5)

			Convey("Then it is on notice", func() {
				So(out, ShouldBeFalse)
				So(team.Status, ShouldEqual, korm.StatusOnNotice)
				So(team.EliminationWeek, ShouldEqual, 0)
			})

			Convey("And a second strike eliminates it in that week", func() {
				So(team.AddStrike(7, 64.2), ShouldBeTrue)
				So(team.IsEliminated(), ShouldBeTrue)
				So(team.EliminationWeek, ShouldEqual, 7)
				So(team.StrikeWeeks(), ShouldResemble, []int{3, 7})
				So(team.Strikes[1], ShouldResemble, korm.Strike{Week: 7, Score: 64.2})
			})

			Convey("And strikes after elimination are ignored", func() {
				team.AddStrike(7, 64.2)
				So(team.AddStrike(9, 50), ShouldBeFalse)
				So(team.StrikeCount(), ShouldEqual, 2)
				So(team.EliminationWeek, ShouldEqual, 7)
			})
		})
	})
}

func TestStatus_Text(t *testing.T) {
	Convey("Status encodes as text", t, func() {
		b, err := json.Marshal(map[string]korm.Status{"s": korm.StatusOnNotice})
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, `{"s":"on_notice"}`)

		var back map[string]korm.Status
		So(json.Unmarshal(b, &back), ShouldBeNil)
		So(back["s"], ShouldEqual, korm.StatusOnNotice)

		_, err = korm.ParseStatus("benched")
		So(errors.Is(err, korm.ErrInvalidStatus), ShouldBeTrue)

		_, err = korm.Status(9).MarshalText()
		So(errors.Is(err, korm.ErrInvalidStatus), ShouldBeTrue)
	})
}

func TestModeFor(t *testing.T) {
	Convey("The strike mode follows the active count", t, func() {
		So(korm.ModeFor(12), ShouldEqual, korm.TwoStrike)
		So(korm.ModeFor(5), ShouldEqual, korm.TwoStrike)
		So(korm.ModeFor(4), ShouldEqual, korm.OneStrike)
		So(korm.ModeFor(2), ShouldEqual, korm.OneStrike)
		So(korm.TwoStrike.Cutoff(), ShouldEqual, 2)
		So(korm.OneStrike.Cutoff(), ShouldEqual, 1)
	})
}
