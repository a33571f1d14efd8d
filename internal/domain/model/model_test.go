package model_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/razaool/baseline/internal/domain/model"
)

func TestNormalizeSurface(t *testing.T) {
	Convey("Given raw surface strings", t, func() {
		Convey("Then recognized surfaces normalize case and whitespace", func() {
			cases := map[string]model.Surface{
				"clay":    model.Clay,
				"Clay":    model.Clay,
				"  GRASS": model.Grass,
				"hard":    model.Hard,
				"Carpet ": model.Carpet,
			}
			for raw, want := range cases {
				got, ok := model.NormalizeSurface(raw)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Then unknown and empty values fall back to hard", func() {
			got, ok := model.NormalizeSurface("astroturf")
			So(ok, ShouldBeFalse)
			So(got, ShouldEqual, model.Hard)

			got, ok = model.NormalizeSurface("")
			So(ok, ShouldBeFalse)
			So(got, ShouldEqual, model.Hard)
		})
	})
}

func TestMatchOrdering(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given matches on distinct dates", t, func() {
		a := model.Match{ID: 9, Date: day}
		b := model.Match{ID: 1, Date: day.AddDate(0, 0, 1)}

		Convey("Then the earlier date sorts first regardless of id", func() {
			So(a.Before(b), ShouldBeTrue)
			So(b.Before(a), ShouldBeFalse)
		})
	})

	Convey("Given matches on the same date", t, func() {
		a := model.Match{ID: 1, Date: day}
		b := model.Match{ID: 2, Date: day}

		Convey("Then the lower match id breaks the tie", func() {
			So(a.Before(b), ShouldBeTrue)
			So(b.Before(a), ShouldBeFalse)
		})

		Convey("And a match never sorts before itself", func() {
			So(a.Before(a), ShouldBeFalse)
		})
	})
}

func TestMatchLoserID(t *testing.T) {
	Convey("Given a decided match", t, func() {
		m := model.Match{Player1ID: 10, Player2ID: 20, WinnerID: 10}
		So(m.LoserID(), ShouldEqual, 20)

		m.WinnerID = 20
		So(m.LoserID(), ShouldEqual, 10)
	})
}
