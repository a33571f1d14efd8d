package glicko_test

import (
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/razaool/baseline/internal/domain/glicko"
	"github.com/razaool/baseline/internal/domain/model"
)

func match(id int64, date time.Time, surface string) model.Match {
	return model.Match{
		ID:        id,
		Date:      date,
		Tier:      "ATP 250",
		Surface:   surface,
		Round:     "R32",
		Player1ID: 1,
		Player2ID: 2,
		WinnerID:  1,
	}
}

func TestInflateRD(t *testing.T) {
	Convey("Given a player away from competition", t, func() {
		r := glicko.Rating{Rating: 1500, RD: 50, Volatility: 0.06}

		Convey("When 400 days elapse", func() {
			inflated := glicko.InflateRD(r, 400)

			Convey("Then RD grows by the rating-period formula", func() {
				want := math.Sqrt(50*50 + (400.0/30.0)*0.06*0.06)
				So(inflated.RD, ShouldAlmostEqual, want, 1e-9)
				So(inflated.RD, ShouldBeGreaterThan, r.RD)
			})
		})

		Convey("When no time elapses", func() {
			So(glicko.InflateRD(r, 0).RD, ShouldAlmostEqual, 50, 1e-12)
		})

		Convey("When the deviation is already at the ceiling", func() {
			atCeiling := glicko.Rating{Rating: 1500, RD: 350, Volatility: 0.06}
			inflated := glicko.InflateRD(atCeiling, 10000)

			Convey("Then it never exceeds 350", func() {
				So(inflated.RD, ShouldAlmostEqual, 350, 1e-12)
			})
		})

		Convey("Then decay never decreases RD", func() {
			for _, days := range []float64{1, 30, 365, 4000} {
				So(glicko.InflateRD(r, days).RD, ShouldBeGreaterThanOrEqualTo, r.RD)
			}
		})
	})
}

func TestEngineApply(t *testing.T) {
	day1 := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given two fresh players playing one hard-court match", t, func() {
		e := glicko.New()
		winner, loser := e.Apply(match(1, day1, "hard"), model.Hard, 1.0)

		Convey("Then the winner gains and the loser loses symmetrically", func() {
			So(winner.Overall.Rating, ShouldBeGreaterThan, 1500)
			So(loser.Overall.Rating, ShouldBeLessThan, 1500)
			So(winner.Overall.Rating-1500, ShouldAlmostEqual, 1500-loser.Overall.Rating, 1e-6)
		})

		Convey("And a decided match shrinks both deviations", func() {
			So(winner.Overall.RD, ShouldBeLessThan, 350)
			So(loser.Overall.RD, ShouldBeLessThan, 350)
		})

		Convey("And volatility is carried through unchanged", func() {
			So(winner.Overall.Volatility, ShouldAlmostEqual, 0.06, 1e-12)
			So(loser.Overall.Volatility, ShouldAlmostEqual, 0.06, 1e-12)
		})

		Convey("And only the matched surface state moves", func() {
			So(winner.Hard.Rating, ShouldBeGreaterThan, 1500)
			So(winner.Clay.Rating, ShouldAlmostEqual, 1500, 1e-9)
			So(winner.Grass.Rating, ShouldAlmostEqual, 1500, 1e-9)
		})
	})

	Convey("Given the same match at two tournament tiers", t, func() {
		low, high := glicko.New(), glicko.New()
		lw, _ := low.Apply(match(1, day1, "hard"), model.Hard, 1.0)
		hw, _ := high.Apply(match(1, day1, "hard"), model.Hard, 2.0)

		Convey("Then the higher tier carries more information and shrinks RD further", func() {
			So(hw.Overall.RD, ShouldBeLessThan, lw.Overall.RD)
		})

		Convey("And the lower variance takes a smaller rating step", func() {
			So(hw.Overall.Rating, ShouldBeGreaterThan, 1500)
			So(hw.Overall.Rating, ShouldBeLessThan, lw.Overall.Rating)
		})
	})

	Convey("Given a long gap between a player's matches", t, func() {
		e := glicko.New()
		e.Apply(match(1, day1, "hard"), model.Hard, 1.0)
		afterFirst := e.Ratings(1)

		// Same opponent 400 days later.
		winner, _ := e.Apply(match(2, day1.AddDate(0, 0, 400), "hard"), model.Hard, 1.0)

		Convey("Then inactivity inflated the pre-match RD before the update", func() {
			// Compare against a back-to-back second match.
			control := glicko.New()
			control.Apply(match(1, day1, "hard"), model.Hard, 1.0)
			controlWinner, _ := control.Apply(match(2, day1, "hard"), model.Hard, 1.0)

			So(winner.Overall.RD, ShouldBeGreaterThan, controlWinner.Overall.RD)
			So(afterFirst.Overall.RD, ShouldBeLessThan, 350)
		})
	})

	Convey("Given a carpet match", t, func() {
		e := glicko.New()
		winner, _ := e.Apply(match(1, day1, "carpet"), model.Hard, 1.0)

		Convey("Then it folds into the hard-court state", func() {
			So(winner.Hard.Rating, ShouldBeGreaterThan, 1500)
			So(winner.Clay.Rating, ShouldAlmostEqual, 1500, 1e-9)
		})
	})
}
