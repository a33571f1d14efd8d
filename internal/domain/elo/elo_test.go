package elo_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/razaool/baseline/internal/domain/elo"
	"github.com/razaool/baseline/internal/domain/model"
)

func match(id int64, winner int64, surface string) model.Match {
	return model.Match{
		ID:        id,
		Date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Tier:      "ATP 250",
		Surface:   surface,
		Round:     "R32",
		Player1ID: 1,
		Player2ID: 2,
		WinnerID:  winner,
	}
}

func TestExpected(t *testing.T) {
	Convey("Given the logistic expected-score model", t, func() {
		Convey("Then expectations for any pair sum to exactly one", func() {
			pairs := [][2]float64{{1500, 1500}, {1700, 1400}, {2400, 1500}, {1000, 2800}}
			for _, p := range pairs {
				So(elo.Expected(p[0], p[1])+elo.Expected(p[1], p[0]), ShouldAlmostEqual, 1.0, 1e-12)
			}
		})

		Convey("Then equal ratings expect an even match", func() {
			So(elo.Expected(1500, 1500), ShouldAlmostEqual, 0.5, 1e-12)
		})
	})
}

func TestEngineApply(t *testing.T) {
	Convey("Given two unrated players in an ATP-250 hard-court match", t, func() {
		e := elo.New()
		winner, loser := e.Apply(match(1, 1, "hard"), model.Hard, 1.0)

		Convey("Then K=32 at expectation 0.5 moves exactly 16 points", func() {
			So(winner.Overall, ShouldAlmostEqual, 1516, 1e-9)
			So(loser.Overall, ShouldAlmostEqual, 1484, 1e-9)
			So(winner.Hard, ShouldAlmostEqual, 1516, 1e-9)
			So(loser.Hard, ShouldAlmostEqual, 1484, 1e-9)
		})

		Convey("And only the matched surface sub-rating moves", func() {
			So(winner.Clay, ShouldAlmostEqual, 1500, 1e-9)
			So(winner.Grass, ShouldAlmostEqual, 1500, 1e-9)
			So(winner.Carpet, ShouldAlmostEqual, 1500, 1e-9)
		})
	})

	Convey("Given players with unequal ratings", t, func() {
		e := elo.New()
		// Seed an asymmetric position first.
		e.Apply(match(1, 1, "clay"), model.Clay, 2.0)
		e.Apply(match(2, 1, "clay"), model.Clay, 1.5)

		preW, preL := e.Rating(1), e.Rating(2)
		winner, loser := e.Apply(match(3, 1, "clay"), model.Clay, 1.2)

		Convey("Then the exchange is zero-sum on every updated dimension", func() {
			So(winner.Overall-preW.Overall, ShouldAlmostEqual, preL.Overall-loser.Overall, 1e-9)
			So(winner.Clay-preW.Clay, ShouldAlmostEqual, preL.Clay-loser.Clay, 1e-9)
		})

		Convey("And the favorite gains less than sixteen tier-weighted points", func() {
			So(winner.Overall-preW.Overall, ShouldBeLessThan, 32*1.2*0.5)
			So(winner.Overall, ShouldBeGreaterThan, preW.Overall)
		})
	})

	Convey("Given a non-positive tier weight", t, func() {
		e := elo.New()
		winner, _ := e.Apply(match(1, 1, "hard"), model.Hard, 0)

		Convey("Then the engine falls back to weight 1.0", func() {
			So(winner.Overall, ShouldAlmostEqual, 1516, 1e-9)
		})
	})

	Convey("Given a fresh engine", t, func() {
		e := elo.New(elo.WithInitialRating(1400), elo.WithBaseK(24))

		Convey("Then unseen players read at the configured rating without being tracked", func() {
			So(e.Seen(7), ShouldBeFalse)
			So(e.Rating(7).Overall, ShouldAlmostEqual, 1400, 1e-9)
			So(e.Seen(7), ShouldBeFalse)
			So(e.TrackedPlayers(), ShouldEqual, 0)
		})
	})
}
