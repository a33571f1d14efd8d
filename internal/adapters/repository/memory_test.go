package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/razaool/baseline/internal/adapters/repository"
	"github.com/razaool/baseline/internal/domain/model"
)

func snapshot(playerID, matchID int64, career int, date time.Time, eloOverall float64) model.RatingSnapshot {
	return model.RatingSnapshot{
		PlayerID:          playerID,
		MatchID:           matchID,
		Date:              date,
		CareerMatchNumber: career,
		EloOverall:        eloOverall,
		EloClay:           1500,
		EloGrass:          1500,
		EloHard:           eloOverall,
		Glicko2Rating:     1500,
		Glicko2RD:         350,
		Glicko2Volatility: 0.06,
		TSRRating:         eloOverall,
		TSRUncertainty:    284,
		TSRSmoothed:       eloOverall,
		FormIndex:         100,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given an in-memory store", t, func() {
		store := repository.NewMemoryStore()

		Convey("When a valid history is saved", func() {
			history := []model.RatingSnapshot{
				snapshot(1, 10, 1, day, 1516),
				snapshot(1, 11, 2, day.AddDate(0, 0, 2), 1530),
				snapshot(1, 12, 3, day.AddDate(0, 0, 5), 1512),
			}
			So(store.SavePlayerHistory(ctx, 1, history), ShouldBeNil)

			Convey("Then the latest snapshot round-trips value-equal", func() {
				got, err := store.LatestSnapshot(ctx, 1)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, history[2])
			})

			Convey("Then as-of queries return the last snapshot at or before the date", func() {
				got, err := store.SnapshotAsOf(ctx, 1, day.AddDate(0, 0, 3))
				So(err, ShouldBeNil)
				So(got.MatchID, ShouldEqual, 11)

				_, err = store.SnapshotAsOf(ctx, 1, day.AddDate(0, 0, -1))
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a history repeats a date for the same player", func() {
			history := []model.RatingSnapshot{
				snapshot(1, 10, 1, day, 1516),
				snapshot(1, 11, 2, day, 1530),
			}
			err := store.SavePlayerHistory(ctx, 1, history)

			Convey("Then the write is rejected as an integrity violation", func() {
				So(errors.Is(err, repository.ErrDuplicateDate), ShouldBeTrue)
			})
		})

		Convey("When career match numbers have a gap", func() {
			history := []model.RatingSnapshot{
				snapshot(1, 10, 1, day, 1516),
				snapshot(1, 11, 3, day.AddDate(0, 0, 1), 1530),
			}
			err := store.SavePlayerHistory(ctx, 1, history)
			So(errors.Is(err, repository.ErrUnorderedHistory), ShouldBeTrue)
		})

		Convey("When no snapshots exist for a player", func() {
			_, err := store.LatestSnapshot(ctx, 42)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When ranking the leaderboard", func() {
			So(store.SavePlayerHistory(ctx, 1, []model.RatingSnapshot{snapshot(1, 10, 1, day, 1516)}), ShouldBeNil)
			So(store.SavePlayerHistory(ctx, 2, []model.RatingSnapshot{snapshot(2, 11, 1, day.AddDate(0, 0, 1), 1700)}), ShouldBeNil)
			So(store.SavePlayerHistory(ctx, 3, []model.RatingSnapshot{snapshot(3, 12, 1, day.AddDate(0, 0, 2), 1600)}), ShouldBeNil)

			rows, err := store.TopPlayers(ctx, 2)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[0].PlayerID, ShouldEqual, 2)
			So(rows[1].PlayerID, ShouldEqual, 3)

			Convey("And a non-positive limit is rejected", func() {
				_, err := store.TopPlayers(ctx, 0)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})
		})

		Convey("When checkpoints are saved for a run", func() {
			So(store.SaveCheckpoint(ctx, "run-a", 1), ShouldBeNil)
			So(store.SaveCheckpoint(ctx, "run-a", 2), ShouldBeNil)
			So(store.SaveCheckpoint(ctx, "run-b", 3), ShouldBeNil)

			committed, err := store.CommittedPlayers(ctx, "run-a")
			So(err, ShouldBeNil)
			So(committed, ShouldContainKey, int64(1))
			So(committed, ShouldContainKey, int64(2))
			So(committed, ShouldNotContainKey, int64(3))
		})

		Convey("When a player's identity is upserted", func() {
			So(store.UpsertPlayer(ctx, model.Player{ID: 1, Name: "R. Nadal", Country: "ESP"}), ShouldBeNil)
			So(store.UpsertPlayer(ctx, model.Player{ID: 1, Name: "Rafael Nadal", Country: "ESP"}), ShouldBeNil)
		})
	})
}
