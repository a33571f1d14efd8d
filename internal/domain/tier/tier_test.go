package tier_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/razaool/baseline/internal/domain/tier"
)

func TestTable(t *testing.T) {
	Convey("Given the default tier table", t, func() {
		table := tier.New()

		Convey("Then the standard tiers are present", func() {
			info, ok := table.Lookup("Grand Slam")
			So(ok, ShouldBeTrue)
			So(info.Weight, ShouldAlmostEqual, 2.0, 1e-12)
			So(info.Importance, ShouldAlmostEqual, 100, 1e-12)

			So(table.Weight("ATP 250"), ShouldAlmostEqual, 1.0, 1e-12)
			So(table.Weight("Challenger"), ShouldAlmostEqual, 0.8, 1e-12)
		})

		Convey("Then Masters aliases Masters 1000", func() {
			So(table.Weight("Masters"), ShouldAlmostEqual, table.Weight("Masters 1000"), 1e-12)
		})

		Convey("When a tier is unknown", func() {
			info, ok := table.Lookup("Exhibition")

			Convey("Then it falls back to weight 1.0 non-fatally", func() {
				So(ok, ShouldBeFalse)
				So(info.Weight, ShouldAlmostEqual, tier.DefaultWeight, 1e-12)
				So(info.Importance, ShouldAlmostEqual, tier.DefaultImportance, 1e-12)
			})
		})
	})

	Convey("Given overrides", t, func() {
		table := tier.New(
			tier.WithEntry("Grand Slam", tier.Info{Weight: 2.5, Importance: 100}),
			tier.WithEntries(map[string]tier.Info{
				"United Cup": {Weight: 1.1, Importance: 50},
			}),
		)

		Convey("Then overrides replace and extend the defaults", func() {
			So(table.Weight("Grand Slam"), ShouldAlmostEqual, 2.5, 1e-12)
			So(table.Weight("United Cup"), ShouldAlmostEqual, 1.1, 1e-12)
		})

		Convey("Then invalid overrides are ignored", func() {
			bad := tier.New(tier.WithEntry("Broken", tier.Info{Weight: 0}))
			_, ok := bad.Lookup("Broken")
			So(ok, ShouldBeFalse)
		})
	})
}
