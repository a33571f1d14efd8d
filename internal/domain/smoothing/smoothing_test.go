package smoothing_test

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/razaool/baseline/internal/domain/smoothing"
)

func TestSmooth(t *testing.T) {
	Convey("Given a series too short to smooth", t, func() {
		series := []float64{1500, 1516, 1532, 1520}
		out := smoothing.Smooth(series)

		Convey("Then it passes through unchanged", func() {
			So(out, ShouldResemble, series)
		})

		Convey("And the input is not aliased", func() {
			out[0] = 0
			So(series[0], ShouldAlmostEqual, 1500, 1e-12)
		})
	})

	Convey("Given a constant series", t, func() {
		series := make([]float64, 60)
		for i := range series {
			series[i] = 1700
		}
		out := smoothing.Smooth(series)

		Convey("Then smoothing is the identity", func() {
			for _, v := range out {
				So(v, ShouldAlmostEqual, 1700, 1e-9)
			}
		})

		Convey("And re-smoothing returns the same values", func() {
			again := smoothing.Smooth(out)
			for i := range again {
				So(again[i], ShouldAlmostEqual, out[i], 1e-9)
			}
		})
	})

	Convey("Given a noisy rating trajectory", t, func() {
		rng := rand.New(rand.NewSource(7))
		series := make([]float64, 200)
		for i := range series {
			series[i] = 1500 + 2.0*float64(i) + 40.0*rng.NormFloat64()
		}

		out := smoothing.Smooth(series)

		Convey("Then the output has the same length", func() {
			So(len(out), ShouldEqual, len(series))
		})

		Convey("And re-running is deterministic", func() {
			again := smoothing.Smooth(series)
			So(again, ShouldResemble, out)
		})

		Convey("And the curve is smoother than the input", func() {
			So(roughness(out), ShouldBeLessThan, roughness(series))
		})

		Convey("And it tracks the underlying trend", func() {
			mid := len(series) / 2
			trend := 1500 + 2.0*float64(mid)
			So(math.Abs(out[mid]-trend), ShouldBeLessThan, 60)
		})
	})

	Convey("Given a short but smoothable series", t, func() {
		series := []float64{1500, 1510, 1490, 1520, 1505, 1515, 1500}
		out := smoothing.Smooth(series)

		So(len(out), ShouldEqual, len(series))
	})
}

// roughness sums squared second differences, the quantity the spline
// penalizes.
func roughness(series []float64) float64 {
	var sum float64
	for i := 2; i < len(series); i++ {
		d := series[i] - 2*series[i-1] + series[i-2]
		sum += d * d
	}
	return sum
}
