// Package smoothing post-processes a completed per-player TSR series into
// the display-smoothed curve: a centered rolling mean followed by a cubic
// smoothing spline evaluated at the original indices.
//
// Smooth is a pure function: deterministic, side-effect free, and re-run in
// full whenever any upstream rating in the series changes.
package smoothing

import "math"

const (
	// Series shorter than this pass through unsmoothed.
	minSeriesLen = 5

	// Rolling-mean window: min(maxWindow, N), never below minWindow.
	maxWindow = 20
	minWindow = 5

	// Spline smoothing factor per series point: s = smoothingPerPoint * N.
	smoothingPerPoint = 10.0

	bisectionIterations = 80
	alphaFloor          = 1e-10
	alphaCeil           = 1e16
)

// Smooth returns the smoothed variant of one player's ordered rating
// series. The output always has the same length as the input.
func Smooth(series []float64) []float64 {
	n := len(series)
	if n < minSeriesLen {
		out := make([]float64, n)
		copy(out, series)
		return out
	}

	window := maxWindow
	if n < window {
		window = n
	}
	if window < minWindow {
		window = minWindow
	}

	rolled := rollingMean(series, window)
	return smoothingSpline(rolled, smoothingPerPoint*float64(n))
}

// rollingMean is a centered moving average; near the edges the window is
// clamped to the series bounds.
func rollingMean(series []float64, window int) []float64 {
	n := len(series)
	half := window / 2
	out := make([]float64, n)
	for i := range series {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > n-1 {
			hi = n - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += series[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// smoothingSpline fits a natural cubic smoothing spline over y (sampled at
// unit-spaced indices) whose residual sum of squares matches the smoothing
// factor s, and evaluates it at each index. The roughness penalty follows
// Green & Silverman: minimize ||y-f||^2 + alpha * integral(f'')^2, solved
// through the banded system (R + alpha*QtQ) gamma = Qt*y; alpha is found by
// bisection so the residual hits s. When even the least-squares line fits
// within s, the line is the limit solution.
func smoothingSpline(y []float64, s float64) []float64 {
	n := len(y)
	if n < 3 {
		out := make([]float64, n)
		copy(out, y)
		return out
	}

	line, lineRSS := linearFit(y)
	if lineRSS <= s {
		return line
	}

	// Residual grows monotonically with alpha, from 0 toward lineRSS, so a
	// crossing of s is bracketed before bisecting.
	lo := alphaFloor
	hi := lo
	for hi < alphaCeil {
		if _, rss := fitPenalized(y, hi); rss >= s {
			break
		}
		hi *= 10
	}

	var fit []float64
	for i := 0; i < bisectionIterations; i++ {
		mid := math.Sqrt(lo * hi)
		f, rss := fitPenalized(y, mid)
		fit = f
		if rss > s {
			hi = mid
		} else {
			lo = mid
		}
	}
	return fit
}

// fitPenalized solves the penalized least-squares system for a fixed alpha
// and returns the fitted values with their residual sum of squares.
func fitPenalized(y []float64, alpha float64) (fit []float64, rss float64) {
	n := len(y)
	m := n - 2

	// Banded SPD matrix A = R + alpha*QtQ for unit spacing:
	// diag 2/3 + 6a, first off-diagonal 1/6 - 4a, second off-diagonal a.
	diag := make([]float64, m)
	off1 := make([]float64, m)
	off2 := make([]float64, m)
	rhs := make([]float64, m)
	for i := 0; i < m; i++ {
		diag[i] = 2.0/3.0 + 6.0*alpha
		off1[i] = 1.0/6.0 - 4.0*alpha
		off2[i] = alpha
		rhs[i] = y[i] - 2.0*y[i+1] + y[i+2]
	}

	gamma := solveBanded(diag, off1, off2, rhs)

	fit = make([]float64, n)
	for j := 0; j < n; j++ {
		// (Q*gamma)[j]: column i of Q touches rows i, i+1, i+2.
		var qg float64
		if j <= m-1 {
			qg += gamma[j]
		}
		if j >= 1 && j-1 <= m-1 {
			qg -= 2.0 * gamma[j-1]
		}
		if j >= 2 && j-2 <= m-1 {
			qg += gamma[j-2]
		}
		fit[j] = y[j] - alpha*qg
		d := y[j] - fit[j]
		rss += d * d
	}
	return fit, rss
}

// solveBanded solves A*x = b by LDLt factorization for a symmetric
// positive-definite pentadiagonal matrix given by its diagonal and two
// off-diagonal bands (off1[i] = A[i+1,i], off2[i] = A[i+2,i]).
func solveBanded(diag, off1, off2, b []float64) []float64 {
	m := len(diag)
	d := make([]float64, m)
	l1 := make([]float64, m)
	l2 := make([]float64, m)

	d[0] = diag[0]
	if m > 1 {
		l1[1] = off1[0] / d[0]
		d[1] = diag[1] - l1[1]*l1[1]*d[0]
	}
	for i := 2; i < m; i++ {
		l2[i] = off2[i-2] / d[i-2]
		l1[i] = (off1[i-1] - l1[i-1]*l2[i]*d[i-2]) / d[i-1]
		d[i] = diag[i] - l1[i]*l1[i]*d[i-1] - l2[i]*l2[i]*d[i-2]
	}

	// Forward substitution L*z = b, then scale by D, then back-substitute.
	x := make([]float64, m)
	for i := 0; i < m; i++ {
		x[i] = b[i]
		if i >= 1 {
			x[i] -= l1[i] * x[i-1]
		}
		if i >= 2 {
			x[i] -= l2[i] * x[i-2]
		}
	}
	for i := 0; i < m; i++ {
		x[i] /= d[i]
	}
	for i := m - 1; i >= 0; i-- {
		if i+1 < m {
			x[i] -= l1[i+1] * x[i+1]
		}
		if i+2 < m {
			x[i] -= l2[i+2] * x[i+2]
		}
	}
	return x
}

// linearFit returns the least-squares line through y and its residual sum
// of squares.
func linearFit(y []float64) (fit []float64, rss float64) {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	var slope float64
	if denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}
	intercept := (sumY - slope*sumX) / n

	fit = make([]float64, len(y))
	for i := range y {
		fit[i] = intercept + slope*float64(i)
		d := y[i] - fit[i]
		rss += d * d
	}
	return fit, rss
}
