// Package stats provides the small statistical toolkit used by the
// validation harness: RMSE, Pearson correlation, least-squares trend, and
// bootstrap confidence intervals.
package stats

import (
	"math"
	"math/rand"
	"sort"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// RMSE returns the root-mean-square error between two equal-length series.
// Returns NaN when the lengths differ or the series are empty.
func RMSE(predicted, observed []float64) float64 {
	if len(predicted) == 0 || len(predicted) != len(observed) {
		return math.NaN()
	}
	sum := 0.0
	for i := range predicted {
		d := predicted[i] - observed[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(predicted)))
}

// Pearson returns the Pearson correlation coefficient of two equal-length
// series. Returns 0 when either series has zero variance, and NaN when the
// lengths differ or fewer than two points are given.
func Pearson(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return math.NaN()
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

// Slope returns the least-squares slope of ys against their indices.
// Used as the trend statistic of an incident series. Returns 0 for fewer
// than two points.
func Slope(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx float64
	for i := range ys {
		dx := xs[i] - mx
		sxy += dx * (ys[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0
	}
	return sxy / sxx
}

// Interval is a two-sided confidence interval.
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// BootstrapCI estimates a percentile confidence interval for the mean of
// xs by resampling with replacement. level is the coverage (e.g. 0.95);
// resamples controls the bootstrap size. The caller supplies the random
// stream so the interval is reproducible.
func BootstrapCI(xs []float64, level float64, resamples int, rng *rand.Rand) Interval {
	if len(xs) == 0 || resamples <= 0 {
		return Interval{}
	}

	means := make([]float64, resamples)
	for r := 0; r < resamples; r++ {
		sum := 0.0
		for i := 0; i < len(xs); i++ {
			sum += xs[rng.Intn(len(xs))]
		}
		means[r] = sum / float64(len(xs))
	}
	sort.Float64s(means)

	alpha := (1 - level) / 2
	lo := int(alpha * float64(resamples))
	hi := int((1 - alpha) * float64(resamples))
	if hi >= resamples {
		hi = resamples - 1
	}
	return Interval{Low: means[lo], High: means[hi]}
}
