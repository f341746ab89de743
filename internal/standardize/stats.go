package standardize

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// madScale makes the MAD a consistent estimator of the normal standard deviation
	madScale = 1.4826
	// madEpsilon keeps the robust scale away from zero on constant columns
	madEpsilon = 1e-12
)

// isMissing reports whether v is treated as a missing observation
func isMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// sanitize returns a copy of values with ±Inf replaced by NaN
func sanitize(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// observed returns the non-missing values
func observed(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !isMissing(v) {
			out = append(out, v)
		}
	}
	return out
}

// nanMin and nanMax return NaN when there is nothing to reduce
func nanMin(values []float64) float64 {
	obs := observed(values)
	if len(obs) == 0 {
		return math.NaN()
	}
	return floats.Min(obs)
}

func nanMax(values []float64) float64 {
	obs := observed(values)
	if len(obs) == 0 {
		return math.NaN()
	}
	return floats.Max(obs)
}

func nanMean(values []float64) float64 {
	obs := observed(values)
	if len(obs) == 0 {
		return math.NaN()
	}
	return stat.Mean(obs, nil)
}

// nanStd is the sample standard deviation (n-1 denominator).
// Fewer than two observations leave it undefined.
func nanStd(values []float64) float64 {
	obs := observed(values)
	if len(obs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(obs, nil)
}

// nanMedian averages the two middle values of an even-length sample
func nanMedian(values []float64) float64 {
	obs := observed(values)
	n := len(obs)
	if n == 0 {
		return math.NaN()
	}

	sort.Float64s(obs)
	if n%2 == 0 {
		return (obs[n/2-1] + obs[n/2]) / 2
	}
	return obs[n/2]
}

// nanMAD is the median absolute deviation around median
func nanMAD(values []float64, median float64) float64 {
	deviations := make([]float64, 0, len(values))
	for _, v := range values {
		if !isMissing(v) {
			deviations = append(deviations, math.Abs(v-median))
		}
	}
	return nanMedian(deviations)
}

// averageRanks assigns 1-based ranks to the non-missing values; tied values
// share the mean of the ranks they span. Missing values keep NaN.
func averageRanks(values []float64) []float64 {
	type indexValue struct {
		index int
		value float64
	}

	valid := make([]indexValue, 0, len(values))
	for i, v := range values {
		if !isMissing(v) {
			valid = append(valid, indexValue{index: i, value: v})
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].value < valid[j].value
	})

	ranks := make([]float64, len(values))
	for i := range ranks {
		ranks[i] = math.NaN()
	}

	for i := 0; i < len(valid); {
		tieStart := i
		for i < len(valid) && valid[i].value == valid[tieStart].value {
			i++
		}
		// Positions tieStart..i-1 hold ranks tieStart+1..i
		avgRank := float64(tieStart+1+i) / 2
		for j := tieStart; j < i; j++ {
			ranks[valid[j].index] = avgRank
		}
	}

	return ranks
}
