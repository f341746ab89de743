package standardize

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func singleColumn(values []float64) Frame {
	return Frame{
		Instruments: make([]string, len(values)),
		Columns:     []string{"f"},
		Values:      [][]float64{values},
	}
}

func distinctCount(values []float64) int {
	seen := make(map[float64]bool)
	for _, v := range values {
		seen[v] = true
	}
	return len(seen)
}

// Property: normalized columns keep the shape promised by each method
// for any finite cross-section.
func TestNormalizerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	values := gen.SliceOf(gen.Float64Range(-1e6, 1e6))

	properties.Property("MinMaxNorm stays within [0, 1] and hits both ends", prop.ForAll(
		func(in []float64) bool {
			if distinctCount(in) < 2 {
				return true
			}
			out, issues := MinMaxNorm(singleColumn(in))
			if len(issues) != 0 {
				return false
			}
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, v := range out.Values[0] {
				if v < 0 || v > 1 {
					return false
				}
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
			return lo == 0 && hi == 1
		},
		values,
	))

	properties.Property("ZScoreNorm output has zero mean and unit sample std", prop.ForAll(
		func(in []float64) bool {
			if distinctCount(in) < 2 {
				return true
			}
			out, _ := ZScoreNorm(singleColumn(in))
			return math.Abs(nanMean(out.Values[0])) < 1e-6 &&
				math.Abs(nanStd(out.Values[0])-1) < 1e-6
		},
		values,
	))

	properties.Property("CSRankNorm ignores strictly increasing transforms", prop.ForAll(
		func(in []float64) bool {
			doubled := make([]float64, len(in))
			for i, v := range in {
				doubled[i] = v * 2
			}
			a, _ := CSRankNorm(singleColumn(in))
			b, _ := CSRankNorm(singleColumn(doubled))
			for i := range a.Values[0] {
				x, y := a.Values[0][i], b.Values[0][i]
				if math.IsNaN(x) != math.IsNaN(y) {
					return false
				}
				if !math.IsNaN(x) && x != y {
					return false
				}
			}
			return true
		},
		values,
	))

	properties.Property("RobustZScoreNorm is finite for finite input", prop.ForAll(
		func(in []float64) bool {
			out, _ := RobustZScoreNorm(singleColumn(in))
			for _, v := range out.Values[0] {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return false
				}
			}
			return true
		},
		values,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
