package standardize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameOf(columns map[string][]float64, order ...string) Frame {
	f := Frame{Columns: order}
	for _, name := range order {
		f.Values = append(f.Values, columns[name])
	}
	if len(f.Values) > 0 {
		f.Instruments = make([]string, len(f.Values[0]))
		for i := range f.Instruments {
			f.Instruments[i] = string(rune('A' + i))
		}
	}
	return f
}

func assertColumn(t *testing.T, expected, actual []float64) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		if math.IsNaN(expected[i]) {
			assert.True(t, math.IsNaN(actual[i]), "index %d: expected NaN, got %v", i, actual[i])
			continue
		}
		assert.InDelta(t, expected[i], actual[i], 1e-4, "index %d", i)
	}
}

func TestZScoreNorm(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name     string
		values   []float64
		expected []float64
		reason   Reason
	}{
		{"two observations and a gap", []float64{1, 2, nan}, []float64{-0.7071, 0.7071, nan}, ""},
		{"symmetric", []float64{1, 2, 3}, []float64{-1, 0, 1}, ""},
		{"infinity treated as missing", []float64{1, math.Inf(1), 3}, []float64{-0.7071, nan, 0.7071}, ""},
		{"single observation", []float64{4, nan}, []float64{nan, nan}, ReasonTooFewObservations},
		{"all missing", []float64{nan, nan}, []float64{nan, nan}, ReasonNoObservations},
		{"constant", []float64{5, 5, 5}, []float64{nan, nan, nan}, ReasonZeroRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, issues := ZScoreNorm(frameOf(map[string][]float64{"f": tt.values}, "f"))
			assertColumn(t, tt.expected, out.Values[0])

			if tt.reason == "" {
				assert.Empty(t, issues)
				return
			}
			require.Len(t, issues, 1)
			assert.Equal(t, Issue{Column: "f", Reason: tt.reason}, issues[0])
		})
	}
}

func TestCSZScoreMatchesZScore(t *testing.T) {
	f := frameOf(map[string][]float64{
		"a": {3.2, -1.1, 0.4, math.NaN(), 7.9},
		"b": {1, 1, 2, 3, 5},
	}, "a", "b")

	z, zIssues := ZScoreNorm(f)
	cs, csIssues := CSZScoreNorm(f)

	assert.Equal(t, zIssues, csIssues)
	for c := range z.Values {
		assertColumn(t, z.Values[c], cs.Values[c])
	}
}

func TestMinMaxNorm(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name     string
		values   []float64
		expected []float64
		reason   Reason
	}{
		{"ascending", []float64{1, 2, 3}, []float64{0, 0.5, 1}, ""},
		{"with gap", []float64{10, nan, 20, 15}, []float64{0, nan, 1, 0.5}, ""},
		{"negative inf dropped", []float64{math.Inf(-1), 2, 4}, []float64{nan, 0, 1}, ""},
		{"constant", []float64{2, 2, nan}, []float64{nan, nan, nan}, ReasonZeroRange},
		{"all missing", []float64{nan}, []float64{nan}, ReasonNoObservations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, issues := MinMaxNorm(frameOf(map[string][]float64{"f": tt.values}, "f"))
			assertColumn(t, tt.expected, out.Values[0])
			if tt.reason == "" {
				assert.Empty(t, issues)
			} else {
				require.Len(t, issues, 1)
				assert.Equal(t, tt.reason, issues[0].Reason)
			}
		})
	}
}

func TestRobustZScoreNorm(t *testing.T) {
	t.Run("constant column stays finite", func(t *testing.T) {
		out, issues := RobustZScoreNorm(frameOf(map[string][]float64{"f": {5, 5, 5}}, "f"))
		assert.Empty(t, issues)
		for _, v := range out.Values[0] {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			assert.Equal(t, 0.0, v)
		}
	})

	t.Run("median and MAD", func(t *testing.T) {
		// median 3, absolute deviations {2,1,0,1,7} so MAD 1
		out, _ := RobustZScoreNorm(frameOf(map[string][]float64{"f": {1, 2, 3, 4, 10}}, "f"))
		scale := (1 + madEpsilon) * madScale
		assertColumn(t, []float64{-2 / scale, -1 / scale, 0, 1 / scale, 7 / scale}, out.Values[0])
	})

	t.Run("all missing", func(t *testing.T) {
		out, issues := RobustZScoreNorm(frameOf(map[string][]float64{"f": {math.NaN(), math.Inf(1)}}, "f"))
		assertColumn(t, []float64{math.NaN(), math.NaN()}, out.Values[0])
		require.Len(t, issues, 1)
		assert.Equal(t, ReasonNoObservations, issues[0].Reason)
	})
}

func TestCSRankNorm(t *testing.T) {
	t.Run("ties share the average rank", func(t *testing.T) {
		// ranks 0.5, 0.5, 2 -> mean 1, std sqrt(0.75)
		out, issues := CSRankNorm(frameOf(map[string][]float64{"f": {1, 1, 2}}, "f"))
		assert.Empty(t, issues)
		std := math.Sqrt(0.75)
		assertColumn(t, []float64{-0.5 / std, -0.5 / std, 1 / std}, out.Values[0])
	})

	t.Run("order is preserved and scale is ignored", func(t *testing.T) {
		a, _ := CSRankNorm(frameOf(map[string][]float64{"f": {100, -3, 7, math.NaN()}}, "f"))
		b, _ := CSRankNorm(frameOf(map[string][]float64{"f": {1e9, -1e9, 0, math.NaN()}}, "f"))
		assertColumn(t, a.Values[0], b.Values[0])
		assert.True(t, math.IsNaN(a.Values[0][3]))
	})

	t.Run("single instrument is degenerate", func(t *testing.T) {
		out, issues := CSRankNorm(frameOf(map[string][]float64{"f": {42}}, "f"))
		assert.True(t, math.IsNaN(out.Values[0][0]))
		require.Len(t, issues, 1)
		assert.Equal(t, ReasonTooFewObservations, issues[0].Reason)
	})
}

func TestNormalizersLeaveInputUntouched(t *testing.T) {
	values := []float64{3, math.Inf(1), 1, 2}
	f := frameOf(map[string][]float64{"f": values}, "f")

	for _, m := range Methods() {
		t.Run(m.String(), func(t *testing.T) {
			out, _ := Apply(m, f)
			assert.Equal(t, f.Instruments, out.Instruments)
			assert.Equal(t, f.Columns, out.Columns)
			assert.True(t, math.IsInf(values[1], 1))
			assert.Equal(t, []float64{3, 1, 2}, []float64{values[0], values[2], values[3]})
		})
	}
}

func TestApplyPanicsOnInvalidMethod(t *testing.T) {
	assert.Panics(t, func() {
		Apply(Method(0), Frame{})
	})
}
