package standardize

import (
	"math"
)

// Frame is the slice of a table handed to a normalizer: the feature columns of
// one partition plus the identifiers needed to reattach them.
type Frame struct {
	// Dates may be nil when the frame is not keyed by date
	Dates       []string
	Instruments []string
	Columns     []string
	// Values[c] holds column Columns[c], one entry per row
	Values [][]float64
}

// Len returns the number of rows in the frame
func (f Frame) Len() int {
	return len(f.Instruments)
}

// Reason explains why a column could not be normalized cleanly
type Reason string

const (
	// ReasonNoObservations means every value in the column was missing
	ReasonNoObservations Reason = "no observations"
	// ReasonTooFewObservations means the sample standard deviation is undefined
	ReasonTooFewObservations Reason = "fewer than 2 observations"
	// ReasonZeroRange means the column was constant so the denominator is zero
	ReasonZeroRange Reason = "zero range"
)

// Issue records a degenerate column inside one frame
type Issue struct {
	Column string
	Reason Reason
}

// columnFunc normalizes one column. Inputs never contain ±Inf.
type columnFunc func(values []float64) ([]float64, Reason)

// MinMaxNorm rescales every column to [0, 1]. Constant or empty columns
// become NaN.
func MinMaxNorm(f Frame) (Frame, []Issue) {
	return applyColumns(f, minMaxColumn)
}

// ZScoreNorm subtracts the mean and divides by the sample standard deviation
func ZScoreNorm(f Frame) (Frame, []Issue) {
	return applyColumns(f, zScoreColumn)
}

// RobustZScoreNorm subtracts the median and divides by 1.4826 times the
// median absolute deviation. The scale is padded so constant columns stay finite.
func RobustZScoreNorm(f Frame) (Frame, []Issue) {
	return applyColumns(f, robustZScoreColumn)
}

// CSZScoreNorm is the cross-sectional z-score. It applies exactly the
// ZScoreNorm computation; the partitioning makes it cross-sectional.
func CSZScoreNorm(f Frame) (Frame, []Issue) {
	return applyColumns(f, zScoreColumn)
}

// CSRankNorm replaces each column with its zero-based average ranks and then
// z-scores the ranks
func CSRankNorm(f Frame) (Frame, []Issue) {
	ranked := Frame{
		Dates:       f.Dates,
		Instruments: f.Instruments,
		Columns:     f.Columns,
		Values:      make([][]float64, len(f.Values)),
	}
	for c, values := range f.Values {
		ranked.Values[c] = zeroBasedRanks(sanitize(values))
	}
	return ZScoreNorm(ranked)
}

// Apply runs the normalizer selected by m
func Apply(m Method, f Frame) (Frame, []Issue) {
	switch m {
	case MethodZScore:
		return ZScoreNorm(f)
	case MethodMinMax:
		return MinMaxNorm(f)
	case MethodRobustZScore:
		return RobustZScoreNorm(f)
	case MethodCSZScore:
		return CSZScoreNorm(f)
	case MethodCSRank:
		return CSRankNorm(f)
	default:
		panic("standardize: apply called with invalid method " + m.String())
	}
}

// applyColumns maps fn over every column. The identifiers are carried over
// unchanged; the input frame is not modified.
func applyColumns(f Frame, fn columnFunc) (Frame, []Issue) {
	out := Frame{
		Dates:       f.Dates,
		Instruments: f.Instruments,
		Columns:     f.Columns,
		Values:      make([][]float64, len(f.Values)),
	}

	var issues []Issue
	for c, values := range f.Values {
		normalized, reason := fn(sanitize(values))
		if reason != "" {
			issues = append(issues, Issue{Column: f.Columns[c], Reason: reason})
		}
		out.Values[c] = normalized
	}

	return out, issues
}

func minMaxColumn(values []float64) ([]float64, Reason) {
	lo, hi := nanMin(values), nanMax(values)

	if math.IsNaN(lo) {
		return filled(len(values), math.NaN()), ReasonNoObservations
	}
	if hi == lo {
		return filled(len(values), math.NaN()), ReasonZeroRange
	}

	span := hi - lo
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out, ""
}

func zScoreColumn(values []float64) ([]float64, Reason) {
	mean := nanMean(values)
	std := nanStd(values)

	var reason Reason
	switch n := len(observed(values)); {
	case n == 0:
		reason = ReasonNoObservations
	case n < 2:
		reason = ReasonTooFewObservations
	case std == 0:
		reason = ReasonZeroRange
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out, reason
}

func robustZScoreColumn(values []float64) ([]float64, Reason) {
	median := nanMedian(values)
	if math.IsNaN(median) {
		return filled(len(values), math.NaN()), ReasonNoObservations
	}

	scale := (nanMAD(values, median) + madEpsilon) * madScale

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - median) / scale
	}
	return out, ""
}

// zeroBasedRanks shifts the average ranks so the smallest value ranks 0
func zeroBasedRanks(values []float64) []float64 {
	ranks := averageRanks(values)
	for i := range ranks {
		ranks[i]--
	}
	return ranks
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
