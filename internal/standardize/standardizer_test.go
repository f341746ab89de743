package standardize

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "factorstd/internal/errors"
	"factorstd/internal/table"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// sampleFactors has two dates interleaved so partition rows are not contiguous
func sampleFactors(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New(6)
	require.NoError(t, tbl.AddTexts("date", []string{"2024-01-02", "2024-01-03", "2024-01-02", "2024-01-03", "2024-01-02", "2024-01-03"}))
	require.NoError(t, tbl.AddTexts("instrument", []string{"BBOB", "BBOB", "TASC", "TASC", "IMAP", "IMAP"}))
	require.NoError(t, tbl.AddFloats("momentum", []float64{1, 100, 2, 200, 3, 300}))
	require.NoError(t, tbl.AddFloats("value", []float64{5, 1, 5, math.NaN(), 5, 3}))
	require.NoError(t, tbl.AddTexts("sector", []string{"bank", "bank", "telecom", "telecom", "bank", "bank"}))
	require.NoError(t, tbl.AddFloats("volume", []float64{10, 20, 30, 40, 50, 60}))
	return tbl
}

func mustColumns(t *testing.T, names ...string) ColumnSet {
	t.Helper()
	cs, err := NewColumnSet(names)
	require.NoError(t, err)
	return cs
}

func TestNew(t *testing.T) {
	cs := mustColumns(t, "momentum")

	t.Run("invalid method", func(t *testing.T) {
		_, err := New(Method(0), cs)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
		assert.True(t, errors.Is(err, ErrUnknownMethod))
	})

	t.Run("empty columns", func(t *testing.T) {
		_, err := New(MethodZScore, ColumnSet{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoColumns))
	})

	t.Run("defaults", func(t *testing.T) {
		s, err := New(MethodCSRank, cs, WithWorkers(0), WithLogger(nil))
		require.NoError(t, err)
		assert.Equal(t, MethodCSRank, s.Method())
		assert.Equal(t, []string{"momentum"}, s.Columns().Names())
		assert.GreaterOrEqual(t, s.workers, 1)
	})
}

func TestRunPartitionsByDate(t *testing.T) {
	in := sampleFactors(t)
	s, err := New(MethodMinMax, mustColumns(t, "momentum"), WithWorkers(2), WithLogger(quietLogger()))
	require.NoError(t, err)

	out, report, err := s.Run(context.Background(), in)
	require.NoError(t, err)

	// each date is scaled on its own, so both dates map to 0, 0.5, 1
	momentum, err := out.Floats("momentum")
	require.NoError(t, err)
	assertColumn(t, []float64{0, 0, 0.5, 0.5, 1, 1}, momentum)

	assert.Equal(t, 6, report.Rows)
	assert.Equal(t, 2, report.Partitions)
	assert.Equal(t, MethodMinMax, report.Method)
	assert.Empty(t, report.Degenerate)
}

func TestRunPreservesEverythingElse(t *testing.T) {
	in := sampleFactors(t)
	before := in.Records()

	out, _, err := Standardize(context.Background(), in, MethodZScore, mustColumns(t, "momentum", "value"),
		WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, before, in.Records(), "input table must not be modified")
	assert.Equal(t, in.Names(), out.Names())
	assert.Equal(t, in.Len(), out.Len())

	for _, name := range []string{"date", "instrument", "sector", "volume"} {
		inCol, _ := in.Column(name)
		outCol, _ := out.Column(name)
		assert.Equal(t, inCol.Strings(), outCol.Strings(), name)
	}
}

func TestRunDegenerateColumns(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	s, err := New(MethodZScore, mustColumns(t, "value"), WithLogger(logger))
	require.NoError(t, err)

	out, report, err := s.Run(context.Background(), sampleFactors(t))
	require.NoError(t, err)

	value, err := out.Floats("value")
	require.NoError(t, err)

	// 2024-01-02 is constant (5, 5, 5): undefined everywhere
	for _, r := range []int{0, 2, 4} {
		assert.True(t, math.IsNaN(value[r]), "row %d", r)
	}
	// 2024-01-03 has 1, NaN, 3
	assertColumn(t, []float64{-0.7071, math.NaN(), 0.7071}, []float64{value[1], value[3], value[5]})

	require.Len(t, report.Degenerate, 1)
	assert.Equal(t, DegenerateColumn{Date: "2024-01-02", Column: "value", Reason: ReasonZeroRange}, report.Degenerate[0])
	assert.Contains(t, logs.String(), "degenerate column")
	assert.Contains(t, logs.String(), `"date":"2024-01-02"`)
}

func TestRunRobustConstantColumn(t *testing.T) {
	out, report, err := Standardize(context.Background(), sampleFactors(t), MethodRobustZScore,
		mustColumns(t, "value"), WithLogger(quietLogger()))
	require.NoError(t, err)

	value, err := out.Floats("value")
	require.NoError(t, err)
	for _, r := range []int{0, 2, 4} {
		assert.Equal(t, 0.0, value[r])
	}
	assert.True(t, math.IsNaN(value[3]))
	assert.Empty(t, report.Degenerate)
}

func TestRunPartitionIndependence(t *testing.T) {
	base := sampleFactors(t)
	cs := mustColumns(t, "momentum", "value")

	baseOut, _, err := Standardize(context.Background(), base, MethodCSRank, cs, WithLogger(quietLogger()))
	require.NoError(t, err)

	// changing the other date must not move the 2024-01-02 results
	changed := base.Clone()
	momentum, _ := changed.Floats("momentum")
	momentum[1], momentum[3], momentum[5] = -5, 1e6, 0
	require.NoError(t, changed.SetFloats("momentum", momentum))

	changedOut, _, err := Standardize(context.Background(), changed, MethodCSRank, cs, WithLogger(quietLogger()))
	require.NoError(t, err)

	a, _ := baseOut.Floats("momentum")
	b, _ := changedOut.Floats("momentum")
	for _, r := range []int{0, 2, 4} {
		assert.Equal(t, a[r], b[r], "row %d", r)
	}
}

func TestRunWorkerCountDoesNotChangeResult(t *testing.T) {
	in := sampleFactors(t)
	cs := mustColumns(t, "momentum", "value")

	serial, _, err := Standardize(context.Background(), in, MethodCSZScore, cs, WithWorkers(1), WithLogger(quietLogger()))
	require.NoError(t, err)
	parallel, _, err := Standardize(context.Background(), in, MethodCSZScore, cs, WithWorkers(8), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, serial.Records(), parallel.Records())
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name     string
		build    func(t *testing.T) *table.Table
		columns  []string
		sentinel error
	}{
		{
			name: "missing date",
			build: func(t *testing.T) *table.Table {
				tbl := table.New(1)
				require.NoError(t, tbl.AddTexts("instrument", []string{"A"}))
				require.NoError(t, tbl.AddFloats("x", []float64{1}))
				return tbl
			},
			columns:  []string{"x"},
			sentinel: ErrMissingIdentifier,
		},
		{
			name: "missing instrument",
			build: func(t *testing.T) *table.Table {
				tbl := table.New(1)
				require.NoError(t, tbl.AddTexts("date", []string{"2024-01-02"}))
				require.NoError(t, tbl.AddFloats("x", []float64{1}))
				return tbl
			},
			columns:  []string{"x"},
			sentinel: ErrMissingIdentifier,
		},
		{
			name:     "unknown column",
			build:    sampleFactors,
			columns:  []string{"momentum", "carry"},
			sentinel: ErrUnknownColumn,
		},
		{
			name:     "text column",
			build:    sampleFactors,
			columns:  []string{"sector"},
			sentinel: ErrNotNumeric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, report, err := Standardize(context.Background(), tt.build(t), MethodZScore,
				mustColumns(t, tt.columns...), WithLogger(quietLogger()))
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		})
	}

	t.Run("nil table", func(t *testing.T) {
		_, _, err := Standardize(context.Background(), nil, MethodZScore, mustColumns(t, "x"), WithLogger(quietLogger()))
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Standardize(ctx, sampleFactors(t), MethodZScore, mustColumns(t, "momentum"), WithLogger(quietLogger()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunEmptyTable(t *testing.T) {
	tbl := table.New(0)
	require.NoError(t, tbl.AddTexts("date", nil))
	require.NoError(t, tbl.AddTexts("instrument", nil))
	require.NoError(t, tbl.AddFloats("x", nil))

	out, report, err := Standardize(context.Background(), tbl, MethodZScore, mustColumns(t, "x"), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, 0, report.Partitions)
}

func TestRunTelemetry(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	s, err := New(MethodZScore, mustColumns(t, "value"),
		WithLogger(quietLogger()), WithMeterProvider(mp), WithTracerProvider(tp))
	require.NoError(t, err)

	_, _, err = s.Run(context.Background(), sampleFactors(t))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), sums["standardize_runs_total"])
	assert.Equal(t, int64(6), sums["standardize_rows_total"])
	assert.Equal(t, int64(2), sums["standardize_partitions_total"])
	assert.Equal(t, int64(1), sums["standardize_degenerate_columns_total"])

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "standardize.Run", spans[0].Name())
}
