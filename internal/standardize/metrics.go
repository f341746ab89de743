package standardize

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "factorstd/standardize"

// runMetrics holds the instruments recorded for every run
type runMetrics struct {
	runs       metric.Int64Counter
	rows       metric.Int64Counter
	partitions metric.Int64Counter
	degenerate metric.Int64Counter
	duration   metric.Float64Histogram
}

func newRunMetrics(provider metric.MeterProvider) (*runMetrics, error) {
	meter := provider.Meter(instrumentationName)

	runs, err := meter.Int64Counter(
		"standardize_runs_total",
		metric.WithDescription("Total number of standardization runs"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Counter(
		"standardize_rows_total",
		metric.WithDescription("Total number of rows standardized"),
	)
	if err != nil {
		return nil, err
	}

	partitions, err := meter.Int64Counter(
		"standardize_partitions_total",
		metric.WithDescription("Total number of date partitions standardized"),
	)
	if err != nil {
		return nil, err
	}

	degenerate, err := meter.Int64Counter(
		"standardize_degenerate_columns_total",
		metric.WithDescription("Total number of partition columns with an undefined or zero denominator"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"standardize_run_duration_seconds",
		metric.WithDescription("Standardization run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &runMetrics{
		runs:       runs,
		rows:       rows,
		partitions: partitions,
		degenerate: degenerate,
		duration:   duration,
	}, nil
}

// noopRunMetrics is used when instrument creation fails
func noopRunMetrics() *runMetrics {
	m, _ := newRunMetrics(noop.NewMeterProvider())
	return m
}

func (m *runMetrics) record(ctx context.Context, report *Report, elapsed time.Duration, outcome string) {
	attrs := metric.WithAttributes(
		attribute.String("method", report.Method.String()),
		attribute.String("outcome", outcome),
	)

	m.runs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)

	if outcome != "success" {
		return
	}

	methodAttr := metric.WithAttributes(attribute.String("method", report.Method.String()))
	m.rows.Add(ctx, int64(report.Rows), methodAttr)
	m.partitions.Add(ctx, int64(report.Partitions), methodAttr)
	m.degenerate.Add(ctx, int64(len(report.Degenerate)), methodAttr)
}
