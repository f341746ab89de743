package standardize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "factorstd/internal/errors"
	"factorstd/internal/table"
)

var (
	// ErrMissingIdentifier is wrapped when date or instrument is absent
	ErrMissingIdentifier = errors.New("required identifier column missing")
	// ErrUnknownColumn is wrapped when a selected column is not in the table
	ErrUnknownColumn = errors.New("selected column not found")
	// ErrNotNumeric is wrapped when a selected column holds text
	ErrNotNumeric = errors.New("selected column is not numeric")
)

// DegenerateColumn is a partition column whose statistics were undefined.
// Its values in that partition are NaN or non-finite.
type DegenerateColumn struct {
	Date   string `json:"date"`
	Column string `json:"column"`
	Reason Reason `json:"reason"`
}

// Report summarises one run
type Report struct {
	Method     Method             `json:"method"`
	Columns    []string           `json:"columns"`
	Rows       int                `json:"rows"`
	Partitions int                `json:"partitions"`
	Degenerate []DegenerateColumn `json:"degenerate,omitempty"`
	Duration   time.Duration      `json:"duration_ns"`
}

// Standardizer applies one method to a fixed column selection, partition by
// partition. It is safe for concurrent use.
type Standardizer struct {
	method  Method
	columns ColumnSet
	workers int
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *runMetrics
}

type options struct {
	workers        int
	logger         *slog.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

// Option configures a Standardizer
type Option func(*options)

// WithWorkers bounds the number of partitions processed concurrently.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger used for progress and degenerate column warnings
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMeterProvider overrides the global OpenTelemetry meter provider
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// New creates a Standardizer. Configuration problems are reported here,
// before any data is touched.
func New(method Method, columns ColumnSet, opts ...Option) (*Standardizer, error) {
	if !method.Valid() {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("invalid method %s", method), ErrUnknownMethod)
	}
	if columns.Empty() {
		return nil, apperrors.NewConfigError(
			"enter the columns to standardize or connect a factor list", ErrNoColumns)
	}

	o := options{
		logger:         slog.Default(),
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	metrics, err := newRunMetrics(o.meterProvider)
	if err != nil {
		o.logger.Warn("failed to create standardize metrics, recording disabled", "error", err)
		metrics = noopRunMetrics()
	}

	return &Standardizer{
		method:  method,
		columns: columns,
		workers: o.workers,
		logger:  o.logger.With(slog.String("component", "standardizer")),
		tracer:  o.tracerProvider.Tracer(instrumentationName),
		metrics: metrics,
	}, nil
}

// Method returns the configured method
func (s *Standardizer) Method() Method {
	return s.method
}

// Columns returns the configured column selection
func (s *Standardizer) Columns() ColumnSet {
	return s.columns
}

// Run standardizes the selected columns of t within each date partition and
// returns a new table. t is not modified. Rows keep their original positions;
// identifiers and unselected columns are copied unchanged.
func (s *Standardizer) Run(ctx context.Context, t *table.Table) (*table.Table, *Report, error) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "standardize.Run", trace.WithAttributes(
		attribute.String("method", s.method.String()),
		attribute.Int("columns", s.columns.Len()),
	))
	defer span.End()

	report := &Report{
		Method:  s.method,
		Columns: s.columns.Names(),
	}

	out, err := s.run(ctx, t, report)
	elapsed := time.Since(start)
	report.Duration = elapsed

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.record(ctx, report, elapsed, "error")
		s.logger.ErrorContext(ctx, "standardization failed",
			"method", s.method.String(),
			"error", err,
		)
		return nil, nil, err
	}

	span.SetAttributes(
		attribute.Int("rows", report.Rows),
		attribute.Int("partitions", report.Partitions),
		attribute.Int("degenerate_columns", len(report.Degenerate)),
	)
	s.metrics.record(ctx, report, elapsed, "success")

	s.logger.InfoContext(ctx, "standardization completed",
		"method", s.method.String(),
		"rows", report.Rows,
		"partitions", report.Partitions,
		"columns", s.columns.Len(),
		"degenerate_columns", len(report.Degenerate),
		"duration", elapsed,
	)

	return out, report, nil
}

func (s *Standardizer) run(ctx context.Context, t *table.Table, report *Report) (*table.Table, error) {
	input, err := s.resolve(t)
	if err != nil {
		return nil, err
	}

	names := s.columns.Names()
	idx := BuildPartitionIndex(input.dates)
	report.Rows = t.Len()
	report.Partitions = idx.Len()

	s.logger.DebugContext(ctx, "partitioned table by date",
		"rows", t.Len(),
		"partitions", idx.Len(),
		"workers", s.workers,
	)

	// Every row belongs to exactly one partition, so each output cell is
	// written once and partitions never share an element.
	outputs := make([][]float64, len(names))
	for c := range outputs {
		outputs[c] = make([]float64, t.Len())
	}

	keys := idx.Keys()
	issues := make([][]Issue, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for p, key := range keys {
		p, key := p, key
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rows := idx.Rows(key)
			frame := gather(rows, input.dates, input.instruments, names, input.features)
			result, partIssues := Apply(s.method, frame)
			scatter(rows, result, outputs)
			issues[p] = partIssues
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("standardize partitions: %w", err)
	}

	for p, partIssues := range issues {
		for _, issue := range partIssues {
			s.logger.WarnContext(ctx, "degenerate column, values set to missing",
				"date", keys[p],
				"column", issue.Column,
				"method", s.method.String(),
				"reason", string(issue.Reason),
			)
			report.Degenerate = append(report.Degenerate, DegenerateColumn{
				Date:   keys[p],
				Column: issue.Column,
				Reason: issue.Reason,
			})
		}
	}

	out := t.Clone()
	for c, name := range names {
		if err := out.SetFloats(name, outputs[c]); err != nil {
			return nil, fmt.Errorf("write column %q: %w", name, err)
		}
	}

	return out, nil
}

// resolvedInput holds the columns a run reads
type resolvedInput struct {
	dates       []string
	instruments []string
	features    [][]float64
}

// resolve checks the table preconditions and returns the columns to read
func (s *Standardizer) resolve(t *table.Table) (*resolvedInput, error) {
	if t == nil {
		return nil, apperrors.NewValidationError("no input table", nil)
	}

	input := &resolvedInput{}

	for _, id := range []string{DateColumn, InstrumentColumn} {
		c, ok := t.Column(id)
		if !ok {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("input data has no %q column", id), ErrMissingIdentifier,
			).WithContext("column", id)
		}
		if id == DateColumn {
			input.dates = c.Strings()
		} else {
			input.instruments = c.Strings()
		}
	}

	for _, name := range s.columns.Names() {
		c, ok := t.Column(name)
		if !ok {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("column %q is not in the input data", name), ErrUnknownColumn,
			).WithContext("column", name)
		}
		if c.Kind != table.Numeric {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("column %q is %s, not numeric", name, c.Kind), ErrNotNumeric,
			).WithContext("column", name)
		}
		input.features = append(input.features, c.Floats)
	}

	return input, nil
}

// Standardize is a one-shot helper around New and Run
func Standardize(ctx context.Context, t *table.Table, method Method, columns ColumnSet, opts ...Option) (*table.Table, *Report, error) {
	s, err := New(method, columns, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s.Run(ctx, t)
}
