package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	apperrors "factorstd/internal/errors"
	"factorstd/internal/files"
	"factorstd/internal/standardize"
	"factorstd/internal/table"
)

// identifierColumns are always read as text so numeric-looking dates and
// instrument codes round-trip unchanged
var identifierColumns = []string{standardize.DateColumn, standardize.InstrumentColumn}

// readOptions parses only the selected columns as numbers. Identifiers and
// every other column stay text so they round-trip unchanged.
func readOptions(columns standardize.ColumnSet) table.ReadOptions {
	return table.ReadOptions{
		TextColumns:    identifierColumns,
		NumericColumns: columns.Names(),
	}
}

// StandardizeService runs standardization over tables, raw records and files
type StandardizeService struct {
	workers int
	options []standardize.Option
	logger  *slog.Logger
}

// FileJob describes a file to file standardization run
type FileJob struct {
	Input   string
	Output  string
	Sheet   string
	Method  standardize.Method
	Columns standardize.ColumnSet
}

// DirJob standardizes every table in InputDir. Outputs go to OutputDir,
// or next to the inputs when it is empty, named by files.OutputName.
type DirJob struct {
	InputDir  string
	OutputDir string
	Sheet     string
	Method    standardize.Method
	Columns   standardize.ColumnSet
}

// FileResult is the outcome of one table of a DirJob
type FileResult struct {
	Input  string
	Output string
	Report *standardize.Report
	Err    error
}

// NewStandardizeService creates a new standardize service. Extra options are
// passed to every Standardizer it builds.
func NewStandardizeService(workers int, logger *slog.Logger, opts ...standardize.Option) *StandardizeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StandardizeService{
		workers: workers,
		options: opts,
		logger:  logger.With(slog.String("service", "standardize")),
	}
}

// StandardizeTable standardizes an in-memory table
func (s *StandardizeService) StandardizeTable(ctx context.Context, method standardize.Method, columns standardize.ColumnSet, t *table.Table) (*table.Table, *standardize.Report, error) {
	opts := append([]standardize.Option{
		standardize.WithWorkers(s.workers),
		standardize.WithLogger(s.logger),
	}, s.options...)

	return standardize.Standardize(ctx, t, method, columns, opts...)
}

// StandardizeRecords standardizes a header row followed by data rows
func (s *StandardizeService) StandardizeRecords(ctx context.Context, method standardize.Method, columns standardize.ColumnSet, records [][]string) (*table.Table, *standardize.Report, error) {
	t, err := table.FromRecords(records, readOptions(columns))
	if err != nil {
		return nil, nil, apperrors.NewParsingError("invalid input records", err)
	}
	return s.StandardizeTable(ctx, method, columns, t)
}

// StandardizeCSV standardizes a CSV stream with a header row
func (s *StandardizeService) StandardizeCSV(ctx context.Context, method standardize.Method, columns standardize.ColumnSet, r io.Reader) (*table.Table, *standardize.Report, error) {
	t, err := table.ReadCSV(r, readOptions(columns))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, maxErr
		}
		return nil, nil, apperrors.NewParsingError("invalid CSV input", err)
	}
	return s.StandardizeTable(ctx, method, columns, t)
}

// StandardizeFile loads job.Input, standardizes it and writes job.Output.
// Both paths pick CSV or Excel from their extension.
func (s *StandardizeService) StandardizeFile(ctx context.Context, job FileJob) (*standardize.Report, error) {
	s.logger.InfoContext(ctx, "loading factor table",
		slog.String("input", job.Input),
		slog.String("method", job.Method.String()),
		slog.Int("columns", job.Columns.Len()),
	)

	in, err := table.Load(job.Input, job.Sheet, readOptions(job.Columns))
	if err != nil {
		return nil, storageError("load", job.Input, err)
	}

	out, report, err := s.StandardizeTable(ctx, job.Method, job.Columns, in)
	if err != nil {
		return nil, err
	}

	if err := table.Save(job.Output, job.Sheet, out); err != nil {
		return nil, storageError("save", job.Output, err)
	}

	s.logger.InfoContext(ctx, "standardized table written",
		slog.String("output", job.Output),
		slog.Int("rows", report.Rows),
		slog.Int("partitions", report.Partitions),
		slog.Int("degenerate_columns", len(report.Degenerate)),
	)

	return report, nil
}

// storageError classifies file errors
func storageError(op, path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return apperrors.NewNotFoundError(path).WithContext("operation", op)
	case errors.Is(err, table.ErrUnsupportedFormat):
		return apperrors.NewValidationError(fmt.Sprintf("cannot %s %s", op, path), err)
	default:
		return apperrors.NewStorageError(fmt.Sprintf("failed to %s %s", op, path), err).
			WithContext("path", path)
	}
}

// StandardizeDir runs StandardizeFile for each table in job.InputDir.
// A failing table does not stop the batch; the joined failures are returned
// alongside every result.
func (s *StandardizeService) StandardizeDir(ctx context.Context, job DirJob) ([]FileResult, error) {
	tables, err := files.NewDiscovery("").FindTables(job.InputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(job.InputDir)
		}
		return nil, apperrors.NewStorageError("failed to list input tables", err)
	}
	if len(tables) == 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("no CSV or Excel tables in %s", job.InputDir), nil)
	}

	outDir := job.OutputDir
	if outDir == "" {
		outDir = job.InputDir
	}

	results := make([]FileResult, 0, len(tables))
	var failures []error

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		result := FileResult{
			Input:  t.Path,
			Output: filepath.Join(outDir, files.OutputName(t.Name)),
		}
		result.Report, result.Err = s.StandardizeFile(ctx, FileJob{
			Input:   result.Input,
			Output:  result.Output,
			Sheet:   job.Sheet,
			Method:  job.Method,
			Columns: job.Columns,
		})
		if result.Err != nil {
			s.logger.WarnContext(ctx, "table skipped",
				slog.String("input", t.Name),
				slog.String("error", result.Err.Error()))
			failures = append(failures, fmt.Errorf("%s: %w", t.Name, result.Err))
		}
		results = append(results, result)
	}

	return results, errors.Join(failures...)
}
