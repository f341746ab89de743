package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Load and Save for unknown file extensions
var ErrUnsupportedFormat = errors.New("unsupported table format")

// ReadCSV reads a CSV stream whose first record is the header
func ReadCSV(r io.Reader, opts ReadOptions) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV records: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV input")
	}

	return FromRecords(records, opts)
}

// LoadCSV loads a table from a CSV file
func LoadCSV(path string, opts ReadOptions) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	t, err := ReadCSV(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	slog.Debug("loaded CSV table",
		slog.String("file", filepath.Base(path)),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Names())))

	return t, nil
}

// WriteCSV writes the table as CSV with a header row
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	for i, record := range t.Records() {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the table to a CSV file, creating parent directories
func SaveCSV(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, t); err != nil {
		return err
	}

	return file.Close()
}

// Load reads a table, choosing the format from the file extension
func Load(path, sheet string, opts ReadOptions) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path, opts)
	case ".xlsx":
		return LoadXLSX(path, sheet, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Save writes a table, choosing the format from the file extension
func Save(path, sheet string, t *Table) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return SaveCSV(path, t)
	case ".xlsx":
		return SaveXLSX(path, sheet, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
