package table

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet written when no sheet name is given
const DefaultSheet = "factors"

// ReadXLSX reads a workbook stream. An empty sheet name selects the first sheet.
func ReadXLSX(r io.Reader, sheet string, opts ReadOptions) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, sheet, opts)
}

// LoadXLSX loads a table from one sheet of an Excel workbook
func LoadXLSX(path, sheet string, opts ReadOptions) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	t, err := readSheet(f, sheet, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

func readSheet(f *excelize.File, sheet string, opts ReadOptions) (*Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	slog.Debug("read workbook sheet",
		slog.String("sheet_name", sheet),
		slog.Int("total_rows", len(rows)))

	return FromRecords(rows, opts)
}

// WriteXLSX writes the table into a single-sheet workbook.
// Numeric cells are stored as numbers, missing values as empty cells.
func WriteXLSX(w io.Writer, sheet string, t *Table) error {
	f, err := buildWorkbook(sheet, t)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the table to an Excel file, creating parent directories
func SaveXLSX(path, sheet string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := buildWorkbook(sheet, t)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func buildWorkbook(sheet string, t *Table) (*excelize.File, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(t.columns))
	for j, c := range t.columns {
		header[j] = c.Name
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		f.Close()
		return nil, err
	}

	for i := 0; i < t.rows; i++ {
		row := make([]interface{}, len(t.columns))
		for j, c := range t.columns {
			switch {
			case c.Kind == Text:
				row[j] = c.Texts[i]
			case math.IsNaN(c.Floats[i]) || math.IsInf(c.Floats[i], 0):
				row[j] = nil
			default:
				row[j] = c.Floats[i]
			}
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
