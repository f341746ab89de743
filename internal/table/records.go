package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReadOptions configures how raw records become a Table
type ReadOptions struct {
	// TextColumns are always kept as text, even when every cell parses as a number
	TextColumns []string
	// NumericColumns, when non-nil, limits number parsing to these columns.
	// Every other column is kept as text so it is written back verbatim.
	NumericColumns []string
}

// missingTokens are cell values read as a missing numeric value
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// FromRecords builds a table from a header row followed by data rows.
// A column becomes numeric when every non-missing cell parses as a float,
// unless opts keeps it as text.
func FromRecords(records [][]string, opts ReadOptions) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))
	}

	forceText := make(map[string]bool, len(opts.TextColumns))
	for _, name := range opts.TextColumns {
		forceText[name] = true
	}

	var numeric map[string]bool
	if opts.NumericColumns != nil {
		numeric = make(map[string]bool, len(opts.NumericColumns))
		for _, name := range opts.NumericColumns {
			numeric[name] = true
		}
	}

	data := records[1:]
	t := New(len(data))

	for j, name := range header {
		cells := make([]string, len(data))
		for i, record := range data {
			// Spreadsheet readers drop trailing empty cells
			if j < len(record) {
				cells[i] = record[j]
			}
		}

		if !forceText[name] && (numeric == nil || numeric[name]) {
			if values, ok := parseNumeric(cells); ok {
				if err := t.AddFloats(name, values); err != nil {
					return nil, err
				}
				continue
			}
		}

		if err := t.AddTexts(name, cells); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// parseNumeric parses every cell as a float, reporting false on the first
// cell that is neither missing nor a number
func parseNumeric(cells []string) ([]float64, bool) {
	values := make([]float64, len(cells))
	for i, cell := range cells {
		v, ok := ParseCell(cell)
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// ParseCell parses a single numeric cell. Missing tokens yield NaN.
func ParseCell(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if missingTokens[strings.ToLower(s)] {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Records renders the table as a header row followed by data rows
func (t *Table) Records() [][]string {
	records := make([][]string, 0, t.rows+1)
	records = append(records, t.Names())
	for i := 0; i < t.rows; i++ {
		records = append(records, t.Record(i))
	}
	return records
}
