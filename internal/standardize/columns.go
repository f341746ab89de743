package standardize

import (
	"bufio"
	"errors"
	"strings"

	apperrors "factorstd/internal/errors"
)

const (
	// DateColumn is the grouping key. It is never normalized.
	DateColumn = "date"
	// InstrumentColumn identifies a row within a date. It is never normalized.
	InstrumentColumn = "instrument"
)

// ErrNoColumns is wrapped when a column selection ends up empty
var ErrNoColumns = errors.New("no columns selected for standardization")

// ColumnSet is an ordered, de-duplicated selection of feature columns.
// It never contains the identifier columns.
type ColumnSet struct {
	names []string
}

// NewColumnSet builds a selection from an explicit list of names.
// Names are trimmed, duplicates and identifier columns are dropped.
func NewColumnSet(names []string) (ColumnSet, error) {
	seen := make(map[string]bool, len(names))
	selected := make([]string, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || isIdentifier(name) || seen[name] {
			continue
		}
		seen[name] = true
		selected = append(selected, name)
	}

	if len(selected) == 0 {
		return ColumnSet{}, apperrors.NewConfigError(
			"enter the columns to standardize or connect a factor list",
			ErrNoColumns,
		)
	}

	return ColumnSet{names: selected}, nil
}

// ParseColumnSet builds a selection from a text blob with one column per line.
// Blank lines and lines starting with '#' are ignored.
func ParseColumnSet(text string) (ColumnSet, error) {
	var names []string

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return ColumnSet{}, apperrors.NewParsingError("read column list", err)
	}

	return NewColumnSet(names)
}

// Names returns the selected feature columns in selection order
func (cs ColumnSet) Names() []string {
	return append([]string(nil), cs.names...)
}

// Len returns the number of selected feature columns
func (cs ColumnSet) Len() int {
	return len(cs.names)
}

// Empty reports whether the set is the zero value
func (cs ColumnSet) Empty() bool {
	return len(cs.names) == 0
}

// WithIdentifiers returns the feature columns followed by date and instrument
func (cs ColumnSet) WithIdentifiers() []string {
	out := make([]string, 0, len(cs.names)+2)
	out = append(out, cs.names...)
	return append(out, DateColumn, InstrumentColumn)
}

func isIdentifier(name string) bool {
	return name == DateColumn || name == InstrumentColumn
}
