package table

import (
	"fmt"
	"math"
	"strconv"
)

// Kind describes how a column's cells are stored
type Kind int

const (
	// Numeric columns hold float64 values, NaN marks a missing cell
	Numeric Kind = iota
	// Text columns hold raw strings and are never transformed
	Text
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Column is a single named column of a Table
type Column struct {
	Name   string
	Kind   Kind
	Floats []float64
	Texts  []string
}

// Len returns the number of cells in the column
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Texts)
}

// Strings returns the cells as text. Numeric cells are formatted the same
// way the writers format them.
func (c *Column) Strings() []string {
	if c.Kind == Text {
		return c.Texts
	}
	out := make([]string, len(c.Floats))
	for i, v := range c.Floats {
		out[i] = FormatFloat(v)
	}
	return out
}

func (c *Column) clone() *Column {
	dup := &Column{Name: c.Name, Kind: c.Kind}
	if c.Floats != nil {
		dup.Floats = append([]float64(nil), c.Floats...)
	}
	if c.Texts != nil {
		dup.Texts = append([]string(nil), c.Texts...)
	}
	return dup
}

// Table is an ordered, column-major collection of rows.
// Row i of the table is the i-th cell of every column.
type Table struct {
	rows    int
	columns []*Column
	index   map[string]int
}

// New creates an empty table with the given number of rows
func New(rows int) *Table {
	return &Table{
		rows:  rows,
		index: make(map[string]int),
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Names returns the column names in table order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the table has a column with the given name
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Floats returns the values of a numeric column
func (t *Table) Floats(name string) ([]float64, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	if c.Kind != Numeric {
		return nil, fmt.Errorf("column %q is %s, not numeric", name, c.Kind)
	}
	return c.Floats, nil
}

// AddFloats appends a numeric column
func (t *Table) AddFloats(name string, values []float64) error {
	return t.add(&Column{Name: name, Kind: Numeric, Floats: values})
}

// AddTexts appends a text column
func (t *Table) AddTexts(name string, values []string) error {
	return t.add(&Column{Name: name, Kind: Text, Texts: values})
}

func (t *Table) add(c *Column) error {
	if c.Name == "" {
		return fmt.Errorf("column name must not be empty")
	}
	if t.Has(c.Name) {
		return fmt.Errorf("duplicate column %q", c.Name)
	}
	if c.Len() != t.rows {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.rows)
	}
	t.index[c.Name] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

// SetFloats replaces the values of a column, turning it numeric if needed
func (t *Table) SetFloats(name string, values []float64) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	if len(values) != t.rows {
		return fmt.Errorf("column %q: got %d values for %d rows", name, len(values), t.rows)
	}
	t.columns[i] = &Column{Name: name, Kind: Numeric, Floats: values}
	return nil
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	dup := &Table{
		rows:    t.rows,
		columns: make([]*Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
	}
	for i, c := range t.columns {
		dup.columns[i] = c.clone()
		dup.index[c.Name] = i
	}
	return dup
}

// Record returns row i rendered as text, in column order
func (t *Table) Record(i int) []string {
	record := make([]string, len(t.columns))
	for j, c := range t.columns {
		if c.Kind == Numeric {
			record[j] = FormatFloat(c.Floats[i])
		} else {
			record[j] = c.Texts[i]
		}
	}
	return record
}

// FormatFloat renders a cell value with the shortest exact digits. Missing
// values become the empty string. Plain notation is used between 1e-6 and
// 1e21 so integer codes such as 20240102 keep their form.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if abs := math.Abs(v); abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
