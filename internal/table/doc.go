// Package table provides the in-memory factor table used by the standardizer
// and its CSV and Excel persistence.
//
// A Table is column-major: every column holds one cell per row and row i is
// the i-th cell of each column. Columns are either numeric (float64, NaN marks
// a missing cell) or text. Text columns, including the date and instrument
// identifiers, are kept exactly as read so they round-trip unchanged.
//
// Readers infer the column kind: a column is numeric when every cell is a
// number or a missing token ("", NA, NaN, null, none). Writers render missing
// numeric cells as empty cells.
package table
