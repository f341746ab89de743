package standardize

// PartitionIndex maps each date to the positions of its rows.
// Keys are kept in order of first appearance and every row list is ascending,
// so iterating the index visits rows in a deterministic order.
type PartitionIndex struct {
	keys []string
	rows map[string][]int
}

// BuildPartitionIndex groups row positions by their key
func BuildPartitionIndex(keys []string) PartitionIndex {
	idx := PartitionIndex{rows: make(map[string][]int)}
	for i, key := range keys {
		if _, ok := idx.rows[key]; !ok {
			idx.keys = append(idx.keys, key)
		}
		idx.rows[key] = append(idx.rows[key], i)
	}
	return idx
}

// Len returns the number of partitions
func (p PartitionIndex) Len() int {
	return len(p.keys)
}

// Keys returns the partition keys in first-appearance order
func (p PartitionIndex) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Rows returns the row positions of one partition
func (p PartitionIndex) Rows(key string) []int {
	return p.rows[key]
}

// gather copies the selected rows of every column into a Frame
func gather(rows []int, dates, instruments []string, names []string, columns [][]float64) Frame {
	f := Frame{
		Dates:       make([]string, len(rows)),
		Instruments: make([]string, len(rows)),
		Columns:     names,
		Values:      make([][]float64, len(columns)),
	}

	for i, r := range rows {
		f.Dates[i] = dates[r]
		f.Instruments[i] = instruments[r]
	}

	for c, column := range columns {
		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = column[r]
		}
		f.Values[c] = values
	}

	return f
}

// scatter writes frame values back to their original row positions
func scatter(rows []int, f Frame, columns [][]float64) {
	for c, column := range columns {
		for i, r := range rows {
			column[r] = f.Values[c][i]
		}
	}
}
