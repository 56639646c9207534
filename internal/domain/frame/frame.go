// Package frame holds the generic column/record table every stage of the
// pipeline works on before rows are coerced into typed order records.
package frame

// Frame is an ordered set of named columns over string records. Records are
// always exactly as wide as Columns; New pads or truncates to guarantee it.
type Frame struct {
	Columns []string
	Records [][]string
}

func New(columns []string, records [][]string) *Frame {
	f := &Frame{
		Columns: append([]string(nil), columns...),
		Records: make([][]string, 0, len(records)),
	}
	width := len(columns)
	for _, rec := range records {
		row := make([]string, width)
		copy(row, rec)
		f.Records = append(f.Records, row)
	}
	return f
}

// Index returns the position of the named column, or -1.
func (f *Frame) Index(column string) int {
	for i, c := range f.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

func (f *Frame) Has(column string) bool {
	return f.Index(column) >= 0
}

// Column returns a copy of the named column's values, nil if absent.
func (f *Frame) Column(name string) []string {
	idx := f.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(f.Records))
	for i, rec := range f.Records {
		out[i] = rec[idx]
	}
	return out
}

// Value returns the cell at (row, column), "" when the column is absent.
func (f *Frame) Value(row int, column string) string {
	idx := f.Index(column)
	if idx < 0 || row < 0 || row >= len(f.Records) {
		return ""
	}
	return f.Records[row][idx]
}

func (f *Frame) Len() int {
	return len(f.Records)
}

func (f *Frame) Width() int {
	return len(f.Columns)
}

// Clone deep-copies the frame.
func (f *Frame) Clone() *Frame {
	return New(f.Columns, f.Records)
}

// Rename replaces column names in place using the given old->new mapping.
// Columns not present in the mapping keep their names.
func (f *Frame) Rename(mapping map[string]string) {
	for i, c := range f.Columns {
		if nn, ok := mapping[c]; ok {
			f.Columns[i] = nn
		}
	}
}

// Select returns a new frame containing only the named columns, in the given
// order. Names not present in the frame are skipped.
func (f *Frame) Select(columns []string) *Frame {
	idxs := make([]int, 0, len(columns))
	kept := make([]string, 0, len(columns))
	for _, c := range columns {
		if idx := f.Index(c); idx >= 0 {
			idxs = append(idxs, idx)
			kept = append(kept, c)
		}
	}
	records := make([][]string, len(f.Records))
	for i, rec := range f.Records {
		row := make([]string, len(idxs))
		for j, idx := range idxs {
			row[j] = rec[idx]
		}
		records[i] = row
	}
	return &Frame{Columns: kept, Records: records}
}

// AppendColumn adds a column with the given values, padded with "" when the
// frame has more records than values.
func (f *Frame) AppendColumn(name string, values []string) {
	f.Columns = append(f.Columns, name)
	for i := range f.Records {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		f.Records[i] = append(f.Records[i], v)
	}
}

// SetConstant adds a column where every record carries the same value.
func (f *Frame) SetConstant(name, value string) {
	values := make([]string, len(f.Records))
	for i := range values {
		values[i] = value
	}
	f.AppendColumn(name, values)
}

// DropEmptyRecords removes records whose cells are all empty.
func (f *Frame) DropEmptyRecords() {
	kept := f.Records[:0]
	for _, rec := range f.Records {
		empty := true
		for _, v := range rec {
			if v != "" {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, rec)
		}
	}
	f.Records = kept
}

// Concat unions the frames' columns (first-seen order) and stacks their
// records in argument order, filling absent cells with "".
func Concat(frames ...*Frame) *Frame {
	var columns []string
	seen := map[string]bool{}
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, c := range f.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	out := &Frame{Columns: columns}
	for _, f := range frames {
		if f == nil {
			continue
		}
		idxs := make([]int, len(columns))
		for i, c := range columns {
			idxs[i] = f.Index(c)
		}
		for _, rec := range f.Records {
			row := make([]string, len(columns))
			for i, idx := range idxs {
				if idx >= 0 {
					row[i] = rec[idx]
				}
			}
			out.Records = append(out.Records, row)
		}
	}
	return out
}
