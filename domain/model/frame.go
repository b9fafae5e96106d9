package model

// Frame is a raw tabular file as loaded from disk: a name, a header and
// string records. Typed drillhole tables are parsed out of a Frame using
// a Config for the column mapping.
type Frame struct {
	name    string
	header  []string
	records [][]string
}

// NewFrame creates a frame from a header and records.
func NewFrame(name string, header []string, records [][]string) *Frame {
	return &Frame{name: name, header: header, records: records}
}

// Name returns the frame name (usually derived from the file name).
func (f *Frame) Name() string { return f.name }

// Header returns the column names.
func (f *Frame) Header() []string { return f.header }

// Records returns the raw records.
func (f *Frame) Records() [][]string { return f.records }

// Len returns the number of records.
func (f *Frame) Len() int { return len(f.records) }

// ColumnIndex returns the index of a named column, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, h := range f.header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the raw cell at (row, col); rows shorter than the header
// yield the empty string.
func (f *Frame) Cell(row, col int) string {
	r := f.records[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ColumnValues returns all raw values of one column.
func (f *Frame) ColumnValues(col int) []string {
	out := make([]string, len(f.records))
	for i := range f.records {
		out[i] = f.Cell(i, col)
	}
	return out
}
