package model

import (
	"fmt"
	"sort"
)

// IntervalTable is a named collection of depth intervals with attribute
// columns. Intervals may span several holes, need not be contiguous and
// may overlap; the resampling components define how overlaps resolve.
type IntervalTable struct {
	name    string
	holeIDs []string
	from    []float64
	to      []float64
	columns []*Column
	index   map[string]*Column
}

// NewIntervalTable creates an empty interval table.
func NewIntervalTable(name string) *IntervalTable {
	return &IntervalTable{name: name, index: make(map[string]*Column)}
}

// Name returns the table name.
func (t *IntervalTable) Name() string { return t.name }

// Len returns the number of interval records.
func (t *IntervalTable) Len() int { return len(t.from) }

// HoleIDs returns the per-record hole ids. The slice is shared; callers
// must not modify it.
func (t *IntervalTable) HoleIDs() []string { return t.holeIDs }

// Froms returns the per-record from-depths. The slice is shared.
func (t *IntervalTable) Froms() []float64 { return t.from }

// Tos returns the per-record to-depths. The slice is shared.
func (t *IntervalTable) Tos() []float64 { return t.to }

// Columns returns the attribute columns in insertion order.
func (t *IntervalTable) Columns() []*Column { return t.columns }

// Column returns the attribute column with the given name, or nil.
func (t *IntervalTable) Column(name string) *Column { return t.index[name] }

// ColumnNames returns attribute column names in insertion order.
func (t *IntervalTable) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// AddColumn adds an attribute column padded with nulls to the current
// length. Adding a duplicate name is an error.
func (t *IntervalTable) AddColumn(name string, ct ColumnType) (*Column, error) {
	if _, ok := t.index[name]; ok {
		return nil, fmt.Errorf("table %q: column %q already exists", t.name, name)
	}
	c := NewColumn(name, ct)
	for range t.from {
		c.AppendNull()
	}
	t.columns = append(t.columns, c)
	t.index[name] = c
	return c, nil
}

// AppendRow appends an interval record, padding every attribute column
// with a null. Attribute values are assigned afterwards via Column.Set.
func (t *IntervalTable) AppendRow(holeID string, from, to float64) error {
	if from > to {
		return fmt.Errorf("%w: table %q hole %q [%g, %g]", ErrInvalidInterval, t.name, holeID, from, to)
	}
	t.holeIDs = append(t.holeIDs, holeID)
	t.from = append(t.from, from)
	t.to = append(t.to, to)
	for _, c := range t.columns {
		c.AppendNull()
	}
	return nil
}

// Holes returns the sorted distinct hole ids present in the table.
func (t *IntervalTable) Holes() []string {
	return distinctSorted(t.holeIDs)
}

// FilterHole returns a copy containing only the records of one hole,
// preserving record order.
func (t *IntervalTable) FilterHole(holeID string) *IntervalTable {
	out := NewIntervalTable(t.name)
	for _, c := range t.columns {
		out.columns = append(out.columns, NewColumn(c.Name, c.Type))
		out.index[c.Name] = out.columns[len(out.columns)-1]
	}
	for i, h := range t.holeIDs {
		if h != holeID {
			continue
		}
		out.holeIDs = append(out.holeIDs, h)
		out.from = append(out.from, t.from[i])
		out.to = append(out.to, t.to[i])
		for j, c := range t.columns {
			out.columns[j].Values = append(out.columns[j].Values, c.Values[i])
		}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *IntervalTable) Clone() *IntervalTable {
	out := NewIntervalTable(t.name)
	out.holeIDs = append(out.holeIDs, t.holeIDs...)
	out.from = append(out.from, t.from...)
	out.to = append(out.to, t.to...)
	for _, c := range t.columns {
		cc := c.Clone()
		out.columns = append(out.columns, cc)
		out.index[cc.Name] = cc
	}
	return out
}

// DepthRange returns the minimum from-depth and maximum to-depth across
// all records. ok is false for an empty table.
func (t *IntervalTable) DepthRange() (minFrom, maxTo float64, ok bool) {
	if len(t.from) == 0 {
		return 0, 0, false
	}
	minFrom, maxTo = t.from[0], t.to[0]
	for i := range t.from {
		if t.from[i] < minFrom {
			minFrom = t.from[i]
		}
		if t.to[i] > maxTo {
			maxTo = t.to[i]
		}
	}
	return minFrom, maxTo, true
}

// PointTable is a named collection of single-depth samples with attribute
// columns.
type PointTable struct {
	name    string
	holeIDs []string
	depths  []float64
	columns []*Column
	index   map[string]*Column
}

// NewPointTable creates an empty point table.
func NewPointTable(name string) *PointTable {
	return &PointTable{name: name, index: make(map[string]*Column)}
}

// Name returns the table name.
func (t *PointTable) Name() string { return t.name }

// Len returns the number of point records.
func (t *PointTable) Len() int { return len(t.depths) }

// HoleIDs returns the per-record hole ids. The slice is shared.
func (t *PointTable) HoleIDs() []string { return t.holeIDs }

// Depths returns the per-record depths. The slice is shared.
func (t *PointTable) Depths() []float64 { return t.depths }

// Columns returns the attribute columns in insertion order.
func (t *PointTable) Columns() []*Column { return t.columns }

// Column returns the attribute column with the given name, or nil.
func (t *PointTable) Column(name string) *Column { return t.index[name] }

// ColumnNames returns attribute column names in insertion order.
func (t *PointTable) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// AddColumn adds an attribute column padded with nulls to the current
// length. Adding a duplicate name is an error.
func (t *PointTable) AddColumn(name string, ct ColumnType) (*Column, error) {
	if _, ok := t.index[name]; ok {
		return nil, fmt.Errorf("table %q: column %q already exists", t.name, name)
	}
	c := NewColumn(name, ct)
	for range t.depths {
		c.AppendNull()
	}
	t.columns = append(t.columns, c)
	t.index[name] = c
	return c, nil
}

// AppendRow appends a point record, padding every attribute column with
// a null.
func (t *PointTable) AppendRow(holeID string, depth float64) {
	t.holeIDs = append(t.holeIDs, holeID)
	t.depths = append(t.depths, depth)
	for _, c := range t.columns {
		c.AppendNull()
	}
}

// Holes returns the sorted distinct hole ids present in the table.
func (t *PointTable) Holes() []string {
	return distinctSorted(t.holeIDs)
}

// FilterHole returns a copy containing only the records of one hole,
// preserving record order.
func (t *PointTable) FilterHole(holeID string) *PointTable {
	out := NewPointTable(t.name)
	for _, c := range t.columns {
		out.columns = append(out.columns, NewColumn(c.Name, c.Type))
		out.index[c.Name] = out.columns[len(out.columns)-1]
	}
	for i, h := range t.holeIDs {
		if h != holeID {
			continue
		}
		out.holeIDs = append(out.holeIDs, h)
		out.depths = append(out.depths, t.depths[i])
		for j, c := range t.columns {
			out.columns[j].Values = append(out.columns[j].Values, c.Values[i])
		}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *PointTable) Clone() *PointTable {
	out := NewPointTable(t.name)
	out.holeIDs = append(out.holeIDs, t.holeIDs...)
	out.depths = append(out.depths, t.depths...)
	for _, c := range t.columns {
		cc := c.Clone()
		out.columns = append(out.columns, cc)
		out.index[cc.Name] = cc
	}
	return out
}

// MaxDepth returns the maximum depth across all records. ok is false for
// an empty table.
func (t *PointTable) MaxDepth() (float64, bool) {
	if len(t.depths) == 0 {
		return 0, false
	}
	maxd := t.depths[0]
	for _, d := range t.depths {
		if d > maxd {
			maxd = d
		}
	}
	return maxd, true
}

func distinctSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
