package model

import (
	"fmt"
	"strconv"
)

// requireColumns resolves the given column names in the frame header and
// reports every missing name at once.
func requireColumns(f *Frame, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		idx[i] = f.ColumnIndex(n)
		if idx[i] < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: table %q missing %v", ErrMissingColumn, f.Name(), missing)
	}
	return idx, nil
}

func parseFloat(f *Frame, row, col int, what string) (float64, error) {
	raw := f.Cell(row, col)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("table %q row %d: invalid %s value %q", f.Name(), row, what, raw)
	}
	return v, nil
}

// CollarsFromFrame parses collar records out of a raw frame using the
// configured column mapping. Duplicate hole ids are rejected.
func CollarsFromFrame(f *Frame, cfg Config) ([]Collar, error) {
	idx, err := requireColumns(f, cfg.HoleIDCol, cfg.XCol, cfg.YCol, cfg.ZCol, cfg.TotalDepthCol)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, f.Len())
	collars := make([]Collar, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		c := Collar{HoleID: f.Cell(i, idx[0])}
		if _, ok := seen[c.HoleID]; ok {
			return nil, fmt.Errorf("%w: hole %q in table %q", ErrDuplicateHoleID, c.HoleID, f.Name())
		}
		seen[c.HoleID] = struct{}{}
		if c.X, err = parseFloat(f, i, idx[1], "x"); err != nil {
			return nil, err
		}
		if c.Y, err = parseFloat(f, i, idx[2], "y"); err != nil {
			return nil, err
		}
		if c.Z, err = parseFloat(f, i, idx[3], "z"); err != nil {
			return nil, err
		}
		if c.TotalDepth, err = parseFloat(f, i, idx[4], "total depth"); err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("table %q: %w", f.Name(), err)
		}
		collars = append(collars, c)
	}
	return collars, nil
}

// SurveysFromFrame parses survey stations out of a raw frame, grouped by
// hole id. Station order within a hole follows record order; the desurvey
// engine sorts by depth itself.
func SurveysFromFrame(f *Frame, cfg Config) (map[string][]SurveyStation, error) {
	idx, err := requireColumns(f, cfg.HoleIDCol, cfg.DepthCol, cfg.AzimuthCol, cfg.DipCol)
	if err != nil {
		return nil, err
	}
	surveys := make(map[string][]SurveyStation)
	for i := 0; i < f.Len(); i++ {
		holeID := f.Cell(i, idx[0])
		var s SurveyStation
		if s.Depth, err = parseFloat(f, i, idx[1], "depth"); err != nil {
			return nil, err
		}
		if s.Azimuth, err = parseFloat(f, i, idx[2], "azimuth"); err != nil {
			return nil, err
		}
		if s.Dip, err = parseFloat(f, i, idx[3], "dip"); err != nil {
			return nil, err
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("table %q hole %q: %w", f.Name(), holeID, err)
		}
		surveys[holeID] = append(surveys[holeID], s)
	}
	return surveys, nil
}

// IntervalTableFromFrame parses an interval table out of a raw frame.
// Every non-identifier column becomes an attribute column with its type
// inferred from the data.
func IntervalTableFromFrame(f *Frame, cfg Config) (*IntervalTable, error) {
	idx, err := requireColumns(f, cfg.HoleIDCol, cfg.FromCol, cfg.ToCol)
	if err != nil {
		return nil, err
	}
	t := NewIntervalTable(f.Name())
	attrs := attributeColumns(f, idx)
	cols := make([]*Column, 0, len(attrs))
	for _, a := range attrs {
		ct := InferColumnType(f.ColumnValues(a))
		c, err := t.AddColumn(f.Header()[a], ct)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	for i := 0; i < f.Len(); i++ {
		holeID := f.Cell(i, idx[0])
		from, err := parseFloat(f, i, idx[1], "from")
		if err != nil {
			return nil, err
		}
		to, err := parseFloat(f, i, idx[2], "to")
		if err != nil {
			return nil, err
		}
		if err := t.AppendRow(holeID, from, to); err != nil {
			return nil, err
		}
		for j, a := range attrs {
			cols[j].Set(t.Len()-1, ParseValue(f.Cell(i, a), cols[j].Type))
		}
	}
	return t, nil
}

// PointTableFromFrame parses a point table out of a raw frame.
func PointTableFromFrame(f *Frame, cfg Config) (*PointTable, error) {
	idx, err := requireColumns(f, cfg.HoleIDCol, cfg.DepthCol)
	if err != nil {
		return nil, err
	}
	t := NewPointTable(f.Name())
	attrs := attributeColumns(f, idx)
	cols := make([]*Column, 0, len(attrs))
	for _, a := range attrs {
		ct := InferColumnType(f.ColumnValues(a))
		c, err := t.AddColumn(f.Header()[a], ct)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	for i := 0; i < f.Len(); i++ {
		holeID := f.Cell(i, idx[0])
		depth, err := parseFloat(f, i, idx[1], "depth")
		if err != nil {
			return nil, err
		}
		t.AppendRow(holeID, depth)
		for j, a := range attrs {
			cols[j].Set(t.Len()-1, ParseValue(f.Cell(i, a), cols[j].Type))
		}
	}
	return t, nil
}

// attributeColumns returns the header indexes not used as identifiers.
func attributeColumns(f *Frame, used []int) []int {
	skip := make(map[int]struct{}, len(used))
	for _, u := range used {
		skip[u] = struct{}{}
	}
	var out []int
	for i := range f.Header() {
		if _, ok := skip[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}
