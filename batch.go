package drillhole

import (
	"fmt"
	"sort"
	"sync"

	"github.com/loopgeo/drillhole/domain/model"
)

// DesurveyIntervals attaches 3D coordinates to every record of the named
// interval table: x/y/z at the from-depth, the to-depth and the interval
// midpoint, plus the midpoint depth itself. Each hole is desurveyed at
// the union of its interval boundaries and the trace coordinates are
// projected onto the record depths through the depth interpolator.
//
// Holes are processed independently; per-hole failures are collected and
// the remaining holes still complete.
func (db *DrillholeDatabase) DesurveyIntervals(name string) (*model.IntervalTable, HoleErrors, error) {
	t, ok := db.intervals[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: interval table %q", ErrUnknownTable, name)
	}
	holes := t.Holes()
	results := make(map[string]*model.IntervalTable, len(holes))
	var mu sync.Mutex
	herrs := db.forEachHole(holes, func(holeID string) error {
		ht := t.FilterHole(holeID)
		if ht.Len() == 0 {
			return nil
		}
		res, err := db.desurveyIntervalHole(holeID, name, ht)
		if err != nil {
			return err
		}
		mu.Lock()
		results[holeID] = res
		mu.Unlock()
		return nil
	})

	out := model.NewIntervalTable(name)
	for _, holeID := range holes {
		res, ok := results[holeID]
		if !ok {
			continue
		}
		if err := appendIntervalRows(out, res); err != nil {
			return nil, herrs, err
		}
	}
	return out, herrs, nil
}

func (db *DrillholeDatabase) desurveyIntervalHole(holeID, tableName string, ht *model.IntervalTable) (*model.IntervalTable, error) {
	collar := db.collars[holeID]
	boundaries := make([]float64, 0, 2*ht.Len())
	boundaries = append(boundaries, ht.Froms()...)
	boundaries = append(boundaries, ht.Tos()...)
	tr, err := Desurvey(db.cfg, collar, db.surveys[holeID], ExplicitDepths(distinctSortedFloats(boundaries)))
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", tableName, err)
	}
	di, err := traceInterpolator(tr)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", tableName, err)
	}

	mids := make([]float64, ht.Len())
	for i := range mids {
		mids[i] = (ht.Froms()[i] + ht.Tos()[i]) / 2
	}
	out := ht.Clone()
	for _, proj := range []struct {
		suffix string
		depths []float64
	}{
		{"from", ht.Froms()},
		{"to", ht.Tos()},
		{"mid", mids},
	} {
		for _, axis := range []string{"x", "y", "z"} {
			vals, err := di.Column(axis, proj.depths)
			if err != nil {
				return nil, err
			}
			if err := setRealColumn(out, axis+"_"+proj.suffix, vals); err != nil {
				return nil, err
			}
		}
	}
	if err := setRealColumn(out, "depth_mid", mids); err != nil {
		return nil, err
	}
	return out, nil
}

// DesurveyPoints attaches x/y/z coordinates to every record of the named
// point table, desurveying each hole at its sample depths.
func (db *DrillholeDatabase) DesurveyPoints(name string) (*model.PointTable, HoleErrors, error) {
	t, ok := db.points[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: point table %q", ErrUnknownTable, name)
	}
	holes := t.Holes()
	results := make(map[string]*model.PointTable, len(holes))
	var mu sync.Mutex
	herrs := db.forEachHole(holes, func(holeID string) error {
		ht := t.FilterHole(holeID)
		if ht.Len() == 0 {
			return nil
		}
		res, err := db.desurveyPointHole(holeID, name, ht)
		if err != nil {
			return err
		}
		mu.Lock()
		results[holeID] = res
		mu.Unlock()
		return nil
	})

	out := model.NewPointTable(name)
	for _, holeID := range holes {
		res, ok := results[holeID]
		if !ok {
			continue
		}
		if err := appendPointRows(out, res); err != nil {
			return nil, herrs, err
		}
	}
	return out, herrs, nil
}

func (db *DrillholeDatabase) desurveyPointHole(holeID, tableName string, ht *model.PointTable) (*model.PointTable, error) {
	collar := db.collars[holeID]
	depths := make([]float64, len(ht.Depths()))
	copy(depths, ht.Depths())
	tr, err := Desurvey(db.cfg, collar, db.surveys[holeID], ExplicitDepths(distinctSortedFloats(depths)))
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", tableName, err)
	}
	di, err := traceInterpolator(tr)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", tableName, err)
	}
	out := ht.Clone()
	for _, axis := range []string{"x", "y", "z"} {
		vals, err := di.Column(axis, ht.Depths())
		if err != nil {
			return nil, err
		}
		if err := setRealPointColumn(out, axis, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// resampleSource is one attribute table contributing columns to a
// database-wide resample, with output names fixed up for collisions.
type resampleSource struct {
	name     string
	interval bool
	cols     []string
	outNames []string
	types    []model.ColumnType
}

// Resample desurveys every relevant hole on a regular depth grid and
// projects the requested attribute columns from all registered tables
// onto it. The result is one point table with depth, x/y/z and one
// column per matched attribute; column name collisions across tables are
// suffixed in registration order.
func (db *DrillholeDatabase) Resample(columns []string, step float64) (*model.PointTable, HoleErrors, error) {
	if step <= 0 {
		return nil, nil, fmt.Errorf("%w: %g", ErrInvalidStep, step)
	}
	requested := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		requested[c] = struct{}{}
	}

	taken := map[string]struct{}{"x": {}, "y": {}, "z": {}}
	var sources []resampleSource
	holeSet := make(map[string]struct{})
	addSource := func(name string, interval bool, cols []*model.Column, holes []string) {
		src := resampleSource{name: name, interval: interval}
		for _, c := range cols {
			if _, ok := requested[c.Name]; !ok {
				continue
			}
			outName := c.Name
			for i := 1; ; i++ {
				if _, ok := taken[outName]; !ok {
					break
				}
				outName = fmt.Sprintf("%s_%d", c.Name, i)
			}
			taken[outName] = struct{}{}
			src.cols = append(src.cols, c.Name)
			src.outNames = append(src.outNames, outName)
			src.types = append(src.types, c.Type)
		}
		if len(src.cols) > 0 {
			sources = append(sources, src)
			for _, h := range holes {
				holeSet[h] = struct{}{}
			}
		}
	}
	for _, name := range db.intervalOrder {
		t := db.intervals[name]
		addSource(name, true, t.Columns(), t.Holes())
	}
	for _, name := range db.pointOrder {
		t := db.points[name]
		addSource(name, false, t.Columns(), t.Holes())
	}

	holes := make([]string, 0, len(holeSet))
	for h := range holeSet {
		holes = append(holes, h)
	}
	sort.Strings(holes)

	results := make(map[string]*model.PointTable, len(holes))
	var mu sync.Mutex
	herrs := db.forEachHole(holes, func(holeID string) error {
		res, err := db.resampleHole(holeID, sources, step)
		if err != nil {
			return err
		}
		mu.Lock()
		results[holeID] = res
		mu.Unlock()
		return nil
	})

	out := model.NewPointTable("resampled")
	for _, holeID := range holes {
		res, ok := results[holeID]
		if !ok {
			continue
		}
		if err := appendPointRows(out, res); err != nil {
			return nil, herrs, err
		}
	}
	return out, herrs, nil
}

// resampleHole builds the resampled rows of one hole with the full
// output schema, so per-hole results concatenate uniformly.
func (db *DrillholeDatabase) resampleHole(holeID string, sources []resampleSource, step float64) (*model.PointTable, error) {
	collar := db.collars[holeID]
	tr, err := Desurvey(db.cfg, collar, db.surveys[holeID], StepDepths(step))
	if err != nil {
		return nil, err
	}
	depths := tr.Depths()

	out := model.NewPointTable("resampled")
	for _, axis := range []string{"x", "y", "z"} {
		if _, err := out.AddColumn(axis, model.ColumnTypeReal); err != nil {
			return nil, err
		}
	}
	for _, src := range sources {
		for i, outName := range src.outNames {
			if _, err := out.AddColumn(outName, src.types[i]); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range depths {
		out.AppendRow(holeID, d)
	}
	for i, s := range tr.Samples {
		out.Column("x").Set(i, model.Real(s.Mid.X))
		out.Column("y").Set(i, model.Real(s.Mid.Y))
		out.Column("z").Set(i, model.Real(s.Mid.Z))
	}

	for _, src := range sources {
		var aligned []*model.Column
		if src.interval {
			aligned = resampleInterval(db.logger, depths, db.intervals[src.name].FilterHole(holeID), src.cols)
		} else {
			aligned = resamplePoint(db.logger, depths, db.points[src.name].FilterHole(holeID), src.cols)
		}
		// An empty per-hole slice leaves the columns null.
		byName := make(map[string]*model.Column, len(aligned))
		for _, c := range aligned {
			byName[c.Name] = c
		}
		for i, colName := range src.cols {
			c, ok := byName[colName]
			if !ok {
				continue
			}
			dst := out.Column(src.outNames[i])
			for row, v := range c.Values {
				dst.Set(row, v)
			}
		}
	}
	return out, nil
}

// setRealColumn adds (or reuses) a real column on an interval table and
// fills it with the given values.
func setRealColumn(t *model.IntervalTable, name string, vals []float64) error {
	c := t.Column(name)
	if c == nil {
		var err error
		c, err = t.AddColumn(name, model.ColumnTypeReal)
		if err != nil {
			return err
		}
	}
	for i, v := range vals {
		c.Set(i, model.Real(v))
	}
	return nil
}

// setRealPointColumn is the point-table counterpart of setRealColumn.
func setRealPointColumn(t *model.PointTable, name string, vals []float64) error {
	c := t.Column(name)
	if c == nil {
		var err error
		c, err = t.AddColumn(name, model.ColumnTypeReal)
		if err != nil {
			return err
		}
	}
	for i, v := range vals {
		c.Set(i, model.Real(v))
	}
	return nil
}

// appendPointRows appends all rows of src to dst, creating attribute
// columns on first use.
func appendPointRows(dst, src *model.PointTable) error {
	for _, c := range src.Columns() {
		if dst.Column(c.Name) == nil {
			if _, err := dst.AddColumn(c.Name, c.Type); err != nil {
				return err
			}
		}
	}
	holeIDs, depths := src.HoleIDs(), src.Depths()
	for i := range depths {
		dst.AppendRow(holeIDs[i], depths[i])
		row := dst.Len() - 1
		for _, c := range src.Columns() {
			dst.Column(c.Name).Set(row, c.Values[i])
		}
	}
	return nil
}
