package drillhole

import (
	"math"

	"github.com/loopgeo/drillhole/domain/model"
)

type filterSpec struct {
	holes              map[string]struct{}
	minPt, maxPt       *Point
	minDepth, maxDepth float64
	pred               func(model.Collar) bool
}

// FilterOption narrows the data kept by Filter.
type FilterOption func(*filterSpec)

// FilterHoles keeps only the listed holes.
func FilterHoles(holeIDs ...string) FilterOption {
	return func(f *filterSpec) {
		f.holes = make(map[string]struct{}, len(holeIDs))
		for _, id := range holeIDs {
			f.holes[id] = struct{}{}
		}
	}
}

// FilterExtent keeps only holes whose collar lies inside the box.
func FilterExtent(minPt, maxPt Point) FilterOption {
	return func(f *filterSpec) {
		f.minPt, f.maxPt = &minPt, &maxPt
	}
}

// FilterDepth keeps only records intersecting the downhole depth range
// [minDepth, maxDepth]. Interval records straddling a bound are clipped
// to it; point records outside the range are dropped.
func FilterDepth(minDepth, maxDepth float64) FilterOption {
	return func(f *filterSpec) {
		f.minDepth, f.maxDepth = minDepth, maxDepth
	}
}

// FilterCollars keeps only holes whose collar satisfies the predicate.
func FilterCollars(pred func(model.Collar) bool) FilterOption {
	return func(f *filterSpec) {
		f.pred = pred
	}
}

// Filter builds a new database holding only the data matching every
// given option. Collars, surveys and tables are copied, so the result is
// independent of the receiver.
func (db *DrillholeDatabase) Filter(opts ...FilterOption) (*DrillholeDatabase, error) {
	f := filterSpec{minDepth: math.Inf(-1), maxDepth: math.Inf(1)}
	for _, opt := range opts {
		opt(&f)
	}

	var collars []model.Collar
	surveys := make(map[string][]model.SurveyStation)
	for _, holeID := range db.holes {
		c := db.collars[holeID]
		if !f.keepHole(c) {
			continue
		}
		collars = append(collars, c)
		if stations := db.surveys[holeID]; len(stations) > 0 {
			surveys[holeID] = stations
		}
	}

	out, err := NewDatabase(db.cfg, collars, surveys, WithLogger(db.logger))
	if err != nil {
		return nil, err
	}
	for _, name := range db.intervalOrder {
		clipped, err := f.clipIntervalTable(out, db.intervals[name])
		if err != nil {
			return nil, err
		}
		if err := out.AddIntervalTable(name, clipped); err != nil {
			return nil, err
		}
	}
	for _, name := range db.pointOrder {
		clipped, err := f.clipPointTable(out, db.points[name])
		if err != nil {
			return nil, err
		}
		if err := out.AddPointTable(name, clipped); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (f *filterSpec) keepHole(c model.Collar) bool {
	if f.holes != nil {
		if _, ok := f.holes[c.HoleID]; !ok {
			return false
		}
	}
	if f.minPt != nil {
		if c.X < f.minPt.X || c.X > f.maxPt.X ||
			c.Y < f.minPt.Y || c.Y > f.maxPt.Y ||
			c.Z < f.minPt.Z || c.Z > f.maxPt.Z {
			return false
		}
	}
	if f.pred != nil && !f.pred(c) {
		return false
	}
	return true
}

func (f *filterSpec) clipIntervalTable(db *DrillholeDatabase, t *model.IntervalTable) (*model.IntervalTable, error) {
	out := model.NewIntervalTable(t.Name())
	for _, c := range t.Columns() {
		if _, err := out.AddColumn(c.Name, c.Type); err != nil {
			return nil, err
		}
	}
	holeIDs, from, to := t.HoleIDs(), t.Froms(), t.Tos()
	for i := range from {
		if _, ok := db.collars[holeIDs[i]]; !ok {
			continue
		}
		lo, hi := math.Max(from[i], f.minDepth), math.Min(to[i], f.maxDepth)
		if lo >= hi {
			continue
		}
		if err := out.AppendRow(holeIDs[i], lo, hi); err != nil {
			return nil, err
		}
		row := out.Len() - 1
		for _, c := range t.Columns() {
			out.Column(c.Name).Set(row, c.Values[i])
		}
	}
	return out, nil
}

func (f *filterSpec) clipPointTable(db *DrillholeDatabase, t *model.PointTable) (*model.PointTable, error) {
	out := model.NewPointTable(t.Name())
	for _, c := range t.Columns() {
		if _, err := out.AddColumn(c.Name, c.Type); err != nil {
			return nil, err
		}
	}
	holeIDs, depths := t.HoleIDs(), t.Depths()
	for i := range depths {
		if _, ok := db.collars[holeIDs[i]]; !ok {
			continue
		}
		if depths[i] < f.minDepth || depths[i] > f.maxDepth {
			continue
		}
		out.AppendRow(holeIDs[i], depths[i])
		row := out.Len() - 1
		for _, c := range t.Columns() {
			out.Column(c.Name).Set(row, c.Values[i])
		}
	}
	return out, nil
}
