package drillhole

import (
	"fmt"
	"math"

	"github.com/loopgeo/drillhole/domain/model"
)

// Hole is a read-only view over one hole of the database. It borrows the
// database's data and filters table lookups down to its own records.
type Hole struct {
	db     *DrillholeDatabase
	id     string
	collar model.Collar
	survey []model.SurveyStation
}

// ID returns the hole id.
func (h *Hole) ID() string { return h.id }

// Collar returns the collar record.
func (h *Hole) Collar() model.Collar { return h.collar }

// Survey returns the hole's survey stations in input order.
func (h *Hole) Survey() []model.SurveyStation {
	out := make([]model.SurveyStation, len(h.survey))
	copy(out, h.survey)
	return out
}

// Trace desurveys the hole at the given target depths.
func (h *Hole) Trace(target TargetDepths) (*Trace, error) {
	return Desurvey(h.db.cfg, h.collar, h.survey, target)
}

// IntervalTable returns the hole's records of the named interval table.
func (h *Hole) IntervalTable(name string) (*model.IntervalTable, error) {
	t, err := h.db.IntervalTable(name)
	if err != nil {
		return nil, err
	}
	return t.FilterHole(h.id), nil
}

// PointTable returns the hole's records of the named point table.
func (h *Hole) PointTable(name string) (*model.PointTable, error) {
	t, err := h.db.PointTable(name)
	if err != nil {
		return nil, err
	}
	return t.FilterHole(h.id), nil
}

// IntervalTableNames returns the names of the interval tables that hold
// at least one record for this hole, in registration order.
func (h *Hole) IntervalTableNames() []string {
	var out []string
	for _, name := range h.db.intervalOrder {
		if h.db.intervals[name].FilterHole(h.id).Len() > 0 {
			out = append(out, name)
		}
	}
	return out
}

// PointTableNames returns the names of the point tables that hold at
// least one record for this hole, in registration order.
func (h *Hole) PointTableNames() []string {
	var out []string
	for _, name := range h.db.pointOrder {
		if h.db.points[name].FilterHole(h.id).Len() > 0 {
			out = append(out, name)
		}
	}
	return out
}

// DepthAt returns the downhole depth of the trace sample closest to the
// given position, desurveying on a one-metre grid. Useful for locating a
// 3D pick back onto the hole.
func (h *Hole) DepthAt(x, y, z float64) (float64, error) {
	tr, err := h.Trace(StepDepths(1.0))
	if err != nil {
		return 0, err
	}
	if tr.Len() == 0 {
		return 0, fmt.Errorf("%w: hole %q has no trace samples", ErrEmptySurvey, h.id)
	}
	best, bestDist := 0, math.Inf(1)
	for i, s := range tr.Samples {
		dx, dy, dz := s.Mid.X-x, s.Mid.Y-y, s.Mid.Z-z
		if d := dx*dx + dy*dy + dz*dz; d < bestDist {
			best, bestDist = i, d
		}
	}
	return tr.Samples[best].Depth, nil
}

// DesurveyIntervals attaches x/y/z coordinates at from, to and midpoint
// to the hole's records of the named interval table.
func (h *Hole) DesurveyIntervals(name string) (*model.IntervalTable, error) {
	ht, err := h.IntervalTable(name)
	if err != nil {
		return nil, err
	}
	if ht.Len() == 0 {
		return ht, nil
	}
	return h.db.desurveyIntervalHole(h.id, name, ht)
}

// DesurveyPoints attaches x/y/z coordinates to the hole's records of the
// named point table.
func (h *Hole) DesurveyPoints(name string) (*model.PointTable, error) {
	ht, err := h.PointTable(name)
	if err != nil {
		return nil, err
	}
	if ht.Len() == 0 {
		return ht, nil
	}
	return h.db.desurveyPointHole(h.id, name, ht)
}
