package drillhole

import (
	"log/slog"

	"github.com/loopgeo/drillhole/domain/model"
)

// depthLocator finds the source record defining the value at a depth.
// The two implementations cover the interval-containment and the
// point-exact flavour of the same capability.
type depthLocator interface {
	locate(d float64) (row int, ok bool)
}

// intervalLocator resolves a depth against [from, to) intervals.
//
// Containment is half-open, with two boundary overrides: a depth equal
// to a from boundary maps to that interval and a depth equal to a to
// boundary maps to that interval, the to-match taking precedence. When
// malformed overlapping input gives several candidates of the same kind,
// the later record in table order wins.
type intervalLocator struct {
	from []float64
	to   []float64
}

func (l intervalLocator) locate(d float64) (int, bool) {
	contain, exactFrom, exactTo := -1, -1, -1
	for i := range l.from {
		if l.from[i] <= d && d < l.to[i] {
			contain = i
		}
		if l.from[i] == d {
			exactFrom = i
		}
		if l.to[i] == d {
			exactTo = i
		}
	}
	switch {
	case exactTo >= 0:
		return exactTo, true
	case exactFrom >= 0:
		return exactFrom, true
	case contain >= 0:
		return contain, true
	default:
		return 0, false
	}
}

// pointLocator resolves a depth by exact match only. Point resampling is
// an alignment, not a numeric interpolation, so categorical columns stay
// safe.
type pointLocator struct {
	depths []float64
}

func (l pointLocator) locate(d float64) (int, bool) {
	row, ok := -1, false
	for i, sd := range l.depths {
		if sd == d {
			row, ok = i, true
		}
	}
	return row, ok
}

// ResampleInterval maps the named columns of an interval table onto the
// query depths using the direct containment join. Depths matching no
// interval receive a null of the column's type. Columns absent from the
// source are skipped with a diagnostic; an empty source table yields no
// columns at all.
func ResampleInterval(queryDepths []float64, table *model.IntervalTable, columns []string) []*model.Column {
	return resampleInterval(slog.Default(), queryDepths, table, columns)
}

func resampleInterval(log *slog.Logger, queryDepths []float64, table *model.IntervalTable, columns []string) []*model.Column {
	if table.Len() == 0 {
		log.Debug("resample: empty source table, nothing resampled", "table", table.Name())
		return nil
	}
	loc := intervalLocator{from: table.Froms(), to: table.Tos()}
	return alignColumns(log, loc, queryDepths, table.Name(), table.Column, columns)
}

// ResamplePoint aligns the named columns of a point table onto the query
// depths by exact depth match.
func ResamplePoint(queryDepths []float64, table *model.PointTable, columns []string) []*model.Column {
	return resamplePoint(slog.Default(), queryDepths, table, columns)
}

func resamplePoint(log *slog.Logger, queryDepths []float64, table *model.PointTable, columns []string) []*model.Column {
	if table.Len() == 0 {
		log.Debug("resample: empty source table, nothing resampled", "table", table.Name())
		return nil
	}
	loc := pointLocator{depths: table.Depths()}
	return alignColumns(log, loc, queryDepths, table.Name(), table.Column, columns)
}

// alignColumns performs the shared column alignment over any locator.
func alignColumns(log *slog.Logger, loc depthLocator, queryDepths []float64, tableName string, column func(string) *model.Column, names []string) []*model.Column {
	rows := make([]int, len(queryDepths))
	found := make([]bool, len(queryDepths))
	for i, d := range queryDepths {
		rows[i], found[i] = loc.locate(d)
	}

	out := make([]*model.Column, 0, len(names))
	for _, name := range names {
		src := column(name)
		if src == nil {
			log.Warn("resample: column not in source table, skipping", "table", tableName, "column", name)
			continue
		}
		dst := model.NewColumn(src.Name, src.Type)
		for i := range queryDepths {
			if found[i] {
				dst.Append(src.Values[rows[i]])
			} else {
				dst.AppendNull()
			}
		}
		out = append(out, dst)
	}
	return out
}
