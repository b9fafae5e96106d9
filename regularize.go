package drillhole

import (
	"fmt"
	"log/slog"

	"github.com/loopgeo/drillhole/domain/model"
)

// Regularize rebuilds an irregular interval table onto a fixed-width
// depth grid, selecting for each bucket the value with the greatest
// total overlap length ("majority-by-length" compositing).
//
// The grid starts at the table's minimum from-depth and the final bucket
// is truncated at the maximum to-depth; it is derived from the table's
// own bounds only. Ties between values with equal total overlap are
// broken in favour of the value encountered first in table record order.
// Buckets intersecting no input interval carry nulls. The input is
// expected to hold a single hole; its hole id is copied to every output
// record.
func Regularize(table *model.IntervalTable, columns []string, width float64) (*model.IntervalTable, error) {
	return regularize(slog.Default(), table, columns, width)
}

func regularize(log *slog.Logger, table *model.IntervalTable, columns []string, width float64) (*model.IntervalTable, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: width %g (table %q)", ErrInvalidStep, width, table.Name())
	}
	out := model.NewIntervalTable(table.Name())
	minFrom, maxTo, ok := table.DepthRange()
	if !ok {
		log.Debug("regularize: empty source table, nothing resampled", "table", table.Name())
		return out, nil
	}
	holeID := table.HoleIDs()[0]

	var srcCols []*model.Column
	var dstCols []*model.Column
	for _, name := range columns {
		src := table.Column(name)
		if src == nil {
			log.Warn("regularize: column not in source table, skipping", "table", table.Name(), "column", name)
			continue
		}
		dst, err := out.AddColumn(src.Name, src.Type)
		if err != nil {
			return nil, err
		}
		srcCols = append(srcCols, src)
		dstCols = append(dstCols, dst)
	}

	from := table.Froms()
	to := table.Tos()
	for i := 0; ; i++ {
		lo := minFrom + float64(i)*width
		if lo >= maxTo {
			break
		}
		hi := lo + width
		if hi > maxTo {
			hi = maxTo
		}
		if err := out.AppendRow(holeID, lo, hi); err != nil {
			return nil, err
		}
		row := out.Len() - 1
		for j, src := range srcCols {
			if v, ok := modeByOverlap(from, to, src.Values, lo, hi); ok {
				dstCols[j].Set(row, v)
			}
		}
	}
	return out, nil
}

// modeByOverlap accumulates overlap length per distinct value over all
// source intervals intersecting [lo, hi) and returns the dominant value.
// Null source values never dominate a bucket.
func modeByOverlap(from, to []float64, values []model.Value, lo, hi float64) (model.Value, bool) {
	totals := make(map[model.Value]float64)
	firstSeen := make(map[model.Value]int)
	order := 0
	for i := range from {
		overlap := minf(hi, to[i]) - maxf(lo, from[i])
		if overlap <= 0 {
			continue
		}
		v := values[i]
		if v.IsNull() {
			continue
		}
		if _, ok := firstSeen[v]; !ok {
			firstSeen[v] = order
			order++
		}
		totals[v] += overlap
	}

	var best model.Value
	bestLen := -1.0
	ok := false
	for v, length := range totals {
		if length > bestLen || (length == bestLen && firstSeen[v] < firstSeen[best]) {
			best, bestLen, ok = v, length, true
		}
	}
	return best, ok
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
