package drillhole

import (
	"fmt"
	"sort"

	"github.com/loopgeo/drillhole/domain/model"
)

// MergeIntervalTables unions several interval tables into one atomic,
// non-overlapping partition per hole. Segment boundaries are the sorted
// union of every from/to depth appearing in any input table for that
// hole; for each atomic segment, each table contributes the attributes
// of the (at most one, assuming well-formed input) interval fully
// covering it. Attribute columns whose names collide across tables are
// suffixed _1, _2, ... in table order; the first table keeps the bare
// name. The output is sorted by (hole id, from).
func MergeIntervalTables(name string, tables []*model.IntervalTable) (*model.IntervalTable, error) {
	for pos, t := range tables {
		if t == nil {
			return nil, fmt.Errorf("%w: merge input %d is nil", ErrEmptyTable, pos)
		}
	}

	out := model.NewIntervalTable(name)

	// Column layout: one output column per input column, collision names
	// suffixed with an incrementing index.
	taken := make(map[string]struct{})
	outCols := make([][]*model.Column, len(tables))
	for ti, t := range tables {
		for _, src := range t.Columns() {
			colName := src.Name
			for i := 1; ; i++ {
				if _, ok := taken[colName]; !ok {
					break
				}
				colName = fmt.Sprintf("%s_%d", src.Name, i)
			}
			taken[colName] = struct{}{}
			dst, err := out.AddColumn(colName, src.Type)
			if err != nil {
				return nil, err
			}
			outCols[ti] = append(outCols[ti], dst)
		}
	}

	// Union of hole ids across all tables, sorted for deterministic output.
	holeSet := make(map[string]struct{})
	for _, t := range tables {
		for _, h := range t.Holes() {
			holeSet[h] = struct{}{}
		}
	}
	holes := make([]string, 0, len(holeSet))
	for h := range holeSet {
		holes = append(holes, h)
	}
	sort.Strings(holes)

	for _, hole := range holes {
		perHole := make([]*model.IntervalTable, len(tables))
		var boundaries []float64
		for ti, t := range tables {
			ht := t.FilterHole(hole)
			perHole[ti] = ht
			boundaries = append(boundaries, ht.Froms()...)
			boundaries = append(boundaries, ht.Tos()...)
		}
		boundaries = distinctSortedFloats(boundaries)

		srcs := make([]int, len(tables))
		for i := 0; i+1 < len(boundaries); i++ {
			lo, hi := boundaries[i], boundaries[i+1]

			// Gaps covered by no table are outside the union of input
			// ranges and are not emitted.
			covered := false
			for ti, ht := range perHole {
				srcs[ti] = coveringRow(ht, lo, hi)
				if srcs[ti] >= 0 {
					covered = true
				}
			}
			if !covered {
				continue
			}

			if err := out.AppendRow(hole, lo, hi); err != nil {
				return nil, err
			}
			row := out.Len() - 1
			for ti, ht := range perHole {
				if srcs[ti] < 0 {
					continue
				}
				for ci, c := range ht.Columns() {
					outCols[ti][ci].Set(row, c.Values[srcs[ti]])
				}
			}
		}
	}
	return out, nil
}

// coveringRow returns the first record of the table fully covering
// [lo, hi), or -1.
func coveringRow(t *model.IntervalTable, lo, hi float64) int {
	from, to := t.Froms(), t.Tos()
	for i := range from {
		if from[i] <= lo && to[i] >= hi {
			return i
		}
	}
	return -1
}

func distinctSortedFloats(vs []float64) []float64 {
	sort.Float64s(vs)
	out := vs[:0]
	for i, v := range vs {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
