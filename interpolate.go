package drillhole

import (
	"fmt"
	"math"
	"sort"
)

// Series is a named float column aligned to a depth axis.
type Series struct {
	Name   string
	Values []float64
}

// DepthInterpolator performs per-column linear interpolation along a
// monotonic depth axis. Build it once from a reference table, then query
// arbitrary depths. Rows holding a NaN in any column are dropped before
// fitting. Outside the fitted range values are held flat at the nearest
// boundary by default; WithStrictBounds makes out-of-range queries an
// error instead.
type DepthInterpolator struct {
	depths []float64
	series []Series
	strict bool
}

// InterpolatorOption configures a DepthInterpolator.
type InterpolatorOption func(*DepthInterpolator)

// WithStrictBounds makes queries outside the fitted depth range fail
// with ErrBoundsExceeded instead of filling flat.
func WithStrictBounds() InterpolatorOption {
	return func(di *DepthInterpolator) { di.strict = true }
}

// NewDepthInterpolator fits an interpolator over the given depth axis and
// value series. Every series must have the same length as depths.
func NewDepthInterpolator(depths []float64, series []Series, opts ...InterpolatorOption) (*DepthInterpolator, error) {
	if len(depths) == 0 {
		return nil, fmt.Errorf("drillhole: interpolator needs at least one depth")
	}
	for _, s := range series {
		if len(s.Values) != len(depths) {
			return nil, fmt.Errorf("drillhole: series %q has %d values for %d depths", s.Name, len(s.Values), len(depths))
		}
	}

	// Drop rows with a NaN depth or a NaN in any column.
	keep := make([]int, 0, len(depths))
	for i, d := range depths {
		if math.IsNaN(d) {
			continue
		}
		ok := true
		for _, s := range series {
			if math.IsNaN(s.Values[i]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("drillhole: interpolator has no complete rows")
	}
	sort.SliceStable(keep, func(a, b int) bool { return depths[keep[a]] < depths[keep[b]] })

	di := &DepthInterpolator{
		depths: make([]float64, len(keep)),
		series: make([]Series, len(series)),
	}
	for j, s := range series {
		di.series[j] = Series{Name: s.Name, Values: make([]float64, len(keep))}
		for i, k := range keep {
			di.series[j].Values[i] = s.Values[k]
		}
	}
	for i, k := range keep {
		di.depths[i] = depths[k]
	}
	for _, opt := range opts {
		opt(di)
	}
	return di, nil
}

// At interpolates every column at the given depths.
func (di *DepthInterpolator) At(depths []float64) ([]Series, error) {
	if di.strict {
		lo, hi := di.depths[0], di.depths[len(di.depths)-1]
		for _, d := range depths {
			if d < lo || d > hi {
				return nil, fmt.Errorf("%w: %g outside [%g, %g]", ErrBoundsExceeded, d, lo, hi)
			}
		}
	}
	out := make([]Series, len(di.series))
	for j, s := range di.series {
		out[j] = Series{Name: s.Name, Values: make([]float64, len(depths))}
		for i, d := range depths {
			out[j].Values[i] = lerpAt(di.depths, s.Values, d)
		}
	}
	return out, nil
}

// Column interpolates a single named column at the given depths.
func (di *DepthInterpolator) Column(name string, depths []float64) ([]float64, error) {
	for _, s := range di.series {
		if s.Name != name {
			continue
		}
		if di.strict {
			lo, hi := di.depths[0], di.depths[len(di.depths)-1]
			for _, d := range depths {
				if d < lo || d > hi {
					return nil, fmt.Errorf("%w: %g outside [%g, %g]", ErrBoundsExceeded, d, lo, hi)
				}
			}
		}
		out := make([]float64, len(depths))
		for i, d := range depths {
			out[i] = lerpAt(di.depths, s.Values, d)
		}
		return out, nil
	}
	return nil, fmt.Errorf("drillhole: interpolator has no column %q", name)
}

// traceInterpolator builds an interpolator over a trace's canonical
// x/y/z columns, used to project coordinates onto arbitrary depths
// without a second minimum-curvature pass.
func traceInterpolator(tr *Trace) (*DepthInterpolator, error) {
	return NewDepthInterpolator(tr.Depths(), []Series{
		{Name: "x", Values: tr.Xs()},
		{Name: "y", Values: tr.Ys()},
		{Name: "z", Values: tr.Zs()},
	})
}
