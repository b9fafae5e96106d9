package drillhole

import (
	"fmt"
	"math"

	"github.com/loopgeo/drillhole/domain/model"
)

// Point is a position in world coordinates.
type Point struct {
	X float64
	Y float64
	Z float64
}

// TraceSample is one desurveyed sample along a hole. From is the position
// at the sample depth, To the position one step further and Mid the
// position half a step further, so a sample can be read as a point or as
// the centre of a depth-step cell. The canonical x/y/z of a sample is Mid.
type TraceSample struct {
	Depth       float64
	Azimuth     float64
	Inclination float64
	From        Point
	To          Point
	Mid         Point
}

// Trace is the desurveyed 3D representation of a hole. It is derived
// data: recomputed on demand from collar, survey and target depths, and
// never persisted.
type Trace struct {
	HoleID  string
	Samples []TraceSample
}

// Len returns the number of samples.
func (t *Trace) Len() int { return len(t.Samples) }

// Depths returns the sample depths.
func (t *Trace) Depths() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Depth
	}
	return out
}

// Xs returns the canonical (mid) x coordinates.
func (t *Trace) Xs() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Mid.X
	}
	return out
}

// Ys returns the canonical (mid) y coordinates.
func (t *Trace) Ys() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Mid.Y
	}
	return out
}

// Zs returns the canonical (mid) z coordinates.
func (t *Trace) Zs() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Mid.Z
	}
	return out
}

// PathLength returns the cumulative euclidean length of the trace
// measured over the sample (from) positions.
func (t *Trace) PathLength() float64 {
	var total float64
	for i := 1; i < len(t.Samples); i++ {
		a, b := t.Samples[i-1].From, t.Samples[i].From
		total += math.Sqrt((b.X-a.X)*(b.X-a.X) + (b.Y-a.Y)*(b.Y-a.Y) + (b.Z-a.Z)*(b.Z-a.Z))
	}
	return total
}

// TargetDepths selects the depths a hole is desurveyed at: either a
// regular grid built from a step size, or an explicit ascending array.
type TargetDepths struct {
	step   float64
	depths []float64
}

// StepDepths targets a regular grid 0, step, 2*step, ... up to but
// excluding the hole's total depth.
func StepDepths(step float64) TargetDepths {
	return TargetDepths{step: step}
}

// ExplicitDepths targets the given ascending depths.
func ExplicitDepths(depths []float64) TargetDepths {
	return TargetDepths{depths: depths}
}

// resolve materializes the target depths for a hole.
func (td TargetDepths) resolve(totalDepth float64) ([]float64, error) {
	if td.depths != nil {
		return td.depths, nil
	}
	if td.step <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidStep, td.step)
	}
	var out []float64
	for i := 0; ; i++ {
		d := float64(i) * td.step
		if d >= totalDepth {
			break
		}
		out = append(out, d)
	}
	return out, nil
}

// stepAt returns the step used for the to/mid variants of sample i. With
// a regular grid this is the grid step; with explicit depths it is the
// spacing to the next sample (the last sample reuses the previous
// spacing).
func (td TargetDepths) stepAt(depths []float64, i int) float64 {
	if td.step > 0 {
		return td.step
	}
	switch {
	case len(depths) < 2:
		return 0
	case i < len(depths)-1:
		return depths[i+1] - depths[i]
	default:
		return depths[i] - depths[i-1]
	}
}

// Desurvey converts a collar and its survey stations into a 3D trace
// sampled at the target depths, using the minimum curvature method.
//
// Stations need not be pre-sorted. Azimuth and inclination are linearly
// interpolated onto the target depths, holding the nearest station's
// value outside the surveyed range; a single station gives a constant
// orientation. The function is pure: inputs are never mutated.
func Desurvey(cfg model.Config, collar model.Collar, survey []model.SurveyStation, target TargetDepths) (*Trace, error) {
	if len(survey) == 0 {
		return nil, fmt.Errorf("%w: hole %q", ErrEmptySurvey, collar.HoleID)
	}
	depths, err := target.resolve(collar.TotalDepth)
	if err != nil {
		return nil, fmt.Errorf("desurvey hole %q: %w", collar.HoleID, err)
	}

	stations := make([]model.SurveyStation, len(survey))
	copy(stations, survey)
	model.SortStations(stations)

	stDepth := make([]float64, len(stations))
	stAzi := make([]float64, len(stations))
	stIncl := make([]float64, len(stations))
	for i, s := range stations {
		stDepth[i] = s.Depth
		stAzi[i] = s.Azimuth
		stIncl[i] = cfg.Inclination(s.Dip)
	}

	n := len(depths)
	trace := &Trace{HoleID: collar.HoleID, Samples: make([]TraceSample, n)}
	for i, d := range depths {
		trace.Samples[i] = TraceSample{
			Depth:       d,
			Azimuth:     lerpAt(stDepth, stAzi, d),
			Inclination: lerpAt(stDepth, stIncl, d),
		}
	}

	// Minimum curvature: accumulate local offsets pairwise from the collar.
	var sx, sy, sz float64
	for i := 0; i < n; i++ {
		if i > 0 {
			p, q := &trace.Samples[i-1], &trace.Samples[i]
			cl := q.Depth - p.Depth
			i1, i2 := p.Inclination, q.Inclination
			a1, a2 := p.Azimuth, q.Azimuth
			dl := math.Acos(clamp(math.Cos(i2-i1)-math.Sin(i1)*math.Sin(i2)*(1-math.Cos(a2-a1)), -1, 1))
			rf := 1.0
			if dl != 0 {
				rf = math.Tan(dl/2) * (2 / dl)
			}
			sx += (math.Sin(i1)*math.Sin(a1) + math.Sin(i2)*math.Sin(a2)) * (rf * cl / 2)
			sy += (math.Sin(i1)*math.Cos(a1) + math.Sin(i2)*math.Cos(a2)) * (rf * cl / 2)
			sz += (math.Cos(i1) + math.Cos(i2)) * (rf * cl / 2)
		}
		step := target.stepAt(depths, i)
		s := &trace.Samples[i]
		s.From = Point{X: collar.X + sx, Y: collar.Y + sy, Z: collar.Z - sz}
		s.To = Point{X: s.From.X + step, Y: s.From.Y + step, Z: s.From.Z - step}
		s.Mid = Point{X: s.From.X + step/2, Y: s.From.Y + step/2, Z: s.From.Z - step/2}
	}
	return trace, nil
}

// lerpAt linearly interpolates ys over xs at x, holding the endpoint
// value outside the range. xs must be sorted ascending; equal adjacent
// xs fall back to the left value.
func lerpAt(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	if xs[hi] == xs[lo] {
		return ys[lo]
	}
	t := (x - xs[lo]) / (xs[hi] - xs[lo])
	return ys[lo] + t*(ys[hi]-ys[lo])
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
