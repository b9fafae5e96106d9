package drillhole

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepthInterpolatorAt(t *testing.T) {
	t.Parallel()

	di, err := NewDepthInterpolator(
		[]float64{0, 10},
		[]Series{{Name: "x", Values: []float64{0, 100}}},
	)
	require.NoError(t, err)

	out, err := di.At([]float64{0, 5, 10})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 0, out[0].Values[0], 1e-12)
	assert.InDelta(t, 50, out[0].Values[1], 1e-12)
	assert.InDelta(t, 100, out[0].Values[2], 1e-12)
}

func TestDepthInterpolatorFlatOutsideRange(t *testing.T) {
	t.Parallel()

	di, err := NewDepthInterpolator(
		[]float64{5, 10},
		[]Series{{Name: "x", Values: []float64{1, 2}}},
	)
	require.NoError(t, err)

	xs, err := di.Column("x", []float64{0, 20})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, xs)
}

func TestDepthInterpolatorStrictBounds(t *testing.T) {
	t.Parallel()

	di, err := NewDepthInterpolator(
		[]float64{5, 10},
		[]Series{{Name: "x", Values: []float64{1, 2}}},
		WithStrictBounds(),
	)
	require.NoError(t, err)

	_, err = di.At([]float64{4})
	require.ErrorIs(t, err, ErrBoundsExceeded)
	_, err = di.Column("x", []float64{11})
	require.ErrorIs(t, err, ErrBoundsExceeded)

	xs, err := di.Column("x", []float64{5, 10})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, xs)
}

func TestDepthInterpolatorDropsIncompleteRows(t *testing.T) {
	t.Parallel()

	di, err := NewDepthInterpolator(
		[]float64{0, 5, 10},
		[]Series{{Name: "x", Values: []float64{0, math.NaN(), 10}}},
	)
	require.NoError(t, err)

	// The NaN row at depth 5 is dropped, so 5 interpolates over [0, 10].
	xs, err := di.Column("x", []float64{5})
	require.NoError(t, err)
	assert.InDelta(t, 5, xs[0], 1e-12)
}

func TestDepthInterpolatorUnsortedDepths(t *testing.T) {
	t.Parallel()

	di, err := NewDepthInterpolator(
		[]float64{10, 0},
		[]Series{{Name: "x", Values: []float64{100, 0}}},
	)
	require.NoError(t, err)

	xs, err := di.Column("x", []float64{5})
	require.NoError(t, err)
	assert.InDelta(t, 50, xs[0], 1e-12)
}

func TestDepthInterpolatorErrors(t *testing.T) {
	t.Parallel()

	t.Run("no depths", func(t *testing.T) {
		t.Parallel()
		_, err := NewDepthInterpolator(nil, nil)
		require.Error(t, err)
	})

	t.Run("length mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := NewDepthInterpolator([]float64{0, 1}, []Series{{Name: "x", Values: []float64{1}}})
		require.Error(t, err)
	})

	t.Run("all rows incomplete", func(t *testing.T) {
		t.Parallel()
		_, err := NewDepthInterpolator([]float64{0}, []Series{{Name: "x", Values: []float64{math.NaN()}}})
		require.Error(t, err)
	})

	t.Run("unknown column", func(t *testing.T) {
		t.Parallel()
		di, err := NewDepthInterpolator([]float64{0}, []Series{{Name: "x", Values: []float64{1}}})
		require.NoError(t, err)
		_, err = di.Column("y", []float64{0})
		require.Error(t, err)
	})
}
