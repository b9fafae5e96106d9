package drillhole

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopgeo/drillhole/domain/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testDatabase builds a two-hole database with vertical surveys so
// positions are easy to reason about.
func testDatabase(t *testing.T) *DrillholeDatabase {
	t.Helper()
	collars := []model.Collar{
		{HoleID: "DH1", X: 0, Y: 0, Z: 0, TotalDepth: 10},
		{HoleID: "DH2", X: 100, Y: 50, Z: 20, TotalDepth: 20},
	}
	surveys := map[string][]model.SurveyStation{
		"DH1": {{Depth: 0, Azimuth: 0, Dip: downDip}},
		"DH2": {{Depth: 0, Azimuth: 0, Dip: downDip}},
	}
	db, err := NewDatabase(model.DefaultConfig(), collars, surveys, WithLogger(quietLogger()))
	require.NoError(t, err)
	return db
}

func addLith(t *testing.T, db *DrillholeDatabase, name string, rows []struct {
	hole     string
	from, to float64
	lith     string
}) {
	t.Helper()
	tbl := model.NewIntervalTable(name)
	col, err := tbl.AddColumn("lith", model.ColumnTypeText)
	require.NoError(t, err)
	for i, r := range rows {
		require.NoError(t, tbl.AppendRow(r.hole, r.from, r.to))
		col.Set(i, model.Text(r.lith))
	}
	require.NoError(t, db.AddIntervalTable(name, tbl))
}

func TestNewDatabaseValidation(t *testing.T) {
	t.Parallel()

	t.Run("duplicate collar", func(t *testing.T) {
		t.Parallel()
		collars := []model.Collar{
			{HoleID: "DH1", TotalDepth: 10},
			{HoleID: "DH1", TotalDepth: 20},
		}
		_, err := NewDatabase(model.DefaultConfig(), collars, nil)
		require.ErrorIs(t, err, model.ErrDuplicateHoleID)
	})

	t.Run("survey for unknown hole", func(t *testing.T) {
		t.Parallel()
		collars := []model.Collar{{HoleID: "DH1", TotalDepth: 10}}
		surveys := map[string][]model.SurveyStation{
			"DH9": {{Depth: 0}},
		}
		_, err := NewDatabase(model.DefaultConfig(), collars, surveys)
		require.ErrorIs(t, err, ErrUnknownHole)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()
		cfg := model.DefaultConfig()
		cfg.FromCol = ""
		_, err := NewDatabase(cfg, nil, nil)
		require.ErrorIs(t, err, model.ErrInvalidConfig)
	})
}

func TestNewDatabaseConvertsDegrees(t *testing.T) {
	t.Parallel()

	collars := []model.Collar{{HoleID: "DH1", TotalDepth: 100}}
	surveys := map[string][]model.SurveyStation{
		"DH1": {
			{Depth: 0, Azimuth: 0, Dip: -90},
			{Depth: 50, Azimuth: 180, Dip: -45},
			{Depth: 100, Azimuth: 350, Dip: 0},
		},
	}
	db, err := NewDatabase(model.DefaultConfig(), collars, surveys, WithLogger(quietLogger()))
	require.NoError(t, err)

	stations, err := db.Survey("DH1")
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, stations[1].Azimuth, 1e-9)
	assert.InDelta(t, -math.Pi/4, stations[1].Dip, 1e-9)

	// The caller's slice stays in degrees.
	assert.Equal(t, 180.0, surveys["DH1"][1].Azimuth)
}

func TestDatabaseAccessors(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	assert.Equal(t, []string{"DH1", "DH2"}, db.Holes())

	c, err := db.Collar("DH2")
	require.NoError(t, err)
	assert.Equal(t, 20.0, c.TotalDepth)

	_, err = db.Collar("DH9")
	require.ErrorIs(t, err, ErrUnknownHole)
	_, err = db.Survey("DH9")
	require.ErrorIs(t, err, ErrUnknownHole)
	_, err = db.IntervalTable("absent")
	require.ErrorIs(t, err, ErrUnknownTable)
}

func TestDatabaseExtent(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	minPt, maxPt, ok := db.Extent()
	require.True(t, ok)
	assert.Equal(t, Point{X: 0, Y: 0, Z: 0}, minPt)
	assert.Equal(t, Point{X: 100, Y: 50, Z: 20}, maxPt)

	empty, err := NewDatabase(model.DefaultConfig(), nil, nil)
	require.NoError(t, err)
	_, _, ok = empty.Extent()
	assert.False(t, ok)
}

func TestDatabaseTableRegistration(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 0, 5, "A"},
	})

	assert.Equal(t, []string{"geology"}, db.IntervalTableNames())

	t.Run("unknown hole rejected", func(t *testing.T) {
		bad := model.NewIntervalTable("bad")
		require.NoError(t, bad.AppendRow("DH9", 0, 1))
		require.ErrorIs(t, db.AddIntervalTable("bad", bad), ErrUnknownHole)

		badPoints := model.NewPointTable("bad")
		badPoints.AppendRow("DH9", 1)
		require.ErrorIs(t, db.AddPointTable("bad", badPoints), ErrUnknownHole)
	})
}

func TestDatabaseValidateDepthLimits(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 0, 12, "A"}, // DH1 total depth is 10
	})

	require.ErrorIs(t, db.Validate(), ErrDepthExceedsTotal)
}

func TestHoleView(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 0, 5, "A"},
		{"DH2", 0, 8, "B"},
	})

	h, err := db.Hole("DH1")
	require.NoError(t, err)
	assert.Equal(t, "DH1", h.ID())
	assert.Equal(t, []string{"geology"}, h.IntervalTableNames())
	assert.Empty(t, h.PointTableNames())

	ht, err := h.IntervalTable("geology")
	require.NoError(t, err)
	require.Equal(t, 1, ht.Len())
	assert.Equal(t, model.Text("A"), ht.Column("lith").Values[0])

	tr, err := h.Trace(StepDepths(1))
	require.NoError(t, err)
	assert.Equal(t, 10, tr.Len())

	_, err = db.Hole("DH9")
	require.ErrorIs(t, err, ErrUnknownHole)
}

func TestHoleDepthAt(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	h, err := db.Hole("DH1")
	require.NoError(t, err)

	// The mid position of the sample at depth 3 on a one-metre grid.
	d, err := h.DepthAt(0.5, 0.5, -3.5)
	require.NoError(t, err)
	assert.InDelta(t, 3, d, 1e-9)
}

func TestDesurveyIntervals(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 0, 4, "A"},
		{"DH1", 4, 8, "B"},
	})

	out, herrs, err := db.DesurveyIntervals("geology")
	require.NoError(t, err)
	assert.Empty(t, herrs)
	require.Equal(t, 2, out.Len())

	for _, name := range []string{
		"x_from", "y_from", "z_from",
		"x_to", "y_to", "z_to",
		"x_mid", "y_mid", "z_mid",
		"depth_mid",
	} {
		require.NotNil(t, out.Column(name), "missing column %s", name)
	}

	mids := out.Column("depth_mid").Floats()
	assert.InDelta(t, 2, mids[0], 1e-9)
	assert.InDelta(t, 6, mids[1], 1e-9)

	// Vertical hole sampled at 4 m spacing: canonical z at depth d is
	// -(d + 2).
	zmids := out.Column("z_mid").Floats()
	assert.InDelta(t, -4, zmids[0], 1e-9)
	assert.InDelta(t, -8, zmids[1], 1e-9)
	assert.Greater(t, zmids[0], zmids[1])

	t.Run("unknown table", func(t *testing.T) {
		_, _, err := db.DesurveyIntervals("absent")
		require.ErrorIs(t, err, ErrUnknownTable)
	})
}

func TestDesurveyIntervalsPartialFailure(t *testing.T) {
	t.Parallel()

	collars := []model.Collar{
		{HoleID: "DH1", TotalDepth: 10},
		{HoleID: "DH3", TotalDepth: 10}, // no survey stations
	}
	surveys := map[string][]model.SurveyStation{
		"DH1": {{Depth: 0, Azimuth: 0, Dip: downDip}},
	}
	db, err := NewDatabase(model.DefaultConfig(), collars, surveys, WithLogger(quietLogger()))
	require.NoError(t, err)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 0, 5, "A"},
		{"DH3", 0, 5, "C"},
	})

	out, herrs, err := db.DesurveyIntervals("geology")
	require.NoError(t, err)
	require.Len(t, herrs, 1)
	assert.Equal(t, "DH3", herrs[0].HoleID)
	require.ErrorIs(t, herrs[0], ErrEmptySurvey)

	// The healthy hole still produced rows.
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "DH1", out.HoleIDs()[0])
}

func TestDesurveyPoints(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	tbl := model.NewPointTable("structure")
	col, err := tbl.AddColumn("alpha", model.ColumnTypeReal)
	require.NoError(t, err)
	tbl.AppendRow("DH1", 0)
	col.Set(0, model.Real(45))
	tbl.AppendRow("DH1", 5)
	col.Set(1, model.Real(60))
	require.NoError(t, db.AddPointTable("structure", tbl))

	out, herrs, err := db.DesurveyPoints("structure")
	require.NoError(t, err)
	assert.Empty(t, herrs)
	require.Equal(t, 2, out.Len())

	// Explicit depths {0, 5} give a 5 m spacing, so canonical z at depth
	// d is -(d + 2.5).
	zs := out.Column("z").Floats()
	assert.InDelta(t, -2.5, zs[0], 1e-9)
	assert.InDelta(t, -7.5, zs[1], 1e-9)
	assert.Equal(t, model.Real(45), out.Column("alpha").Values[0])
}

func TestDatabaseRegularizeTable(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH2", 0, 6, "B"},
		{"DH1", 0, 4, "A"},
	})

	out, herrs, err := db.RegularizeTable("geology", []string{"lith"}, 2)
	require.NoError(t, err)
	assert.Empty(t, herrs)
	require.Equal(t, 5, out.Len())

	// Output concatenates per-hole grids in sorted hole order.
	assert.Equal(t, []string{"DH1", "DH1", "DH2", "DH2", "DH2"}, out.HoleIDs())
	assert.Equal(t, model.Text("A"), out.Column("lith").Values[0])
	assert.Equal(t, model.Text("B"), out.Column("lith").Values[2])
}

func TestDatabaseMergeTables(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 0, 10, "A"},
	})
	addLith(t, db, "alteration", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 5, 10, "B"},
	})

	out, err := db.MergeTables("merged", "geology", "alteration")
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	require.NotNil(t, out.Column("lith"))
	require.NotNil(t, out.Column("lith_1"))

	_, err = db.MergeTables("merged", "geology", "absent")
	require.ErrorIs(t, err, ErrUnknownTable)
}

func TestDatabaseResample(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 0, 10, "A"},
	})
	pts := model.NewPointTable("structure")
	col, err := pts.AddColumn("lith", model.ColumnTypeText)
	require.NoError(t, err)
	pts.AppendRow("DH1", 4)
	col.Set(0, model.Text("P"))
	require.NoError(t, db.AddPointTable("structure", pts))

	out, herrs, err := db.Resample([]string{"lith"}, 4)
	require.NoError(t, err)
	assert.Empty(t, herrs)

	// DH1 total depth 10 at step 4: depths 0, 4, 8.
	require.Equal(t, 3, out.Len())
	assert.Equal(t, []float64{0, 4, 8}, out.Depths())

	require.NotNil(t, out.Column("x"))
	require.NotNil(t, out.Column("z"))

	lith := out.Column("lith")
	require.NotNil(t, lith)
	assert.Equal(t, model.Text("A"), lith.Values[0])
	assert.Equal(t, model.Text("A"), lith.Values[2])

	// The point table's colliding column is suffixed and aligned by
	// exact depth.
	lith1 := out.Column("lith_1")
	require.NotNil(t, lith1)
	assert.True(t, lith1.Values[0].IsNull())
	assert.Equal(t, model.Text("P"), lith1.Values[1])

	t.Run("invalid step", func(t *testing.T) {
		_, _, err := db.Resample([]string{"lith"}, 0)
		require.ErrorIs(t, err, ErrInvalidStep)
	})
}

func TestDatabaseFilter(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 0, 10, "A"},
		{"DH2", 0, 20, "B"},
	})
	pts := model.NewPointTable("structure")
	pts.AppendRow("DH1", 1)
	pts.AppendRow("DH1", 7)
	require.NoError(t, db.AddPointTable("structure", pts))

	t.Run("by hole", func(t *testing.T) {
		t.Parallel()
		out, err := db.Filter(FilterHoles("DH2"))
		require.NoError(t, err)
		assert.Equal(t, []string{"DH2"}, out.Holes())
		tbl, err := out.IntervalTable("geology")
		require.NoError(t, err)
		require.Equal(t, 1, tbl.Len())
		assert.Equal(t, model.Text("B"), tbl.Column("lith").Values[0])
	})

	t.Run("by extent", func(t *testing.T) {
		t.Parallel()
		out, err := db.Filter(FilterExtent(Point{X: -1, Y: -1, Z: -1}, Point{X: 1, Y: 1, Z: 1}))
		require.NoError(t, err)
		assert.Equal(t, []string{"DH1"}, out.Holes())
	})

	t.Run("by collar predicate", func(t *testing.T) {
		t.Parallel()
		out, err := db.Filter(FilterCollars(func(c model.Collar) bool {
			return c.TotalDepth > 15
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"DH2"}, out.Holes())
	})

	t.Run("by depth clips intervals", func(t *testing.T) {
		t.Parallel()
		out, err := db.Filter(FilterDepth(2, 5))
		require.NoError(t, err)
		tbl, err := out.IntervalTable("geology")
		require.NoError(t, err)
		require.Equal(t, 2, tbl.Len())
		assert.Equal(t, []float64{2, 2}, tbl.Froms())
		assert.Equal(t, []float64{5, 5}, tbl.Tos())

		p, err := out.PointTable("structure")
		require.NoError(t, err)
		require.Equal(t, 0, p.Len())
	})
}
