package drillhole

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopgeo/drillhole/domain/model"
)

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	db := testDatabase(t)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 0, 5, "granite"},
		{"DH2", 0, 8, "basalt"},
	})

	assay := model.NewIntervalTable("assay")
	au, err := assay.AddColumn("au", model.ColumnTypeReal)
	require.NoError(t, err)
	require.NoError(t, assay.AppendRow("DH1", 0, 2))
	au.Set(0, model.Real(1.5))
	require.NoError(t, assay.AppendRow("DH1", 2, 5))
	// Row 1 keeps its null assay value.
	require.NoError(t, db.AddIntervalTable("assay", assay))

	pts := model.NewPointTable("structure")
	alpha, err := pts.AddColumn("alpha", model.ColumnTypeReal)
	require.NoError(t, err)
	pts.AppendRow("DH2", 12.5)
	alpha.Set(0, model.Real(45))
	require.NoError(t, db.AddPointTable("structure", pts))

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "project.sqlite")
	require.NoError(t, SaveSQLite(ctx, path, "mine", db))

	got, err := OpenSQLite(ctx, path, "mine", db.Config(), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, db.Holes(), got.Holes())
	origCollar, err := db.Collar("DH2")
	require.NoError(t, err)
	gotCollar, err := got.Collar("DH2")
	require.NoError(t, err)
	assert.Equal(t, origCollar, gotCollar)

	origSurvey, err := db.Survey("DH1")
	require.NoError(t, err)
	gotSurvey, err := got.Survey("DH1")
	require.NoError(t, err)
	assert.Equal(t, origSurvey, gotSurvey)

	// Registration order survives.
	assert.Equal(t, []string{"geology", "assay"}, got.IntervalTableNames())
	assert.Equal(t, []string{"structure"}, got.PointTableNames())

	tbl, err := got.IntervalTable("assay")
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, model.ColumnTypeReal, tbl.Column("au").Type)
	assert.Equal(t, model.Real(1.5), tbl.Column("au").Values[0])
	assert.True(t, tbl.Column("au").Values[1].IsNull())

	geo, err := got.IntervalTable("geology")
	require.NoError(t, err)
	assert.Equal(t, model.Text("granite"), geo.Column("lith").Values[0])

	p, err := got.PointTable("structure")
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	assert.Equal(t, 12.5, p.Depths()[0])
	assert.Equal(t, model.Real(45), p.Column("alpha").Values[0])
}

func TestSaveSQLiteReplacesProject(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "project.sqlite")

	db := testDatabase(t)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 0, 5, "granite"},
	})
	require.NoError(t, SaveSQLite(ctx, path, "mine", db))

	// A second save of the same project replaces the first, with one
	// table fewer.
	smaller := testDatabase(t)
	require.NoError(t, SaveSQLite(ctx, path, "mine", smaller))

	got, err := OpenSQLite(ctx, path, "mine", smaller.Config(), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Empty(t, got.IntervalTableNames())
}

func TestSQLiteProjectsAreIndependent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.sqlite")

	db := testDatabase(t)
	require.NoError(t, SaveSQLite(ctx, path, "north", db))
	require.NoError(t, SaveSQLite(ctx, path, "south", db))

	north, err := OpenSQLite(ctx, path, "north", db.Config(), WithLogger(quietLogger()))
	require.NoError(t, err)
	south, err := OpenSQLite(ctx, path, "south", db.Config(), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, north.Holes(), south.Holes())
}

func TestSaveSQLitePrefixProjectsDoNotCollide(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.sqlite")

	db := testDatabase(t)
	addLith(t, db, "geology", []struct {
		hole     string
		from, to float64
		lith     string
	}{
		{"DH1", 0, 5, "granite"},
	})
	require.NoError(t, SaveSQLite(ctx, path, "north", db))

	// "no" is a prefix of "north"; saving it must not touch north's
	// tables.
	require.NoError(t, SaveSQLite(ctx, path, "no", testDatabase(t)))

	north, err := OpenSQLite(ctx, path, "north", db.Config(), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, db.Holes(), north.Holes())
	tbl, err := north.IntervalTable("geology")
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, model.Text("granite"), tbl.Column("lith").Values[0])
}

func TestOpenSQLiteMissingProject(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "empty.sqlite")

	db := testDatabase(t)
	require.NoError(t, SaveSQLite(ctx, path, "mine", db))

	_, err := OpenSQLite(ctx, path, "absent", db.Config())
	require.Error(t, err)
}
