package drillhole

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/loopgeo/drillhole/domain/model"
)

// SQLite persistence lays a database out as one table set per project,
// so several projects can share a file:
//
//	<project>_collar   holeid, x, y, z, total_depth
//	<project>_survey   holeid, depth, azimuth, dip (radians)
//	<project>_tables   registry of attribute tables and their columns
//	<project>_t_<name> one table per registered attribute table
//
// Attribute column types are recorded in the registry, so a round trip
// preserves the text/real distinction exactly.

// SaveSQLite writes the database into the SQLite file at path under the
// given project name, replacing any previous data for that project.
func SaveSQLite(ctx context.Context, path, project string, db *DrillholeDatabase) error {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = conn.Close() }()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := saveSQLiteTx(ctx, tx, project, db); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func saveSQLiteTx(ctx context.Context, tx *sql.Tx, project string, db *DrillholeDatabase) error {
	// Replace any previous data for this project. LIKE wildcards in the
	// project name must be escaped, or a project like "no" would match
	// and drop "north"'s tables.
	pattern := strings.NewReplacer(`\`, `\\`, `_`, `\_`, `%`, `\%`).Replace(project) + `\_%`
	var stale []string
	rows, err := tx.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE ? ESCAPE '\'`, pattern)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return err
		}
		stale = append(stale, name)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	for _, name := range stale {
		if _, err := tx.ExecContext(ctx, `DROP TABLE `+quoteIdent(name)); err != nil {
			return fmt.Errorf("drop table %s: %w", name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE %s (holeid TEXT PRIMARY KEY, x REAL, y REAL, z REAL, total_depth REAL)`,
		quoteIdent(project+"_collar"))); err != nil {
		return fmt.Errorf("create collar table: %w", err)
	}
	for _, holeID := range db.Holes() {
		c := db.collars[holeID]
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			`INSERT INTO %s (holeid, x, y, z, total_depth) VALUES (?, ?, ?, ?, ?)`,
			quoteIdent(project+"_collar")), c.HoleID, c.X, c.Y, c.Z, c.TotalDepth); err != nil {
			return fmt.Errorf("insert collar %q: %w", holeID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE %s (holeid TEXT, depth REAL, azimuth REAL, dip REAL)`,
		quoteIdent(project+"_survey"))); err != nil {
		return fmt.Errorf("create survey table: %w", err)
	}
	for _, holeID := range db.Holes() {
		for _, s := range db.surveys[holeID] {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(
				`INSERT INTO %s (holeid, depth, azimuth, dip) VALUES (?, ?, ?, ?)`,
				quoteIdent(project+"_survey")), holeID, s.Depth, s.Azimuth, s.Dip); err != nil {
				return fmt.Errorf("insert survey %q: %w", holeID, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE %s (table_name TEXT, kind TEXT, column_name TEXT, column_type TEXT, position INTEGER)`,
		quoteIdent(project+"_tables"))); err != nil {
		return fmt.Errorf("create registry table: %w", err)
	}

	for _, name := range db.intervalOrder {
		if err := saveIntervalSQLite(ctx, tx, project, name, db.intervals[name]); err != nil {
			return err
		}
	}
	for _, name := range db.pointOrder {
		if err := savePointSQLite(ctx, tx, project, name, db.points[name]); err != nil {
			return err
		}
	}
	return nil
}

func saveIntervalSQLite(ctx context.Context, tx *sql.Tx, project, name string, t *model.IntervalTable) error {
	cols := t.Columns()
	if err := registerColumns(ctx, tx, project, name, "interval", cols); err != nil {
		return err
	}

	defs := []string{"holeid TEXT", "from_depth REAL", "to_depth REAL"}
	for _, c := range cols {
		defs = append(defs, quoteIdent(c.Name)+" "+c.Type.String())
	}
	sqlName := quoteIdent(project + "_t_" + name)
	if _, err := tx.ExecContext(ctx,
		`CREATE TABLE `+sqlName+` (`+strings.Join(defs, ", ")+`)`); err != nil {
		return fmt.Errorf("create table %q: %w", name, err)
	}

	insert := insertStmt(sqlName, 3+len(cols))
	holeIDs, from, to := t.HoleIDs(), t.Froms(), t.Tos()
	for i := range from {
		args := make([]any, 0, 3+len(cols))
		args = append(args, holeIDs[i], from[i], to[i])
		for _, c := range cols {
			args = append(args, sqlArg(c.Values[i]))
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("insert into %q: %w", name, err)
		}
	}
	return nil
}

func savePointSQLite(ctx context.Context, tx *sql.Tx, project, name string, t *model.PointTable) error {
	cols := t.Columns()
	if err := registerColumns(ctx, tx, project, name, "point", cols); err != nil {
		return err
	}

	defs := []string{"holeid TEXT", "depth REAL"}
	for _, c := range cols {
		defs = append(defs, quoteIdent(c.Name)+" "+c.Type.String())
	}
	sqlName := quoteIdent(project + "_t_" + name)
	if _, err := tx.ExecContext(ctx,
		`CREATE TABLE `+sqlName+` (`+strings.Join(defs, ", ")+`)`); err != nil {
		return fmt.Errorf("create table %q: %w", name, err)
	}

	insert := insertStmt(sqlName, 2+len(cols))
	holeIDs, depths := t.HoleIDs(), t.Depths()
	for i := range depths {
		args := make([]any, 0, 2+len(cols))
		args = append(args, holeIDs[i], depths[i])
		for _, c := range cols {
			args = append(args, sqlArg(c.Values[i]))
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("insert into %q: %w", name, err)
		}
	}
	return nil
}

func registerColumns(ctx context.Context, tx *sql.Tx, project, name, kind string, cols []*model.Column) error {
	stmt := fmt.Sprintf(
		`INSERT INTO %s (table_name, kind, column_name, column_type, position) VALUES (?, ?, ?, ?, ?)`,
		quoteIdent(project+"_tables"))
	// Register the table itself even when it has no attribute columns.
	if len(cols) == 0 {
		_, err := tx.ExecContext(ctx, stmt, name, kind, "", "", 0)
		return err
	}
	for i, c := range cols {
		if _, err := tx.ExecContext(ctx, stmt, name, kind, c.Name, c.Type.String(), i); err != nil {
			return fmt.Errorf("register table %q: %w", name, err)
		}
	}
	return nil
}

// OpenSQLite rebuilds a database previously written by SaveSQLite.
func OpenSQLite(ctx context.Context, path, project string, cfg model.Config, opts ...Option) (*DrillholeDatabase, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = conn.Close() }()

	collars, err := loadCollarsSQLite(ctx, conn, project)
	if err != nil {
		return nil, err
	}
	surveys, err := loadSurveysSQLite(ctx, conn, project)
	if err != nil {
		return nil, err
	}
	db, err := NewDatabase(cfg, collars, surveys, opts...)
	if err != nil {
		return nil, err
	}

	specs, err := loadRegistrySQLite(ctx, conn, project)
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if spec.kind == "interval" {
			t, err := loadIntervalSQLite(ctx, conn, project, spec)
			if err != nil {
				return nil, err
			}
			if err := db.AddIntervalTable(spec.name, t); err != nil {
				return nil, err
			}
			continue
		}
		t, err := loadPointSQLite(ctx, conn, project, spec)
		if err != nil {
			return nil, err
		}
		if err := db.AddPointTable(spec.name, t); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func loadCollarsSQLite(ctx context.Context, conn *sql.DB, project string) ([]model.Collar, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(
		`SELECT holeid, x, y, z, total_depth FROM %s ORDER BY holeid`, quoteIdent(project+"_collar")))
	if err != nil {
		return nil, fmt.Errorf("load collars: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var collars []model.Collar
	for rows.Next() {
		var c model.Collar
		if err := rows.Scan(&c.HoleID, &c.X, &c.Y, &c.Z, &c.TotalDepth); err != nil {
			return nil, err
		}
		collars = append(collars, c)
	}
	return collars, rows.Err()
}

func loadSurveysSQLite(ctx context.Context, conn *sql.DB, project string) (map[string][]model.SurveyStation, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(
		`SELECT holeid, depth, azimuth, dip FROM %s ORDER BY holeid, depth`, quoteIdent(project+"_survey")))
	if err != nil {
		return nil, fmt.Errorf("load surveys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	surveys := make(map[string][]model.SurveyStation)
	for rows.Next() {
		var holeID string
		var s model.SurveyStation
		if err := rows.Scan(&holeID, &s.Depth, &s.Azimuth, &s.Dip); err != nil {
			return nil, err
		}
		surveys[holeID] = append(surveys[holeID], s)
	}
	return surveys, rows.Err()
}

type sqliteTableSpec struct {
	name  string
	kind  string
	cols  []string
	types []model.ColumnType
}

func loadRegistrySQLite(ctx context.Context, conn *sql.DB, project string) ([]*sqliteTableSpec, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(
		`SELECT table_name, kind, column_name, column_type FROM %s ORDER BY rowid`,
		quoteIdent(project+"_tables")))
	if err != nil {
		return nil, fmt.Errorf("load table registry: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var specs []*sqliteTableSpec
	byName := make(map[string]*sqliteTableSpec)
	for rows.Next() {
		var name, kind, colName, colType string
		if err := rows.Scan(&name, &kind, &colName, &colType); err != nil {
			return nil, err
		}
		spec, ok := byName[name]
		if !ok {
			spec = &sqliteTableSpec{name: name, kind: kind}
			byName[name] = spec
			specs = append(specs, spec)
		}
		if colName == "" {
			continue
		}
		ct := model.ColumnTypeText
		if colType == model.ColumnTypeReal.String() {
			ct = model.ColumnTypeReal
		}
		spec.cols = append(spec.cols, colName)
		spec.types = append(spec.types, ct)
	}
	return specs, rows.Err()
}

func loadIntervalSQLite(ctx context.Context, conn *sql.DB, project string, spec *sqliteTableSpec) (*model.IntervalTable, error) {
	t := model.NewIntervalTable(spec.name)
	cols := make([]*model.Column, len(spec.cols))
	for i, name := range spec.cols {
		c, err := t.AddColumn(name, spec.types[i])
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	sel := append([]string{"holeid", "from_depth", "to_depth"}, quoteIdents(spec.cols)...)
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY rowid`,
		strings.Join(sel, ", "), quoteIdent(project+"_t_"+spec.name)))
	if err != nil {
		return nil, fmt.Errorf("load table %q: %w", spec.name, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var holeID string
		var from, to float64
		vals := make([]sql.NullString, len(cols))
		dest := []any{&holeID, &from, &to}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if err := t.AppendRow(holeID, from, to); err != nil {
			return nil, err
		}
		row := t.Len() - 1
		for i, c := range cols {
			c.Set(row, scannedValue(vals[i], spec.types[i]))
		}
	}
	return t, rows.Err()
}

func loadPointSQLite(ctx context.Context, conn *sql.DB, project string, spec *sqliteTableSpec) (*model.PointTable, error) {
	t := model.NewPointTable(spec.name)
	cols := make([]*model.Column, len(spec.cols))
	for i, name := range spec.cols {
		c, err := t.AddColumn(name, spec.types[i])
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	sel := append([]string{"holeid", "depth"}, quoteIdents(spec.cols)...)
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY rowid`,
		strings.Join(sel, ", "), quoteIdent(project+"_t_"+spec.name)))
	if err != nil {
		return nil, fmt.Errorf("load table %q: %w", spec.name, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var holeID string
		var depth float64
		vals := make([]sql.NullString, len(cols))
		dest := []any{&holeID, &depth}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		t.AppendRow(holeID, depth)
		row := t.Len() - 1
		for i, c := range cols {
			c.Set(row, scannedValue(vals[i], spec.types[i]))
		}
	}
	return t, rows.Err()
}

// sqlArg converts a value to its database/sql argument; nulls map to NULL.
func sqlArg(v model.Value) any {
	if v.IsNull() {
		return nil
	}
	if v.Type == model.ColumnTypeReal {
		return v.Float()
	}
	return v.Str
}

func scannedValue(v sql.NullString, ct model.ColumnType) model.Value {
	if !v.Valid {
		return model.NullValue(ct)
	}
	return model.ParseValue(v.String, ct)
}

func insertStmt(sqlName string, n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = "?"
	}
	return `INSERT INTO ` + sqlName + ` VALUES (` + strings.Join(marks, ", ") + `)`
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdents(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return out
}
