package drillhole

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/loopgeo/drillhole/domain/model"
)

// DumpDatabase exports every table of the database to dir: the collar,
// the survey and each registered attribute table, one file per table
// named after it.
func DumpDatabase(db *DrillholeDatabase, dir string, opts DumpOptions) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := func(name string) string {
		return filepath.Join(dir, name+opts.FileExtension())
	}
	if err := WriteCollars(path("collar"), db.Config(), db, opts); err != nil {
		return err
	}
	if err := WriteSurveys(path("survey"), db.Config(), db, opts); err != nil {
		return err
	}
	for _, name := range db.IntervalTableNames() {
		t, _ := db.IntervalTable(name)
		if err := WriteIntervalTable(path(name), db.Config(), t, opts); err != nil {
			return err
		}
	}
	for _, name := range db.PointTableNames() {
		t, _ := db.PointTable(name)
		if err := WritePointTable(path(name), db.Config(), t, opts); err != nil {
			return err
		}
	}
	return nil
}

// WriteCollars writes the collar records of the database.
func WriteCollars(path string, cfg model.Config, db *DrillholeDatabase, opts DumpOptions) error {
	rows := [][]string{{cfg.HoleIDCol, cfg.XCol, cfg.YCol, cfg.ZCol, cfg.TotalDepthCol}}
	for _, holeID := range db.Holes() {
		c, err := db.Collar(holeID)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			c.HoleID, formatFloat(c.X), formatFloat(c.Y), formatFloat(c.Z), formatFloat(c.TotalDepth),
		})
	}
	return writeRows(path, rows, opts)
}

// WriteSurveys writes the survey stations of the database. Angles are
// written in radians, matching the in-memory representation.
func WriteSurveys(path string, cfg model.Config, db *DrillholeDatabase, opts DumpOptions) error {
	rows := [][]string{{cfg.HoleIDCol, cfg.DepthCol, cfg.AzimuthCol, cfg.DipCol}}
	for _, holeID := range db.Holes() {
		stations, err := db.Survey(holeID)
		if err != nil {
			return err
		}
		for _, s := range stations {
			rows = append(rows, []string{
				holeID, formatFloat(s.Depth), formatFloat(s.Azimuth), formatFloat(s.Dip),
			})
		}
	}
	return writeRows(path, rows, opts)
}

// WriteIntervalTable writes an interval table with its hole id, from and
// to columns named per the configuration.
func WriteIntervalTable(path string, cfg model.Config, t *model.IntervalTable, opts DumpOptions) error {
	header := []string{cfg.HoleIDCol, cfg.FromCol, cfg.ToCol}
	cols := t.Columns()
	for _, c := range cols {
		header = append(header, c.Name)
	}
	rows := [][]string{header}
	holeIDs, from, to := t.HoleIDs(), t.Froms(), t.Tos()
	for i := range from {
		row := []string{holeIDs[i], formatFloat(from[i]), formatFloat(to[i])}
		for _, c := range cols {
			row = append(row, c.Values[i].String())
		}
		rows = append(rows, row)
	}
	return writeRows(path, rows, opts)
}

// WritePointTable writes a point table with its hole id and depth
// columns named per the configuration.
func WritePointTable(path string, cfg model.Config, t *model.PointTable, opts DumpOptions) error {
	header := []string{cfg.HoleIDCol, cfg.DepthCol}
	cols := t.Columns()
	for _, c := range cols {
		header = append(header, c.Name)
	}
	rows := [][]string{header}
	holeIDs, depths := t.HoleIDs(), t.Depths()
	for i := range depths {
		row := []string{holeIDs[i], formatFloat(depths[i])}
		for _, c := range cols {
			row = append(row, c.Values[i].String())
		}
		rows = append(rows, row)
	}
	return writeRows(path, rows, opts)
}

// WriteTrace writes the desurveyed trace of one hole: depth, the from,
// mid and to positions of every sample.
func WriteTrace(path string, tr *Trace, opts DumpOptions) error {
	rows := [][]string{{
		"holeid", "depth",
		"x_from", "y_from", "z_from",
		"x_mid", "y_mid", "z_mid",
		"x_to", "y_to", "z_to",
	}}
	for _, s := range tr.Samples {
		rows = append(rows, []string{
			tr.HoleID, formatFloat(s.Depth),
			formatFloat(s.From.X), formatFloat(s.From.Y), formatFloat(s.From.Z),
			formatFloat(s.Mid.X), formatFloat(s.Mid.Y), formatFloat(s.Mid.Z),
			formatFloat(s.To.X), formatFloat(s.To.Y), formatFloat(s.To.Z),
		})
	}
	return writeRows(path, rows, opts)
}

func writeRows(path string, rows [][]string, opts DumpOptions) error {
	w, cleanup, err := createCompressed(path, opts.Compression)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = opts.Format.delimiter()
	werr := cw.WriteAll(rows)
	if werr == nil {
		cw.Flush()
		werr = cw.Error()
	}
	if cerr := cleanup(); cerr != nil && werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("write %s: %w", path, werr)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
