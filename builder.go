package drillhole

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/loopgeo/drillhole/domain/model"
)

// DatabaseBuilder assembles a DrillholeDatabase from data files. Paths
// may point at CSV, TSV, XLSX or Parquet files, optionally compressed
// (.gz, .bz2, .xz, .zst). Chain the configuration calls and finish with
// Build:
//
//	db, err := drillhole.NewBuilder().
//		Collar("collar.csv").
//		Survey("survey.csv.gz").
//		IntervalTable("assay", "assay.parquet").
//		Build(ctx)
type DatabaseBuilder struct {
	cfg        model.Config
	cfgPath    string
	collarPath string
	surveyPath string
	intervals  []namedPath
	points     []namedPath
	logger     *slog.Logger
}

type namedPath struct {
	name string
	path string
}

// NewBuilder creates a builder with the default column configuration.
func NewBuilder() *DatabaseBuilder {
	return &DatabaseBuilder{cfg: model.DefaultConfig()}
}

// Config sets the column configuration used to interpret every file.
func (b *DatabaseBuilder) Config(cfg model.Config) *DatabaseBuilder {
	b.cfg = cfg
	return b
}

// ConfigFile loads the column configuration from a YAML file at Build
// time, overriding Config.
func (b *DatabaseBuilder) ConfigFile(path string) *DatabaseBuilder {
	b.cfgPath = path
	return b
}

// Logger sets the logger passed through to the database.
func (b *DatabaseBuilder) Logger(l *slog.Logger) *DatabaseBuilder {
	b.logger = l
	return b
}

// Collar sets the collar file. Required.
func (b *DatabaseBuilder) Collar(path string) *DatabaseBuilder {
	b.collarPath = path
	return b
}

// Survey sets the survey file. Required.
func (b *DatabaseBuilder) Survey(path string) *DatabaseBuilder {
	b.surveyPath = path
	return b
}

// IntervalTable adds an interval attribute file registered under the
// given name. An empty name falls back to the file's base name.
func (b *DatabaseBuilder) IntervalTable(name, path string) *DatabaseBuilder {
	b.intervals = append(b.intervals, namedPath{name: name, path: path})
	return b
}

// PointTable adds a point attribute file registered under the given
// name. An empty name falls back to the file's base name.
func (b *DatabaseBuilder) PointTable(name, path string) *DatabaseBuilder {
	b.points = append(b.points, namedPath{name: name, path: path})
	return b
}

// Build loads every configured file and assembles the database.
func (b *DatabaseBuilder) Build(ctx context.Context) (*DrillholeDatabase, error) {
	if b.collarPath == "" {
		return nil, errors.New("drillhole: builder needs a collar file")
	}
	if b.surveyPath == "" {
		return nil, errors.New("drillhole: builder needs a survey file")
	}
	cfg := b.cfg
	if b.cfgPath != "" {
		loaded, err := model.LoadConfig(b.cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	collarFrame, err := loadFrame(ctx, b.collarPath)
	if err != nil {
		return nil, fmt.Errorf("collar: %w", err)
	}
	collars, err := model.CollarsFromFrame(collarFrame, cfg)
	if err != nil {
		return nil, err
	}

	surveyFrame, err := loadFrame(ctx, b.surveyPath)
	if err != nil {
		return nil, fmt.Errorf("survey: %w", err)
	}
	surveys, err := model.SurveysFromFrame(surveyFrame, cfg)
	if err != nil {
		return nil, err
	}

	var opts []Option
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	db, err := NewDatabase(cfg, collars, surveys, opts...)
	if err != nil {
		return nil, err
	}

	for _, np := range b.intervals {
		frame, err := loadFrame(ctx, np.path)
		if err != nil {
			return nil, fmt.Errorf("interval table %q: %w", np.name, err)
		}
		t, err := model.IntervalTableFromFrame(frame, cfg)
		if err != nil {
			return nil, err
		}
		name := np.name
		if name == "" {
			name = frame.Name()
		}
		if err := db.AddIntervalTable(name, t); err != nil {
			return nil, err
		}
	}
	for _, np := range b.points {
		frame, err := loadFrame(ctx, np.path)
		if err != nil {
			return nil, fmt.Errorf("point table %q: %w", np.name, err)
		}
		t, err := model.PointTableFromFrame(frame, cfg)
		if err != nil {
			return nil, err
		}
		name := np.name
		if name == "" {
			name = frame.Name()
		}
		if err := db.AddPointTable(name, t); err != nil {
			return nil, err
		}
	}
	return db, nil
}
