package drillhole

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/loopgeo/drillhole/domain/model"
)

// DrillholeDatabase is the container for all drillhole data: collars,
// per-hole surveys and named interval/point attribute tables. Collar and
// survey data are owned exclusively by the database; attribute tables
// are owned by the database and keyed by name. Hole views borrow and
// filter, they never own.
//
// Core operations read tables immutably and return new tables, so
// concurrent readers need no synchronization; callers are responsible
// for any concurrent-write discipline on the container itself.
type DrillholeDatabase struct {
	cfg     model.Config
	collars map[string]model.Collar
	holes   []string
	surveys map[string][]model.SurveyStation

	intervals     map[string]*model.IntervalTable
	points        map[string]*model.PointTable
	intervalOrder []string
	pointOrder    []string

	logger *slog.Logger
}

// Option configures a DrillholeDatabase.
type Option func(*DrillholeDatabase)

// WithLogger sets the logger used for soft diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(db *DrillholeDatabase) { db.logger = l }
}

// NewDatabase creates a database from collar records and per-hole survey
// stations. Duplicate collar hole ids and survey hole ids missing from
// the collar are fatal. Angles that look like degrees (azimuth span
// beyond 2π, dip span beyond π) are converted to radians with a
// diagnostic.
func NewDatabase(cfg model.Config, collars []model.Collar, surveys map[string][]model.SurveyStation, opts ...Option) (*DrillholeDatabase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db := &DrillholeDatabase{
		cfg:       cfg,
		collars:   make(map[string]model.Collar, len(collars)),
		surveys:   make(map[string][]model.SurveyStation, len(surveys)),
		intervals: make(map[string]*model.IntervalTable),
		points:    make(map[string]*model.PointTable),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(db)
	}

	for _, c := range collars {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, ok := db.collars[c.HoleID]; ok {
			return nil, fmt.Errorf("%w: hole %q in collar", model.ErrDuplicateHoleID, c.HoleID)
		}
		db.collars[c.HoleID] = c
		db.holes = append(db.holes, c.HoleID)
	}
	sort.Strings(db.holes)

	for holeID, stations := range surveys {
		if _, ok := db.collars[holeID]; !ok {
			return nil, fmt.Errorf("%w: hole %q in survey", ErrUnknownHole, holeID)
		}
		for _, s := range stations {
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("survey hole %q: %w", holeID, err)
			}
		}
		cp := make([]model.SurveyStation, len(stations))
		copy(cp, stations)
		db.surveys[holeID] = cp
	}
	db.normalizeAngles()
	return db, nil
}

// normalizeAngles converts survey angles from degrees to radians when
// the observed span across all stations makes radians implausible.
func (db *DrillholeDatabase) normalizeAngles() {
	minAzi, maxAzi := math.Inf(1), math.Inf(-1)
	minDip, maxDip := math.Inf(1), math.Inf(-1)
	any := false
	for _, stations := range db.surveys {
		for _, s := range stations {
			any = true
			minAzi, maxAzi = math.Min(minAzi, s.Azimuth), math.Max(maxAzi, s.Azimuth)
			minDip, maxDip = math.Min(minDip, s.Dip), math.Max(maxDip, s.Dip)
		}
	}
	if !any {
		return
	}
	if maxAzi-minAzi > 2*math.Pi {
		db.logger.Warn("survey azimuths look like degrees, converting to radians")
		for _, stations := range db.surveys {
			for i := range stations {
				stations[i].Azimuth = stations[i].Azimuth * math.Pi / 180
			}
		}
	}
	if maxDip-minDip > math.Pi {
		db.logger.Warn("survey dips look like degrees, converting to radians")
		for _, stations := range db.surveys {
			for i := range stations {
				stations[i].Dip = stations[i].Dip * math.Pi / 180
			}
		}
	}
}

// Config returns the configuration the database was built with.
func (db *DrillholeDatabase) Config() model.Config { return db.cfg }

// Holes returns all hole ids, sorted.
func (db *DrillholeDatabase) Holes() []string {
	out := make([]string, len(db.holes))
	copy(out, db.holes)
	return out
}

// Collar returns the collar record for a hole.
func (db *DrillholeDatabase) Collar(holeID string) (model.Collar, error) {
	c, ok := db.collars[holeID]
	if !ok {
		return model.Collar{}, fmt.Errorf("%w: %q", ErrUnknownHole, holeID)
	}
	return c, nil
}

// Survey returns the survey stations recorded for a hole, in input order.
func (db *DrillholeDatabase) Survey(holeID string) ([]model.SurveyStation, error) {
	if _, ok := db.collars[holeID]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHole, holeID)
	}
	stations := db.surveys[holeID]
	out := make([]model.SurveyStation, len(stations))
	copy(out, stations)
	return out, nil
}

// AddIntervalTable registers an interval table. Every hole id referenced
// by the table must exist in the collar.
func (db *DrillholeDatabase) AddIntervalTable(name string, t *model.IntervalTable) error {
	for _, h := range t.Holes() {
		if _, ok := db.collars[h]; !ok {
			return fmt.Errorf("%w: hole %q in interval table %q", ErrUnknownHole, h, name)
		}
	}
	if _, exists := db.intervals[name]; !exists {
		db.intervalOrder = append(db.intervalOrder, name)
	}
	db.intervals[name] = t
	return nil
}

// AddPointTable registers a point table. Every hole id referenced by the
// table must exist in the collar.
func (db *DrillholeDatabase) AddPointTable(name string, t *model.PointTable) error {
	for _, h := range t.Holes() {
		if _, ok := db.collars[h]; !ok {
			return fmt.Errorf("%w: hole %q in point table %q", ErrUnknownHole, h, name)
		}
	}
	if _, exists := db.points[name]; !exists {
		db.pointOrder = append(db.pointOrder, name)
	}
	db.points[name] = t
	return nil
}

// IntervalTable returns a registered interval table.
func (db *DrillholeDatabase) IntervalTable(name string) (*model.IntervalTable, error) {
	t, ok := db.intervals[name]
	if !ok {
		return nil, fmt.Errorf("%w: interval table %q", ErrUnknownTable, name)
	}
	return t, nil
}

// PointTable returns a registered point table.
func (db *DrillholeDatabase) PointTable(name string) (*model.PointTable, error) {
	t, ok := db.points[name]
	if !ok {
		return nil, fmt.Errorf("%w: point table %q", ErrUnknownTable, name)
	}
	return t, nil
}

// IntervalTableNames returns interval table names in registration order.
func (db *DrillholeDatabase) IntervalTableNames() []string {
	out := make([]string, len(db.intervalOrder))
	copy(out, db.intervalOrder)
	return out
}

// PointTableNames returns point table names in registration order.
func (db *DrillholeDatabase) PointTableNames() []string {
	out := make([]string, len(db.pointOrder))
	copy(out, db.pointOrder)
	return out
}

// Extent returns the bounding box of all collar positions.
func (db *DrillholeDatabase) Extent() (minPt, maxPt Point, ok bool) {
	if len(db.holes) == 0 {
		return Point{}, Point{}, false
	}
	first := true
	for _, c := range db.collars {
		if first {
			minPt = Point{X: c.X, Y: c.Y, Z: c.Z}
			maxPt = minPt
			first = false
			continue
		}
		minPt.X, maxPt.X = math.Min(minPt.X, c.X), math.Max(maxPt.X, c.X)
		minPt.Y, maxPt.Y = math.Min(minPt.Y, c.Y), math.Max(maxPt.Y, c.Y)
		minPt.Z, maxPt.Z = math.Min(minPt.Z, c.Z), math.Max(maxPt.Z, c.Z)
	}
	return minPt, maxPt, true
}

// Validate performs the full consistency check: referential integrity of
// every table and depth limits against each hole's total depth. Depth
// overruns are reported, never auto-corrected.
func (db *DrillholeDatabase) Validate() error {
	for _, name := range db.intervalOrder {
		t := db.intervals[name]
		for _, h := range t.Holes() {
			collar, ok := db.collars[h]
			if !ok {
				return fmt.Errorf("%w: hole %q in interval table %q", ErrUnknownHole, h, name)
			}
			ht := t.FilterHole(h)
			if _, maxTo, ok := ht.DepthRange(); ok && maxTo > collar.TotalDepth {
				return fmt.Errorf("%w: interval table %q hole %q reaches %g beyond %g",
					ErrDepthExceedsTotal, name, h, maxTo, collar.TotalDepth)
			}
		}
	}
	for _, name := range db.pointOrder {
		t := db.points[name]
		for _, h := range t.Holes() {
			collar, ok := db.collars[h]
			if !ok {
				return fmt.Errorf("%w: hole %q in point table %q", ErrUnknownHole, h, name)
			}
			if maxd, ok := t.FilterHole(h).MaxDepth(); ok && maxd > collar.TotalDepth {
				return fmt.Errorf("%w: point table %q hole %q reaches %g beyond %g",
					ErrDepthExceedsTotal, name, h, maxd, collar.TotalDepth)
			}
		}
	}
	return nil
}

// Hole returns a read-only view over one hole.
func (db *DrillholeDatabase) Hole(holeID string) (*Hole, error) {
	collar, ok := db.collars[holeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHole, holeID)
	}
	return &Hole{db: db, id: holeID, collar: collar, survey: db.surveys[holeID]}, nil
}

// forEachHole runs fn once per listed hole, one goroutine per hole, and
// collects per-hole errors. One hole's failure never blocks the others.
func (db *DrillholeDatabase) forEachHole(holes []string, fn func(holeID string) error) HoleErrors {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs HoleErrors
	)
	for _, holeID := range holes {
		wg.Add(1)
		go func(holeID string) {
			defer wg.Done()
			if err := fn(holeID); err != nil {
				mu.Lock()
				errs = append(errs, &HoleError{HoleID: holeID, Err: err})
				mu.Unlock()
			}
		}(holeID)
	}
	wg.Wait()
	sort.Slice(errs, func(i, j int) bool { return errs[i].HoleID < errs[j].HoleID })
	return errs
}

// MergeTables merges the named interval tables into a single atomic
// partition (see MergeIntervalTables). Unknown table names fail fast,
// naming the offending input position.
func (db *DrillholeDatabase) MergeTables(outName string, names ...string) (*model.IntervalTable, error) {
	tables := make([]*model.IntervalTable, len(names))
	for i, n := range names {
		t, ok := db.intervals[n]
		if !ok {
			return nil, fmt.Errorf("%w: interval table %q (merge input %d)", ErrUnknownTable, n, i)
		}
		tables[i] = t
	}
	return MergeIntervalTables(outName, tables)
}

// RegularizeTable rebuilds the named interval table onto a fixed-width
// grid hole by hole (see Regularize) and concatenates the per-hole
// results in sorted hole order. Per-hole failures are collected; the
// remaining holes still complete.
func (db *DrillholeDatabase) RegularizeTable(name string, columns []string, width float64) (*model.IntervalTable, HoleErrors, error) {
	t, ok := db.intervals[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: interval table %q", ErrUnknownTable, name)
	}
	holes := t.Holes()
	results := make(map[string]*model.IntervalTable, len(holes))
	var mu sync.Mutex
	herrs := db.forEachHole(holes, func(holeID string) error {
		res, err := regularize(db.logger, t.FilterHole(holeID), columns, width)
		if err != nil {
			return err
		}
		mu.Lock()
		results[holeID] = res
		mu.Unlock()
		return nil
	})

	out := model.NewIntervalTable(name)
	for _, holeID := range holes {
		res, ok := results[holeID]
		if !ok {
			continue
		}
		if err := appendIntervalRows(out, res); err != nil {
			return nil, herrs, err
		}
	}
	return out, herrs, nil
}

// appendIntervalRows appends all rows of src to dst, creating attribute
// columns on first use.
func appendIntervalRows(dst, src *model.IntervalTable) error {
	for _, c := range src.Columns() {
		if dst.Column(c.Name) == nil {
			if _, err := dst.AddColumn(c.Name, c.Type); err != nil {
				return err
			}
		}
	}
	holeIDs, from, to := src.HoleIDs(), src.Froms(), src.Tos()
	for i := range from {
		if err := dst.AppendRow(holeIDs[i], from[i], to[i]); err != nil {
			return err
		}
		row := dst.Len() - 1
		for _, c := range src.Columns() {
			dst.Column(c.Name).Set(row, c.Values[i])
		}
	}
	return nil
}
