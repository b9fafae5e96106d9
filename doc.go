// Package drillhole manages drillhole data: collars, downhole surveys and
// depth-keyed attribute tables.
//
// The package converts survey stations into 3D traces with the minimum
// curvature method, projects attribute tables onto arbitrary depths,
// rebuilds irregular interval logs onto regular depth grids and merges
// several interval tables into one atomic partition. Tables are loaded
// from CSV, TSV, XLSX and Parquet files (plus gz/bz2/xz/zst compressed
// variants) and a whole database can be persisted to a SQLite file.
//
// All core operations are pure transformations over in-memory tables;
// per-hole batch operations run one goroutine per hole and collect
// per-hole errors without aborting the remaining holes.
package drillhole
