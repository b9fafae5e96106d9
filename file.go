package drillhole

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	"github.com/loopgeo/drillhole/domain/model"
)

// FileType identifies the base data format of an input file, after any
// compression extension has been stripped.
type FileType int

const (
	// FileTypeUnsupported marks formats the loader cannot read.
	FileTypeUnsupported FileType = iota
	// FileTypeCSV is comma-separated values (.csv).
	FileTypeCSV
	// FileTypeTSV is tab-separated values (.tsv).
	FileTypeTSV
	// FileTypeXLSX is an Excel workbook (.xlsx); the first sheet is read.
	FileTypeXLSX
	// FileTypeParquet is Apache Parquet (.parquet).
	FileTypeParquet
)

const (
	extCSV     = ".csv"
	extTSV     = ".tsv"
	extXLSX    = ".xlsx"
	extParquet = ".parquet"
)

// DetectFileType infers the base format from the path, looking through a
// trailing compression extension.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(stripCompressionExt(path))) {
	case extCSV:
		return FileTypeCSV
	case extTSV:
		return FileTypeTSV
	case extXLSX:
		return FileTypeXLSX
	case extParquet:
		return FileTypeParquet
	default:
		return FileTypeUnsupported
	}
}

// frameNameFromPath derives a frame name from the file name, dropping
// the compression and data extensions.
func frameNameFromPath(path string) string {
	base := filepath.Base(stripCompressionExt(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loadFrame reads one data file into a raw frame, decompressing as the
// extension dictates.
func loadFrame(ctx context.Context, path string) (*model.Frame, error) {
	ft := DetectFileType(path)
	if ft == FileTypeUnsupported {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	r, cleanup, err := openDecompressed(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cleanup() }()

	name := frameNameFromPath(path)
	switch ft {
	case FileTypeCSV:
		return parseDelimited(name, r, ',')
	case FileTypeTSV:
		return parseDelimited(name, r, '\t')
	case FileTypeXLSX:
		return parseXLSX(name, r)
	default:
		return parseParquet(ctx, name, r)
	}
}

func parseDelimited(name string, r io.Reader, delim rune) (*model.Frame, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if len(rows) == 0 {
		return model.NewFrame(name, nil, nil), nil
	}
	return model.NewFrame(name, rows[0], rows[1:]), nil
}

func parseXLSX(name string, r io.Reader) (*model.Frame, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return model.NewFrame(name, nil, nil), nil
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("parse %s sheet %q: %w", name, sheets[0], err)
	}
	if len(rows) == 0 {
		return model.NewFrame(name, nil, nil), nil
	}

	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// excelize drops trailing empty cells; pad back to header width.
		rec := make([]string, len(header))
		copy(rec, row)
		records = append(records, rec)
	}
	return model.NewFrame(name, header, records), nil
}

// parseParquet reads a whole Parquet stream through the Arrow reader.
// Parquet needs random access, so the stream is buffered in memory.
func parseParquet(ctx context.Context, name string, r io.Reader) (*model.Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return model.NewFrame(name, nil, nil), nil
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parquet reader %s: %w", name, err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, fmt.Errorf("arrow reader %s: %w", name, err)
	}
	tbl, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	defer tbl.Release()

	schema := tbl.Schema()
	header := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}

	tr := array.NewTableReader(tbl, 0)
	defer tr.Release()

	var records [][]string
	for tr.Next() {
		batch := tr.Record()
		for row := int64(0); row < batch.NumRows(); row++ {
			rec := make([]string, batch.NumCols())
			for col, c := range batch.Columns() {
				rec[col] = arrowCellString(c, int(row))
			}
			records = append(records, rec)
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("read records %s: %w", name, err)
	}
	return model.NewFrame(name, header, records), nil
}

// arrowCellString renders one Arrow array cell as text. Nulls become the
// empty string, matching how CSV input represents missing values.
func arrowCellString(col arrow.Array, row int) string {
	if col.IsNull(row) {
		return ""
	}
	return col.ValueStr(row)
}
