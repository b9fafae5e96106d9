package drillhole

// OutputFormat is the text format used when dumping tables to files.
type OutputFormat int

const (
	// OutputFormatCSV writes comma-separated values.
	OutputFormatCSV OutputFormat = iota
	// OutputFormatTSV writes tab-separated values.
	OutputFormatTSV
)

// String returns the format name.
func (f OutputFormat) String() string {
	if f == OutputFormatTSV {
		return "tsv"
	}
	return "csv"
}

// Extension returns the file extension for the format, including the dot.
func (f OutputFormat) Extension() string {
	if f == OutputFormatTSV {
		return extTSV
	}
	return extCSV
}

func (f OutputFormat) delimiter() rune {
	if f == OutputFormatTSV {
		return '\t'
	}
	return ','
}

// DumpOptions configures how database tables are exported to files.
//
//	opts := drillhole.NewDumpOptions().
//		WithFormat(drillhole.OutputFormatTSV).
//		WithCompression(drillhole.CompressionGZ)
type DumpOptions struct {
	// Format is the output text format.
	Format OutputFormat
	// Compression is applied on top of the text format.
	Compression CompressionType
}

// NewDumpOptions returns the default export options (CSV, uncompressed).
func NewDumpOptions() DumpOptions {
	return DumpOptions{Format: OutputFormatCSV, Compression: CompressionNone}
}

// WithFormat sets the output text format.
func (o DumpOptions) WithFormat(format OutputFormat) DumpOptions {
	o.Format = format
	return o
}

// WithCompression sets the output compression.
func (o DumpOptions) WithCompression(compression CompressionType) DumpOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the full extension of a dumped file, compression
// suffix included.
func (o DumpOptions) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}
