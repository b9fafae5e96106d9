package drillhole

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// CompressionType identifies the stream compression applied to a data
// file, detected from its extension.
type CompressionType int

const (
	// CompressionNone means the file is not compressed.
	CompressionNone CompressionType = iota
	// CompressionGZ is gzip (.gz).
	CompressionGZ
	// CompressionBZ2 is bzip2 (.bz2), read-only.
	CompressionBZ2
	// CompressionXZ is xz (.xz).
	CompressionXZ
	// CompressionZSTD is zstandard (.zst).
	CompressionZSTD
)

const (
	extGZ   = ".gz"
	extBZ2  = ".bz2"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

// Extension returns the file extension for the compression type,
// including the dot, or "" for CompressionNone.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGZ:
		return extGZ
	case CompressionBZ2:
		return extBZ2
	case CompressionXZ:
		return extXZ
	case CompressionZSTD:
		return extZSTD
	default:
		return ""
	}
}

// detectCompression infers the compression type from the path suffix.
func detectCompression(path string) CompressionType {
	switch p := strings.ToLower(path); {
	case strings.HasSuffix(p, extGZ):
		return CompressionGZ
	case strings.HasSuffix(p, extBZ2):
		return CompressionBZ2
	case strings.HasSuffix(p, extXZ):
		return CompressionXZ
	case strings.HasSuffix(p, extZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// stripCompressionExt removes a trailing compression extension, leaving
// the base data extension for format detection.
func stripCompressionExt(path string) string {
	for _, ext := range []string{extGZ, extBZ2, extXZ, extZSTD} {
		if strings.HasSuffix(strings.ToLower(path), ext) {
			return path[:len(path)-len(ext)]
		}
	}
	return path
}

// decompressReader wraps r with the decompressor matching ct. The
// returned cleanup releases decompressor resources, not r itself.
func decompressReader(r io.Reader, ct CompressionType) (io.Reader, func() error, error) {
	switch ct {
	case CompressionNone:
		return r, func() error { return nil }, nil
	case CompressionGZ:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip reader: %w", err)
		}
		return gz, gz.Close, nil
	case CompressionBZ2:
		return bzip2.NewReader(r), func() error { return nil }, nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("xz reader: %w", err)
		}
		return xr, func() error { return nil }, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd reader: %w", err)
		}
		return dec, func() error { dec.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("%w: compression %d", ErrUnsupportedFormat, ct)
	}
}

// openDecompressed opens a file for reading through the decompressor its
// extension calls for. The cleanup closes both layers.
func openDecompressed(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	r, cleanup, err := decompressReader(f, detectCompression(path))
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return r, func() error {
		err := cleanup()
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		return err
	}, nil
}

// createCompressed creates a file for writing through the requested
// compressor. bzip2 has no standard-library writer and is rejected.
func createCompressed(path string, ct CompressionType) (io.Writer, func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	var (
		w       io.Writer
		cleanup func() error
	)
	switch ct {
	case CompressionNone:
		w, cleanup = f, func() error { return nil }
	case CompressionGZ:
		gz := gzip.NewWriter(f)
		w, cleanup = gz, gz.Close
	case CompressionXZ:
		xw, xerr := xz.NewWriter(f)
		if xerr != nil {
			_ = f.Close()
			return nil, nil, fmt.Errorf("xz writer: %w", xerr)
		}
		w, cleanup = xw, xw.Close
	case CompressionZSTD:
		zw, zerr := zstd.NewWriter(f)
		if zerr != nil {
			_ = f.Close()
			return nil, nil, fmt.Errorf("zstd writer: %w", zerr)
		}
		w, cleanup = zw, zw.Close
	default:
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: writing compression %d", ErrUnsupportedFormat, ct)
	}
	return w, func() error {
		err := cleanup()
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		return err
	}, nil
}
