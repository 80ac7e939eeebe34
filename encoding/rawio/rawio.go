// Package rawio opens one raw-run per-tile file, transparently
// decompressing it if its name carries a ".gz" or ".bz2" suffix (spec.md
// §4.1: file discovery patterns accept either suffix on qseq, pos, filter,
// and barcode files).
package rawio

import (
	"compress/bzip2"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// Open opens path and returns a reader over its decompressed content plus
// a close function that releases the underlying file (and, for gzip, the
// decompressor).
func Open(path string) (io.Reader, func() error, error) {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.E(errors.NotExist, "rawio: opening", path, err)
	}
	r := f.Reader(ctx)

	switch {
	case fileio.DetermineType(path) == fileio.Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			f.Close(ctx)
			return nil, nil, errors.E(errors.Invalid, "rawio: reading gzip header of", path, err)
		}
		return gz, func() error {
			gzErr := gz.Close()
			closeErr := f.Close(ctx)
			if gzErr != nil {
				return gzErr
			}
			return closeErr
		}, nil
	case strings.HasSuffix(path, ".bz2"):
		return bzip2.NewReader(r), func() error { return f.Close(ctx) }, nil
	default:
		return r, func() error { return f.Close(ctx) }, nil
	}
}
