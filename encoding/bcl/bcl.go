// Package bcl reads Illumina BCL base-call files: one byte per cluster
// encoding a base call and its Phred quality for a single (lane, tile,
// cycle), plus the block-compressed multi-tile variant and its
// virtual-offset index (spec.md §4.5, §4.10).
package bcl

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
)

var bases = [4]byte{'A', 'C', 'G', 'T'}

// Reader reads one single-tile BCL file: a little-endian u32 cluster count
// followed by one byte per cluster.
type Reader struct {
	r       io.Reader
	closer  func() error
	n       uint32
	i       uint32
	base    byte
	quality byte
	err     error
}

// Open opens the BCL file at path and reads its cluster-count header.
func Open(path string) (*Reader, error) {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(errors.NotExist, "bcl: opening", path, err)
	}
	r := f.Reader(ctx)
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		f.Close(ctx)
		return nil, errors.E(errors.Invalid, "bcl: reading header of", path, err)
	}
	return &Reader{
		r:      r,
		closer: func() error { return f.Close(ctx) },
		n:      binary.LittleEndian.Uint32(header[:]),
	}, nil
}

// NumClusters returns the cluster count declared in the file header.
func (r *Reader) NumClusters() int { return int(r.n) }

// Scan advances to the next cluster's (base, quality) pair. It returns
// false at end of file or on error; callers must check Err() after Scan
// returns false.
func (r *Reader) Scan() bool {
	if r.err != nil || r.i >= r.n {
		return false
	}
	var b [1]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		r.err = errors.E(errors.Invalid, "bcl: short read", err)
		return false
	}
	r.i++
	if b[0] == 0 {
		r.base, r.quality = 'N', 0
		return true
	}
	r.base = bases[b[0]&0x03]
	r.quality = b[0] >> 2
	return true
}

// Base returns the current cluster's base call. Valid after Scan returns
// true.
func (r *Reader) Base() byte { return r.base }

// Quality returns the current cluster's Phred quality. Valid after Scan
// returns true.
func (r *Reader) Quality() byte { return r.quality }

// Err returns the first error encountered during iteration, if any.
func (r *Reader) Err() error { return r.err }

// Close releases the underlying file handle.
func (r *Reader) Close() error { return r.closer() }
