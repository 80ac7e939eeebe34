// Package filter reads Illumina pass-filter files: a 12-byte header
// followed by one byte per cluster whose low bit is the PF flag (spec.md
// §4.8).
package filter

import (
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina/encoding/rawio"
)

const headerSize = 12

// Reader yields one pass-filter boolean per cluster, in file order.
type Reader struct {
	r      io.Reader
	closer func() error
	pf     bool
	err    error
}

// Open opens a filter file (transparently decompressing .gz/.bz2) and
// validates its header length.
func Open(path string) (*Reader, error) {
	r, closer, err := rawio.Open(path)
	if err != nil {
		return nil, err
	}
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		closer()
		return nil, errors.E(errors.Invalid, "filter: reading header of", path, err)
	}
	return &Reader{r: r, closer: closer}, nil
}

// Scan advances to the next cluster's PF flag.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	var b [1]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		if err != io.EOF {
			r.err = errors.E(errors.Invalid, "filter: short read", err)
		}
		return false
	}
	r.pf = b[0]&0x01 != 0
	return true
}

// PF returns the current cluster's pass-filter flag.
func (r *Reader) PF() bool { return r.pf }

// Err returns the first error encountered during iteration, if any.
func (r *Reader) Err() error { return r.err }

// Close releases the underlying file handle.
func (r *Reader) Close() error { return r.closer() }
