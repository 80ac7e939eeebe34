// Package barcode reads Illumina demultiplexing barcode files -- one
// assigned tag string per cluster per line -- and matches raw index reads
// against a panel of expected tags by edit distance (spec.md §4.8, §4.12).
package barcode

import (
	"bufio"

	"github.com/grailbio/illumina/encoding/rawio"
)

// Reader yields one assigned barcode string per cluster, in file order.
type Reader struct {
	sc     *bufio.Scanner
	closer func() error
	tag    string
	err    error
}

// Open opens a barcode text file, transparently decompressing .gz/.bz2.
func Open(path string) (*Reader, error) {
	r, closer, err := rawio.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{sc: bufio.NewScanner(r), closer: closer}, nil
}

// Scan advances to the next cluster's assigned barcode.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.sc.Scan() {
		r.err = r.sc.Err()
		return false
	}
	r.tag = r.sc.Text()
	return true
}

// Tag returns the current cluster's assigned barcode.
func (r *Reader) Tag() string { return r.tag }

// Err returns the first error encountered during iteration, if any.
func (r *Reader) Err() error { return r.err }

// Close releases the underlying file handle.
func (r *Reader) Close() error { return r.closer() }
