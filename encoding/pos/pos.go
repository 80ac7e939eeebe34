// Package pos reads Illumina cluster-position files: the binary locs and
// clocs formats and the text pos format, all yielding one (x, y) pair per
// cluster in input order (spec.md §4.7).
package pos

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina/encoding/rawio"
)

// Reader yields (x, y) integer coordinates, one pair per cluster.
type Reader interface {
	Scan() bool
	X() int32
	Y() int32
	Err() error
	Close() error
}

func toQ(v float32) int32 {
	return int32(math.Round(float64(v)*10 + 1000))
}

// locsReader reads the fixed 12-byte-header, (f32 x, f32 y)-pair locs
// format.
type locsReader struct {
	r      io.Reader
	closer func() error
	x, y   int32
	err    error
}

const locsHeaderSize = 12

// OpenLocs opens a locs file, transparently decompressing .gz/.bz2.
func OpenLocs(path string) (Reader, error) {
	r, closer, err := rawio.Open(path)
	if err != nil {
		return nil, err
	}
	var header [locsHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		closer()
		return nil, errors.E(errors.Invalid, "pos: reading locs header of", path, err)
	}
	return &locsReader{r: r, closer: closer}, nil
}

func (r *locsReader) Scan() bool {
	if r.err != nil {
		return false
	}
	var buf [8]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		if err != io.EOF {
			r.err = errors.E(errors.Invalid, "pos: short read in locs stream", err)
		}
		return false
	}
	x := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8]))
	r.x, r.y = toQ(x), toQ(y)
	return true
}

func (r *locsReader) X() int32    { return r.x }
func (r *locsReader) Y() int32    { return r.y }
func (r *locsReader) Err() error  { return r.err }
func (r *locsReader) Close() error { return r.closer() }

// posReader reads the whitespace-delimited text pos format: two floats per
// line.
type posReader struct {
	sc     *bufio.Scanner
	closer func() error
	x, y   int32
	err    error
}

// OpenPos opens a pos text file, transparently decompressing .gz/.bz2.
func OpenPos(path string) (Reader, error) {
	r, closer, err := rawio.Open(path)
	if err != nil {
		return nil, err
	}
	return &posReader{sc: bufio.NewScanner(r), closer: closer}, nil
}

func (r *posReader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.sc.Scan() {
		r.err = r.sc.Err()
		return false
	}
	fields := strings.Fields(r.sc.Text())
	if len(fields) != 2 {
		r.err = errors.E(errors.Invalid, "pos: expected 2 fields per line, got", len(fields))
		return false
	}
	x, err := strconv.ParseFloat(fields[0], 32)
	if err != nil {
		r.err = errors.E(errors.Invalid, "pos: invalid x coordinate", fields[0], err)
		return false
	}
	y, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		r.err = errors.E(errors.Invalid, "pos: invalid y coordinate", fields[1], err)
		return false
	}
	r.x, r.y = toQ(float32(x)), toQ(float32(y))
	return true
}

func (r *posReader) X() int32    { return r.x }
func (r *posReader) Y() int32    { return r.y }
func (r *posReader) Err() error  { return r.err }
func (r *posReader) Close() error { return r.closer() }
