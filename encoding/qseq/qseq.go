// Package qseq reads Illumina QSeq files -- the legacy combined text format
// holding machine/position metadata, bases, qualities, and a pass-filter
// flag for every cluster of one (lane, readNo, tile) -- and splits a QSeq
// read across the output cycle ranges of an OutputMapping (spec.md §4.9).
package qseq

import (
	"bufio"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina/encoding/rawio"
)

// Record is one parsed QSeq line.
type Record struct {
	Machine, Run    string
	Lane, Tile      int
	X, Y            int32
	Bases           string
	Qualities       []byte // raw ASCII quality characters (Solexa-1.3: q = ord(c)-64)
	PF              bool
}

// Reader reads whitespace-delimited QSeq text, one cluster per line.
type Reader struct {
	sc     *bufio.Scanner
	closer func() error
	rec    Record
	err    error
}

// Open opens a QSeq file, transparently decompressing .gz/.bz2.
func Open(path string) (*Reader, error) {
	r, closer, err := rawio.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{sc: bufio.NewScanner(r), closer: closer}, nil
}

// Scan advances to the next cluster's record.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.sc.Scan() {
		r.err = r.sc.Err()
		return false
	}
	fields := strings.Fields(r.sc.Text())
	if len(fields) < 11 {
		r.err = errors.E(errors.Invalid, "qseq: expected at least 11 fields, got", len(fields))
		return false
	}
	lane, err := strconv.Atoi(fields[2])
	if err != nil {
		r.err = errors.E(errors.Invalid, "qseq: invalid lane", fields[2], err)
		return false
	}
	tile, err := strconv.Atoi(fields[3])
	if err != nil {
		r.err = errors.E(errors.Invalid, "qseq: invalid tile", fields[3], err)
		return false
	}
	x, err := parseCoord(fields[4])
	if err != nil {
		r.err = err
		return false
	}
	y, err := parseCoord(fields[5])
	if err != nil {
		r.err = err
		return false
	}
	bases := fields[8]
	quals := []byte(fields[9])
	if len(bases) != len(quals) {
		r.err = errors.E(errors.Invalid, "qseq: bases/qualities length mismatch on line", r.sc.Text())
		return false
	}
	r.rec = Record{
		Machine:   fields[0],
		Run:       fields[1],
		Lane:      lane,
		Tile:      tile,
		X:         x,
		Y:         y,
		Bases:     bases,
		Qualities: quals,
		PF:        fields[10] == "1",
	}
	return true
}

func parseCoord(s string) (int32, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.E(errors.Invalid, "qseq: invalid coordinate", s, err)
	}
	return int32(math.Round(v)), nil
}

// Record returns the current cluster's record.
func (r *Reader) Record() Record { return r.rec }

// Err returns the first error encountered during iteration, if any.
func (r *Reader) Err() error { return r.err }

// Close releases the underlying file handle.
func (r *Reader) Close() error { return r.closer() }

// solexaToPhred converts one Solexa-1.3-encoded quality byte (already
// decoded from ASCII via ord(c)-64, per spec.md §4.9) to a Phred quality.
func solexaToPhred(solexa int) byte {
	p := math.Round(10 * math.Log10(1+math.Pow(10, float64(solexa)/10)))
	if p < 0 {
		p = 0
	}
	return byte(p)
}

// DecodeQualities converts a raw QSeq quality string (ASCII, Solexa-1.3) to
// Phred-scaled quality bytes, returned as a new slice; raw is not modified.
func DecodeQualities(raw []byte) []byte {
	out := make([]byte, len(raw))
	for i, c := range raw {
		out[i] = solexaToPhred(int(c) - 64)
	}
	return out
}
