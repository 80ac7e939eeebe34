// Package cif reads Illumina CIF/CNF intensity and noise files: a shared
// binary format holding, per cycle and per channel, a dense array of
// per-cluster signed intensity values (spec.md §4.6). Files are
// memory-mapped read-only for the lifetime of the reader.
package cif

import (
	"os"

	"github.com/grailbio/base/errors"
	"golang.org/x/sys/unix"
)

const headerSize = 13

// Reader is a memory-mapped CIF or CNF file.
type Reader struct {
	data        []byte
	FirstCycle  int
	NumCycles   int
	NumClusters int
	ElementSize int
}

// Open memory-maps the CIF/CNF file at path and validates its header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(errors.NotExist, "cif: opening", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.E(errors.Invalid, "cif: stat", path, err)
	}
	size := int(fi.Size())
	if size < headerSize {
		return nil, errors.E(errors.Invalid, "cif:", path, "is shorter than its header")
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.E(errors.Internal, "cif: mmap", path, err)
	}

	if string(data[0:3]) != "CIF" {
		unix.Munmap(data)
		return nil, errors.E(errors.Invalid, "cif:", path, "has bad magic")
	}
	if data[3] != 1 {
		unix.Munmap(data)
		return nil, errors.E(errors.Invalid, "cif:", path, "has unsupported version", data[3])
	}
	elementSize := int(data[4])
	if elementSize != 1 && elementSize != 2 {
		unix.Munmap(data)
		return nil, errors.E(errors.Invalid, "cif:", path, "has invalid element size", elementSize)
	}
	firstCycle := int(data[5]) | int(data[6])<<8
	numCycles := int(data[7]) | int(data[8])<<8
	if numCycles == 0 {
		unix.Munmap(data)
		return nil, errors.E(errors.Invalid, "cif:", path, "declares zero cycles")
	}
	numClusters := int(int32(uint32(data[9]) | uint32(data[10])<<8 | uint32(data[11])<<16 | uint32(data[12])<<24))
	if numClusters < 0 {
		unix.Munmap(data)
		return nil, errors.E(errors.Invalid, "cif:", path, "declares negative cluster count", numClusters)
	}

	wantSize := headerSize + numCycles*4*numClusters*elementSize
	if size < wantSize {
		unix.Munmap(data)
		return nil, errors.E(errors.Invalid, "cif:", path, "is shorter than its declared body")
	}

	return &Reader{
		data:        data,
		FirstCycle:  firstCycle,
		NumCycles:   numCycles,
		NumClusters: numClusters,
		ElementSize: elementSize,
	}, nil
}

// Close unmaps the file.
func (r *Reader) Close() error {
	return unix.Munmap(r.data)
}

// CheckSingleCycle validates the per-tile-per-cycle invariant of spec.md
// §4.6: a CIF/CNF file discovered under a single cycle directory must
// declare exactly one cycle.
func (r *Reader) CheckSingleCycle() error {
	if r.NumCycles != 1 {
		return errors.E(errors.Precondition, "cif: expected a single-cycle file, got", r.NumCycles, "cycles")
	}
	return nil
}

// Value returns the signed intensity/noise value for the given cluster
// (0-based), channel (0=A,1=C,2=G,3=T), and cycle (absolute, i.e. in
// [FirstCycle, FirstCycle+NumCycles)).
func (r *Reader) Value(cluster, channel, cycle int) int16 {
	off := headerSize +
		(cycle-r.FirstCycle)*(4*r.NumClusters*r.ElementSize) +
		channel*(r.NumClusters*r.ElementSize) +
		cluster*r.ElementSize
	if r.ElementSize == 1 {
		return int16(int8(r.data[off]))
	}
	return int16(uint16(r.data[off]) | uint16(r.data[off+1])<<8)
}
