package pos

import (
	"io"
	"math"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina/encoding/rawio"
)

// clocsBinSize is the edge length, in coordinate units, of one clocs bin.
const clocsBinSize = 25

// clocsImageWidth is the tile image width (in coordinate units) used to
// derive the number of bins per row; it reproduces Illumina's reference
// clocs decoder geometry (spec.md §4.7).
const clocsImageWidth = 2048

// binsPerRow is ceil(clocsImageWidth / clocsBinSize).
var binsPerRow = int(math.Ceil(float64(clocsImageWidth) / float64(clocsBinSize)))

func binX(b int) int32 { return int32((b % binsPerRow) * clocsBinSize) }
func binY(b int) int32 { return int32((b / binsPerRow) * clocsBinSize) }

// clocsReader reads the clocs format: {byte version, u32 numBins} header,
// then for each bin a count byte followed by that many (dx, dy) byte
// pairs.
type clocsReader struct {
	r       io.Reader
	closer  func() error
	numBins int
	bin     int
	left    int // records remaining in the current bin
	x, y    int32
	err     error
	done    bool
}

// OpenClocs opens a clocs file, transparently decompressing .gz/.bz2.
func OpenClocs(path string) (Reader, error) {
	r, closer, err := rawio.Open(path)
	if err != nil {
		return nil, err
	}
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		closer()
		return nil, errors.E(errors.Invalid, "pos: reading clocs header of", path, err)
	}
	numBins := int(header[1]) | int(header[2])<<8 | int(header[3])<<16 | int(header[4])<<24
	return &clocsReader{r: r, closer: closer, numBins: numBins, bin: -1}, nil
}

// advanceToNonEmptyBin reads bin-count bytes until it finds a bin with at
// least one record, or runs out of bins.
func (r *clocsReader) advanceToNonEmptyBin() bool {
	for r.left == 0 {
		r.bin++
		if r.bin >= r.numBins {
			return false
		}
		var n [1]byte
		if _, err := io.ReadFull(r.r, n[:]); err != nil {
			r.err = errors.E(errors.Invalid, "pos: reading clocs bin count", err)
			return false
		}
		r.left = int(n[0])
	}
	return true
}

func (r *clocsReader) Scan() bool {
	if r.err != nil || r.done {
		return false
	}
	if !r.advanceToNonEmptyBin() {
		r.done = true
		return false
	}
	var rec [2]byte
	if _, err := io.ReadFull(r.r, rec[:]); err != nil {
		r.err = errors.E(errors.Invalid, "pos: reading clocs record", err)
		return false
	}
	r.left--
	r.x = binX(r.bin)*10 + int32(rec[0]) + 1000
	r.y = binY(r.bin)*10 + int32(rec[1]) + 1000
	return true
}

func (r *clocsReader) X() int32    { return r.x }
func (r *clocsReader) Y() int32    { return r.y }
func (r *clocsReader) Err() error  { return r.err }
func (r *clocsReader) Close() error { return r.closer() }
