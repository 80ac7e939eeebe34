package layout

import (
	"strings"

	"github.com/grailbio/base/errors"
)

// qseqUtil discovers QSeq files, which are named per (lane, readNo, tile)
// rather than just (lane, tile): "s_<lane>_<readNo>_<tttt>_qseq.txt".
type qseqUtil struct {
	basecallsDir string
	lane         int

	resolved     bool
	filesByRead  map[int]map[int]string // readNo -> tile -> path
	readNumbers  []int                   // ascending
}

func newQseqUtil(basecallsDir string, lane int) *qseqUtil {
	return &qseqUtil{basecallsDir: basecallsDir, lane: lane}
}

func (u *qseqUtil) resolve() {
	if u.resolved {
		return
	}
	u.resolved = true
	u.filesByRead = map[int]map[int]string{}

	paths, err := listDir(u.basecallsDir, true)
	if err != nil || len(paths) == 0 {
		return
	}
	for _, p := range paths {
		base := p
		if i := strings.LastIndex(p, "/"); i >= 0 {
			base = p[i+1:]
		}
		m := qseqPattern.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		lane := parseInt(m[1])
		if lane != u.lane {
			continue
		}
		readNo := parseInt(m[2])
		tile := parseInt(m[3])
		tiles, ok := u.filesByRead[readNo]
		if !ok {
			tiles = map[int]string{}
			u.filesByRead[readNo] = tiles
		}
		tiles[tile] = p
	}

	present := map[int]bool{}
	for r := range u.filesByRead {
		present[r] = true
	}
	u.readNumbers = sortedInts(present)
}

// FilesAvailable reports whether any QSeq files exist for the lane.
func (u *qseqUtil) FilesAvailable() bool {
	u.resolve()
	return len(u.readNumbers) > 0
}

// ReadNumbers returns the ascending set of QSeq read numbers (1-based)
// present for the lane, e.g. [1, 2, 3] for a paired-end run with one
// index read.
func (u *qseqUtil) ReadNumbers() []int {
	u.resolve()
	return u.readNumbers
}

// Tiles returns the tile set of the lane's first read number. Callers that
// need per-read-number tile sets should use FilesForRead directly and
// compare them (TileSetMismatch, spec.md §4.1).
func (u *qseqUtil) Tiles() []int {
	u.resolve()
	if len(u.readNumbers) == 0 {
		return nil
	}
	present := map[int]bool{}
	for t := range u.filesByRead[u.readNumbers[0]] {
		present[t] = true
	}
	return sortedInts(present)
}

// Files resolves tiles against the lane's first read number.
func (u *qseqUtil) Files(tiles []int) (map[int]string, error) {
	u.resolve()
	if len(u.readNumbers) == 0 {
		return nil, errors.E(errors.Precondition, "illumina: no qseq files for lane", u.lane)
	}
	return u.FilesForRead(u.readNumbers[0], tiles)
}

// FilesForRead resolves tiles for one QSeq read number.
func (u *qseqUtil) FilesForRead(readNo int, tiles []int) (map[int]string, error) {
	u.resolve()
	tileMap, ok := u.filesByRead[readNo]
	if !ok {
		return nil, errors.E(errors.Precondition, "illumina: no qseq files for lane", u.lane, "read", readNo)
	}
	out := make(map[int]string, len(tiles))
	for _, t := range tiles {
		p, ok := tileMap[t]
		if !ok {
			return nil, errors.E(errors.Precondition,
				"illumina: no qseq file for lane", u.lane, "read", readNo, "tile", t)
		}
		out[t] = p
	}
	return out, nil
}

// CheckReadTileSetsAgree verifies that every QSeq read number covers the
// identical tile set (TileSetMismatch, spec.md §4.1).
func (u *qseqUtil) CheckReadTileSetsAgree() error {
	u.resolve()
	var ref []int
	for i, r := range u.readNumbers {
		tiles := map[int]bool{}
		for t := range u.filesByRead[r] {
			tiles[t] = true
		}
		got := sortedInts(tiles)
		if i == 0 {
			ref = got
			continue
		}
		if !sameTiles(ref, got) {
			return errors.E(errors.Precondition,
				"illumina: qseq tile set mismatch between read", u.readNumbers[0], "and read", r)
		}
	}
	return nil
}
