package layout

import (
	"regexp"
	"strings"

	"github.com/grailbio/base/errors"
)

// tileUtil discovers per-tile files of one extension directly under a
// single directory, e.g. "s_1_1101.filter" under a lane directory, or
// "s_1_1101_pos.txt" under IntensitiesDir.
type tileUtil struct {
	dir       string
	lane      int
	ext       string
	posStyle  bool // true for the "s_<lane>_<tile>_pos.txt" naming
	resolved  bool
	fileByTile map[int]string
}

func newTileUtil(dir string, lane int, ext string, posStyle bool) *tileUtil {
	return &tileUtil{dir: dir, lane: lane, ext: ext, posStyle: posStyle}
}

func newPosUtil(intensitiesDir string, lane int) *tileUtil {
	return newTileUtil(intensitiesDir, lane, "pos", true)
}

func newBarcodeUtil(basecallsDir string, lane int) *tileUtil {
	return newTileUtil(basecallsDir, lane, "barcode", false)
}

func (u *tileUtil) resolve() {
	if u.resolved {
		return
	}
	u.resolved = true
	u.fileByTile = map[int]string{}

	paths, err := listDir(u.dir, false)
	if err != nil || len(paths) == 0 {
		return
	}
	pat := perTilePattern(u.ext)
	if u.posStyle {
		pat = posFilePattern()
	} else if u.ext == "barcode" {
		pat = regexp.MustCompile(`^s_(\d+)_(\d{1,4})_barcode\.txt(\.gz|\.bz2)?$`)
	}
	for _, p := range paths {
		base := p
		if i := strings.LastIndex(p, "/"); i >= 0 {
			base = p[i+1:]
		}
		m := pat.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		lane := parseInt(m[1])
		if lane != u.lane {
			continue
		}
		tile := parseInt(m[2])
		u.fileByTile[tile] = p
	}
}

func (u *tileUtil) FilesAvailable() bool {
	u.resolve()
	return len(u.fileByTile) > 0
}

func (u *tileUtil) Tiles() []int {
	u.resolve()
	present := make(map[int]bool, len(u.fileByTile))
	for t := range u.fileByTile {
		present[t] = true
	}
	return sortedInts(present)
}

func (u *tileUtil) Files(tiles []int) (map[int]string, error) {
	u.resolve()
	out := make(map[int]string, len(tiles))
	for _, t := range tiles {
		p, ok := u.fileByTile[t]
		if !ok {
			return nil, errors.E(errors.Precondition,
				"illumina: no", u.ext, "file for lane", u.lane, "tile", t)
		}
		out[t] = p
	}
	return out, nil
}
