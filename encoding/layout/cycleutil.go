package layout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina/encoding/bcl"
)

// cycleUtil discovers per-tile-per-cycle files laid out as
// "<laneDir>/C<cycle>.1/s_<lane>_<tile>.<ext>", used by bcl/cif/cnf. For
// ext=="bcl" it additionally recognizes the block-compressed, multi-tile
// layout of spec.md §4.10: one packed "s_<lane>.bcl.bgzf" file per cycle,
// each with a ".bci" virtual-offset sibling, plus a single tile index
// file shared by every cycle in the lane.
type cycleUtil struct {
	laneDir string
	lane    int
	ext     string

	resolved     bool
	filesByCycle map[int]map[int]string // cycle -> tile -> path

	multiTile           bool
	multiTileByCycle    map[int]string // cycle -> packed bcl path
	multiTileBciByCycle map[int]string // cycle -> .bci sibling path
	tileIndexPath       string
	cachedTileIndex     *bcl.TileIndex

	cycles []int // ascending; contiguity is checked by checkContiguous
}

func newCycleUtil(laneDir string, lane int, ext string) *cycleUtil {
	return &cycleUtil{laneDir: laneDir, lane: lane, ext: ext}
}

// resolve performs a single recursive listing of laneDir and regex-parses
// every path, mirroring encoding/pam/pamutil/file_info.go's ListIndexes.
func (u *cycleUtil) resolve() {
	if u.resolved {
		return
	}
	u.resolved = true
	u.filesByCycle = map[int]map[int]string{}

	paths, err := listDir(u.laneDir, true)
	if err != nil || len(paths) == 0 {
		return
	}
	pat := perTileCyclePattern(u.ext)
	var multiPat *regexp.Regexp
	if u.ext == "bcl" {
		multiPat = multiTileBclPattern()
		u.multiTileByCycle = map[int]string{}
		u.multiTileBciByCycle = map[int]string{}
	}
	indexName := multiTileIndexName(u.lane)
	for _, p := range paths {
		parts := strings.Split(p, "/")
		if len(parts) < 2 {
			continue
		}
		base := parts[len(parts)-1]

		if multiPat != nil && base == indexName {
			u.tileIndexPath = p
			continue
		}

		cycleDir := parts[len(parts)-2]
		cycle, ok := parseCycleDir(cycleDir)
		if !ok {
			continue
		}

		if multiPat != nil {
			if m := multiPat.FindStringSubmatch(base); m != nil && parseInt(m[1]) == u.lane {
				u.multiTileByCycle[cycle] = p
				continue
			}
			if base == multiTileBciName(u.lane) {
				u.multiTileBciByCycle[cycle] = p
				continue
			}
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
		tiles, ok := u.filesByCycle[cycle]
		if !ok {
			tiles = map[int]string{}
			u.filesByCycle[cycle] = tiles
		}
		tiles[tile] = p
	}

	if len(u.filesByCycle) == 0 && len(u.multiTileByCycle) > 0 && u.tileIndexPath != "" {
		u.multiTile = true
		u.cycles = make([]int, 0, len(u.multiTileByCycle))
		for c := range u.multiTileByCycle {
			u.cycles = append(u.cycles, c)
		}
	} else {
		u.cycles = make([]int, 0, len(u.filesByCycle))
		for c := range u.filesByCycle {
			u.cycles = append(u.cycles, c)
		}
	}
	sort.Ints(u.cycles)
}

// MultiTile reports whether this BCL lane uses the block-compressed,
// multi-tile layout (spec.md §4.10) instead of one file per (tile,
// cycle). Always false for ext != "bcl".
func (u *cycleUtil) MultiTile() bool {
	u.resolve()
	return u.multiTile
}

// MultiTileFiles returns the packed BCL path and its .bci sibling for
// cycle, or false if cycle has no multi-tile files.
func (u *cycleUtil) MultiTileFiles(cycle int) (bclPath, bciPath string, ok bool) {
	u.resolve()
	bclPath, ok = u.multiTileByCycle[cycle]
	if !ok {
		return "", "", false
	}
	bciPath, ok = u.multiTileBciByCycle[cycle]
	return bclPath, bciPath, ok
}

// TileIndexPath returns the lane's shared multi-tile tile index path, or
// false if this lane is not using multi-tile BCL.
func (u *cycleUtil) TileIndexPath() (string, bool) {
	u.resolve()
	if !u.multiTile {
		return "", false
	}
	return u.tileIndexPath, true
}

// checkContiguous validates the Open Question resolution of spec.md §9:
// discovered cycle directories must number 1..N with no gaps.
func (u *cycleUtil) checkContiguous() error {
	for i, c := range u.cycles {
		if c != i+1 {
			return errors.E(errors.Precondition,
				"illumina: lane", u.lane, u.ext, "cycle directories are not contiguous starting at 1")
		}
	}
	return nil
}

func (u *cycleUtil) FilesAvailable() bool {
	u.resolve()
	return len(u.cycles) > 0
}

func (u *cycleUtil) Cycles() []int {
	u.resolve()
	return u.cycles
}

func (u *cycleUtil) Tiles() []int {
	u.resolve()
	if u.multiTile {
		idx, err := u.tileIndex()
		if err != nil {
			return nil
		}
		tiles := append([]int(nil), idx.Tiles...)
		sort.Ints(tiles)
		return tiles
	}
	present := map[int]bool{}
	for _, tiles := range u.filesByCycle {
		for t := range tiles {
			present[t] = true
		}
	}
	return sortedInts(present)
}

// tileIndex lazily reads and caches this lane's shared multi-tile tile
// index.
func (u *cycleUtil) tileIndex() (*bcl.TileIndex, error) {
	if u.cachedTileIndex != nil {
		return u.cachedTileIndex, nil
	}
	idx, err := bcl.ReadTileIndex(u.tileIndexPath)
	if err != nil {
		return nil, err
	}
	u.cachedTileIndex = idx
	return idx, nil
}

func (u *cycleUtil) Files(tiles []int) (map[int]string, error) {
	u.resolve()
	if len(u.cycles) == 0 {
		return nil, errors.E(errors.Precondition, "illumina: no", u.ext, "cycle directories for lane", u.lane)
	}
	return u.filesForCycle(u.cycles[0], tiles)
}

func (u *cycleUtil) filesForCycle(cycle int, tiles []int) (map[int]string, error) {
	tileMap, ok := u.filesByCycle[cycle]
	if !ok {
		return nil, errors.E(errors.Precondition, "illumina: no", u.ext, "files for lane", u.lane, "cycle", cycle)
	}
	out := make(map[int]string, len(tiles))
	for _, t := range tiles {
		p, ok := tileMap[t]
		if !ok {
			return nil, errors.E(errors.Precondition,
				"illumina: no", u.ext, "file for lane", u.lane, "tile", t, "cycle", cycle)
		}
		out[t] = p
	}
	return out, nil
}

// FilesCycles resolves (tile, cycle) pairs to an ordered, per-tile list of
// CycleFile. It fails closed with a Precondition error if the discovered
// cycle directories are not contiguous 1..N.
func (u *cycleUtil) FilesCycles(tiles, cycles []int) (map[int][]CycleFile, error) {
	u.resolve()
	if u.multiTile {
		return nil, errors.E(errors.Internal,
			"illumina: lane", u.lane, "uses multi-tile bcl; use MultiTileFiles/TileIndexPath instead of FilesCycles")
	}
	if err := u.checkContiguous(); err != nil {
		return nil, err
	}
	out := make(map[int][]CycleFile, len(tiles))
	for _, c := range cycles {
		files, err := u.filesForCycle(c, tiles)
		if err != nil {
			return nil, err
		}
		for t, p := range files {
			out[t] = append(out[t], CycleFile{Cycle: c, Path: p})
		}
	}
	return out, nil
}
