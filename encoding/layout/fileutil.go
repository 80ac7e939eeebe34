package layout

import (
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

// Format enumerates the raw-run file formats IlluminaFileUtil can discover.
type Format int

const (
	Qseq Format = iota
	Bcl
	Cif
	Cnf
	Locs
	Clocs
	Pos
	Filter
	Barcode
)

func (f Format) String() string {
	switch f {
	case Qseq:
		return "qseq"
	case Bcl:
		return "bcl"
	case Cif:
		return "cif"
	case Cnf:
		return "cnf"
	case Locs:
		return "locs"
	case Clocs:
		return "clocs"
	case Pos:
		return "pos"
	case Filter:
		return "filter"
	case Barcode:
		return "barcode"
	default:
		return "unknown"
	}
}

func joinPath(dir, name string) string {
	return strings.TrimRight(dir, "/") + "/" + name
}

// CycleFile pairs a cycle number with the path of its per-tile file.
type CycleFile struct {
	Cycle int
	Path  string
}

// FormatUtil is implemented by every per-format discovery helper. It mirrors
// the per-format "format utility" of spec.md §4.1.
type FormatUtil interface {
	// FilesAvailable reports whether this format has any files for the
	// configured lane.
	FilesAvailable() bool
	// Tiles returns the ascending tile numbers this format covers.
	Tiles() []int
	// Files resolves tiles to file paths. It returns TileSetMismatch-style
	// errors (via errors.E) if a requested tile is missing.
	Files(tiles []int) (map[int]string, error)
}

// CycleFormatUtil is implemented by the per-tile-per-cycle formats (Bcl,
// Cif, Cnf) in addition to FormatUtil.
type CycleFormatUtil interface {
	FormatUtil
	// Cycles returns the ascending cycle numbers this format covers for the
	// lane, as discovered; a set with gaps is returned as is and rejected
	// by FilesCycles.
	Cycles() []int
	// FilesCycles resolves (tile, cycle) pairs to file paths, one ordered
	// list of CycleFile per requested tile.
	FilesCycles(tiles, cycles []int) (map[int][]CycleFile, error)
}

// Config identifies the run directories and lane that a FileUtil discovers
// files for. It is passed by value, not held by reference, per spec.md §9's
// "cyclic/back-reference" design note.
type Config struct {
	// BasecallsDir is the run's "Data/Intensities/BaseCalls" directory.
	BasecallsDir string
	// IntensitiesDir is the run's "Data/Intensities" directory (the
	// parent of BasecallsDir).
	IntensitiesDir string
	Lane           int
}

func (c Config) laneBasecallsDir() string {
	return joinPath(c.BasecallsDir, laneDirName(c.Lane))
}

func (c Config) laneIntensitiesDir() string {
	return joinPath(c.IntensitiesDir, laneDirName(c.Lane))
}

// FileUtil discovers, for one lane, which formats are present and what
// tiles/cycles they cover. It is the Go counterpart of IlluminaFileUtil.
type FileUtil struct {
	cfg Config

	qseq    *qseqUtil
	bcl     *cycleUtil
	cif     *cycleUtil
	cnf     *cycleUtil
	locs    *tileUtil
	clocs   *tileUtil
	pos     *tileUtil
	filter  *tileUtil
	barcode *tileUtil
}

// New constructs a FileUtil for the given configuration. Discovery is lazy:
// no files are scanned until a Format method is called.
func New(cfg Config) *FileUtil {
	return &FileUtil{cfg: cfg}
}

// Format returns the FormatUtil for f. Bcl, Cif, and Cnf additionally
// satisfy CycleFormatUtil.
func (u *FileUtil) Format(f Format) FormatUtil {
	switch f {
	case Qseq:
		return u.Qseq()
	case Bcl:
		return u.Bcl()
	case Cif:
		return u.Cif()
	case Cnf:
		return u.Cnf()
	case Locs:
		return u.Locs()
	case Clocs:
		return u.Clocs()
	case Pos:
		return u.Pos()
	case Filter:
		return u.Filter()
	case Barcode:
		return u.Barcode()
	default:
		return nil
	}
}

// Qseq returns the QSeq discovery helper for this lane.
func (u *FileUtil) Qseq() *qseqUtil {
	if u.qseq == nil {
		u.qseq = newQseqUtil(u.cfg.BasecallsDir, u.cfg.Lane)
	}
	return u.qseq
}

// Bcl returns the BCL discovery helper for this lane.
func (u *FileUtil) Bcl() *cycleUtil {
	if u.bcl == nil {
		u.bcl = newCycleUtil(u.cfg.laneBasecallsDir(), u.cfg.Lane, "bcl")
	}
	return u.bcl
}

// Cif returns the CIF discovery helper for this lane.
func (u *FileUtil) Cif() *cycleUtil {
	if u.cif == nil {
		u.cif = newCycleUtil(u.cfg.laneIntensitiesDir(), u.cfg.Lane, "cif")
	}
	return u.cif
}

// Cnf returns the CNF discovery helper for this lane.
func (u *FileUtil) Cnf() *cycleUtil {
	if u.cnf == nil {
		u.cnf = newCycleUtil(u.cfg.laneIntensitiesDir(), u.cfg.Lane, "cnf")
	}
	return u.cnf
}

// Locs returns the locs discovery helper for this lane.
func (u *FileUtil) Locs() *tileUtil {
	if u.locs == nil {
		u.locs = newTileUtil(u.cfg.laneIntensitiesDir(), u.cfg.Lane, "locs", false)
	}
	return u.locs
}

// Clocs returns the clocs discovery helper for this lane.
func (u *FileUtil) Clocs() *tileUtil {
	if u.clocs == nil {
		u.clocs = newTileUtil(u.cfg.laneIntensitiesDir(), u.cfg.Lane, "clocs", false)
	}
	return u.clocs
}

// Pos returns the pos discovery helper for this lane. Unlike locs/clocs,
// "*_pos.txt" files live directly under IntensitiesDir (spec.md §6).
func (u *FileUtil) Pos() *tileUtil {
	if u.pos == nil {
		u.pos = newPosUtil(u.cfg.IntensitiesDir, u.cfg.Lane)
	}
	return u.pos
}

// Filter returns the filter discovery helper for this lane.
func (u *FileUtil) Filter() *tileUtil {
	if u.filter == nil {
		u.filter = newTileUtil(u.cfg.laneBasecallsDir(), u.cfg.Lane, "filter", false)
	}
	return u.filter
}

// Barcode returns the barcode discovery helper for this lane. Unlike
// filter, "*_barcode.txt" files live directly under BasecallsDir.
func (u *FileUtil) Barcode() *tileUtil {
	if u.barcode == nil {
		u.barcode = newBarcodeUtil(u.cfg.BasecallsDir, u.cfg.Lane)
	}
	return u.barcode
}

// CheckTileSetsAgree verifies the TileSetMismatch invariant of spec.md
// §4.1: when multiple formats are selected, all must report the identical
// tile set.
func CheckTileSetsAgree(utils map[Format]FormatUtil) error {
	var refFormat Format
	var ref []int
	first := true
	for f, u := range utils {
		tiles := u.Tiles()
		if first {
			refFormat, ref, first = f, tiles, false
			continue
		}
		if !sameTiles(ref, tiles) {
			return errors.E(errors.Precondition,
				"illumina: tile set mismatch between", refFormat.String(), "and", f.String())
		}
	}
	return nil
}

func sameTiles(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedInts(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// listDir is a thin wrapper around github.com/grailbio/base/file.List that
// collects every entry path under dir (optionally recursive), matching the
// listing idiom of encoding/pam/pamutil/file_info.go's ListIndexes.
func listDir(dir string, recursive bool) ([]string, error) {
	ctx := vcontext.Background()
	lister := file.List(ctx, dir, recursive)
	var paths []string
	for lister.Scan() {
		paths = append(paths, lister.Path())
	}
	if err := lister.Err(); err != nil {
		log.Debug.Printf("illumina/layout: listing %s: %v", dir, err)
		return nil, nil
	}
	return paths, nil
}
