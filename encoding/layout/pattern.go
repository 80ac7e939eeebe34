// Package layout discovers which raw-run file formats are present for a
// requested lane of an Illumina basecalls/intensities directory tree, which
// tiles and cycles each format covers, and maps tile/cycle numbers to file
// paths. It is the Go counterpart of IlluminaFileUtil (spec.md §4.1).
package layout

import (
	"fmt"
	"regexp"
	"strconv"
)

// perTilePattern matches "s_<lane>_<tile>.<ext>[.gz|.bz2]" -- used by
// locs/clocs/filter. The tile group is 1-4 digits, unpadded.
func perTilePattern(ext string) *regexp.Regexp {
	return regexp.MustCompile(`^s_(\d+)_(\d{1,4})` + regexp.QuoteMeta("."+ext) + `(\.gz|\.bz2)?$`)
}

// perTileCyclePattern matches "s_<lane>_<tile>.<ext>" inside a cycle
// subdirectory -- used by bcl/cif/cnf.
func perTileCyclePattern(ext string) *regexp.Regexp {
	return regexp.MustCompile(`^s_(\d+)_(\d{1,4})` + regexp.QuoteMeta("."+ext) + `$`)
}

// posFilePattern matches "s_<lane>_<tile>_pos.txt[.gz|.bz2]", the naming
// used for the text "pos" position format (spec.md §6).
func posFilePattern() *regexp.Regexp {
	return regexp.MustCompile(`^s_(\d+)_(\d{1,4})_pos\.txt(\.gz|\.bz2)?$`)
}

// qseqPattern matches "s_<lane>_<readNo>_<tttt>_qseq.txt[.gz|.bz2]". The
// tile group is always zero-padded to 4 digits (spec.md §4.1).
var qseqPattern = regexp.MustCompile(`^s_(\d+)_(\d)_(\d{4})_qseq\.txt(\.gz|\.bz2)?$`)

// multiTileBclPattern matches "s_<lane>.bcl.bgzf", the block-compressed,
// multiple-tiles-packed-together BCL file that replaces the per-tile
// "s_<lane>_<tile>.bcl" file inside a cycle subdirectory when a run uses
// multi-tile BCL (spec.md §4.10).
func multiTileBclPattern() *regexp.Regexp {
	return regexp.MustCompile(`^s_(\d+)\.bcl\.bgzf$`)
}

// multiTileBciName returns the virtual-offset index sibling of a
// multi-tile BCL cycle file.
func multiTileBciName(lane int) string {
	return fmt.Sprintf("s_%d.bcl.bgzf.bci", lane)
}

// multiTileIndexName returns the global, per-lane tile index file that
// accompanies multi-tile BCL: a single (tileNumber, clusterCount) list
// shared by every cycle file in the lane.
func multiTileIndexName(lane int) string {
	return fmt.Sprintf("s_%d.bcl.tileindex", lane)
}

// cycleDirPattern matches a cycle subdirectory name "C<cycle>.1".
var cycleDirPattern = regexp.MustCompile(`^C(\d+)\.1$`)

// laneDirPattern matches a lane subdirectory name "L<lane>", zero-padded to
// width 3.
var laneDirPattern = regexp.MustCompile(`^L(\d{3,})$`)

// laneDirName returns the lane subdirectory name for lane, e.g. lane 7 ->
// "L007".
func laneDirName(lane int) string {
	return fmt.Sprintf("L%03d", lane)
}

// cycleDirName returns the cycle subdirectory name for cycle, e.g. cycle 12
// -> "C12.1".
func cycleDirName(cycle int) string {
	return fmt.Sprintf("C%d.1", cycle)
}

// qseqTileToken formats a tile number as QSeq's zero-padded 4-digit token.
func qseqTileToken(tile int) string {
	return fmt.Sprintf("%04d", tile)
}

// sTileFile formats the standard "s_<lane>_<tile>.<ext>" per-tile file name.
func sTileFile(lane, tile int, ext string) string {
	return fmt.Sprintf("s_%d_%d.%s", lane, tile, ext)
}

// qseqFile formats a QSeq file name for the given lane, read number, and
// tile.
func qseqFile(lane, readNo, tile int) string {
	return fmt.Sprintf("s_%d_%d_%s_qseq.txt", lane, readNo, qseqTileToken(tile))
}

// parseCycleDir returns the cycle number encoded in a cycle directory name,
// or false if name does not match the expected "C<n>.1" pattern.
func parseCycleDir(name string) (int, bool) {
	m := cycleDirPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
