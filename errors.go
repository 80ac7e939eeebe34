package illumina

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// The error constructors below realize the taxonomy in spec.md §7 as
// github.com/grailbio/base/errors.Kind values, so callers can distinguish
// them with errors.Is / a type switch on *errors.Error the same way
// encoding/pam/fieldio/reader.go distinguishes errors.NotExist.

// ErrFileNotFound reports that a requested tile or cycle file is absent.
// Fatal at construction or at tile advance.
func ErrFileNotFound(path string, args ...interface{}) error {
	return errors.E(errors.NotExist, fmt.Sprintf("illumina: file not found: %s", path), fmt.Sprint(args...))
}

// ErrFormatMismatch reports a bad header magic/version, a truncated header,
// an out-of-range element size, or a negative cluster count. Fatal on
// parser open.
func ErrFormatMismatch(path string, reason string) error {
	return errors.E(errors.Invalid, fmt.Sprintf("illumina: format mismatch in %s: %s", path, reason))
}

// ErrTileSetMismatch reports that two selected formats report different
// tile lists, or that cycle files for one tile disagree on cluster count
// or element size. Fatal at factory construction or at per-tile-per-cycle
// parser open.
func ErrTileSetMismatch(reason string) error {
	return errors.E(errors.Precondition, fmt.Sprintf("illumina: tile set mismatch: %s", reason))
}

// ErrStreamDesync reports that hasNext() disagreed across parsers: one
// parser reports no more records while another still has some. Fatal at
// emission.
func ErrStreamDesync(reason string) error {
	return errors.E(errors.Internal, fmt.Sprintf("illumina: stream desynchronized: %s", reason))
}

// ErrConfigError reports an invalid ReadStructure, an empty requested data
// type set, or a lane number < 1. Fatal at construction.
func ErrConfigError(reason string) error {
	return errors.E(errors.Invalid, fmt.Sprintf("illumina: configuration error: %s", reason))
}

// ErrSeekOutOfRange reports that seekToTile(t) was called with a tile not
// present in the current file map. Fatal at call.
func ErrSeekOutOfRange(tile int) error {
	return errors.E(errors.Invalid, fmt.Sprintf("illumina: seek out of range: tile %d is not available", tile))
}
