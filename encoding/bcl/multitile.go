package bcl

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bgzf"
)

// TileIndex is the global, per-cycle-file list of (tileNumber, clusterCount)
// pairs that accompanies a block-compressed multi-tile BCL file (spec.md
// §4.10).
type TileIndex struct {
	Tiles         []int
	ClusterCounts []int
}

// positionOf returns the zero-based index of tile within the index, or
// false if tile is not present.
func (idx *TileIndex) positionOf(tile int) (int, bool) {
	for i, t := range idx.Tiles {
		if t == tile {
			return i, true
		}
	}
	return 0, false
}

// ReadTileIndex reads a tile-index file: a sequence of little-endian
// (u32 tileNumber, u32 clusterCount) pairs.
func ReadTileIndex(path string) (*TileIndex, error) {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(errors.NotExist, "bcl: opening tile index", path, err)
	}
	defer f.Close(ctx)

	data, err := io.ReadAll(f.Reader(ctx))
	if err != nil {
		return nil, errors.E(errors.Invalid, "bcl: reading tile index", path, err)
	}
	if len(data)%8 != 0 {
		return nil, errors.E(errors.Invalid, "bcl: tile index", path, "has truncated trailing record")
	}
	idx := &TileIndex{}
	for off := 0; off < len(data); off += 8 {
		idx.Tiles = append(idx.Tiles, int(binary.LittleEndian.Uint32(data[off:])))
		idx.ClusterCounts = append(idx.ClusterCounts, int(binary.LittleEndian.Uint32(data[off+4:])))
	}
	return idx, nil
}

// BCI is the per-cycle-file virtual-offset index: one little-endian u64
// bgzf virtual offset per tile, in tile-index order.
type BCI struct {
	Offsets []bgzf.Offset
}

// ReadBCI reads a .bci virtual-offset index file.
func ReadBCI(path string) (*BCI, error) {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(errors.NotExist, "bcl: opening bci index", path, err)
	}
	defer f.Close(ctx)

	data, err := io.ReadAll(f.Reader(ctx))
	if err != nil {
		return nil, errors.E(errors.Invalid, "bcl: reading bci index", path, err)
	}
	if len(data)%8 != 0 {
		return nil, errors.E(errors.Invalid, "bcl: bci index", path, "has truncated trailing record")
	}
	bci := &BCI{}
	for off := 0; off < len(data); off += 8 {
		v := binary.LittleEndian.Uint64(data[off:])
		bci.Offsets = append(bci.Offsets, bgzf.Offset{File: int64(v >> 16), Block: uint16(v & 0xffff)})
	}
	return bci, nil
}

// MultiTileReader reads one tile's records out of a block-compressed BCL
// file that packs multiple tiles together, using the tile index and the
// .bci virtual-offset index to seek directly to the tile's first record
// (spec.md §4.10).
type MultiTileReader struct {
	r         io.Reader // the seeked bgzf.Reader in production, a fake in tests
	closer    func() error
	count     int
	remaining int
	base      byte
	quality   byte
	err       error
}

// OpenTile opens tile from a block-compressed, multi-tile BCL file at
// bclPath, using the sibling tileIndex and bciPath index files.
func OpenTile(bclPath string, tileIndex *TileIndex, bciPath string, tile int) (*MultiTileReader, error) {
	pos, ok := tileIndex.positionOf(tile)
	if !ok {
		return nil, errors.E(errors.Precondition, "bcl: tile", tile, "not present in tile index")
	}
	bci, err := ReadBCI(bciPath)
	if err != nil {
		return nil, err
	}
	if len(bci.Offsets) != len(tileIndex.Tiles) {
		return nil, errors.E(errors.Precondition,
			"bcl: bci index", bciPath, "has", len(bci.Offsets), "entries, tile index has", len(tileIndex.Tiles))
	}

	ctx := vcontext.Background()
	f, err := file.Open(ctx, bclPath)
	if err != nil {
		return nil, errors.E(errors.NotExist, "bcl: opening", bclPath, err)
	}
	rs, ok := f.Reader(ctx).(io.ReadSeeker)
	if !ok {
		f.Close(ctx)
		return nil, errors.E(errors.Internal, "bcl:", bclPath, "does not support seeking")
	}
	bgzfReader, err := bgzf.NewReader(rs, 1)
	if err != nil {
		f.Close(ctx)
		return nil, errors.E(errors.Invalid, "bcl: opening bgzf stream", bclPath, err)
	}
	if err := bgzfReader.Seek(bci.Offsets[pos]); err != nil {
		f.Close(ctx)
		return nil, errors.E(errors.Invalid, "bcl: seeking to tile", tile, "in", bclPath, err)
	}

	return &MultiTileReader{
		r:         bgzfReader,
		closer:    func() error { return f.Close(ctx) },
		count:     tileIndex.ClusterCounts[pos],
		remaining: tileIndex.ClusterCounts[pos],
	}, nil
}

// NumClusters returns the cluster count declared for this tile in the
// tile index.
func (r *MultiTileReader) NumClusters() int { return r.count }

// Scan is the count-limited iterator of spec.md §4.10: it yields exactly
// ClusterCount records for the tile and then reports end-of-stream,
// ignoring any trailing bytes belonging to the next tile in the block.
func (r *MultiTileReader) Scan() bool {
	if r.err != nil || r.remaining <= 0 {
		return false
	}
	var b [1]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		r.err = errors.E(errors.Invalid, "bcl: short read in multi-tile stream", err)
		return false
	}
	r.remaining--
	if b[0] == 0 {
		r.base, r.quality = 'N', 0
		return true
	}
	r.base = bases[b[0]&0x03]
	r.quality = b[0] >> 2
	return true
}

// Base returns the current cluster's base call.
func (r *MultiTileReader) Base() byte { return r.base }

// Quality returns the current cluster's Phred quality.
func (r *MultiTileReader) Quality() byte { return r.quality }

// Err returns the first error encountered during iteration, if any.
func (r *MultiTileReader) Err() error { return r.err }

// Close releases the underlying file handle.
func (r *MultiTileReader) Close() error { return r.closer() }
