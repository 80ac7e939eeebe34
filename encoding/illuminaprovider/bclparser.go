package illuminaprovider

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina"
	"github.com/grailbio/illumina/encoding/bcl"
	"github.com/grailbio/illumina/encoding/layout"
)

// cycleReader is satisfied by both the single-tile bcl.Reader and the
// block-compressed, multi-tile bcl.MultiTileReader (spec.md §4.10): the
// parser drives whichever one discovery selected without caring which.
type cycleReader interface {
	NumClusters() int
	Scan() bool
	Base() byte
	Quality() byte
	Err() error
	Close() error
}

// bclParser is the per-tile-per-cycle parser for base calls and qualities
// (spec.md §4.4, §4.5): it opens one BCL reader per emitted cycle and
// writes into each cluster's ReadData.Bases/Qualities via the
// OutputMapping.
type bclParser struct {
	fu *layout.FileUtil
	om *illumina.OutputMapping

	cycles  []int
	readers map[int]cycleReader
}

func newBCLParser(fu *layout.FileUtil, om *illumina.OutputMapping) *bclParser {
	return &bclParser{fu: fu, om: om}
}

func (p *bclParser) dataTypes() []DataType { return []DataType{BaseCalls, QualityScores} }

func (p *bclParser) openTile(tile int) (int, error) {
	p.cycles = p.om.OutputCycles()
	if p.fu.Bcl().MultiTile() {
		return p.openMultiTile(tile)
	}

	filesByTile, err := p.fu.Bcl().FilesCycles([]int{tile}, p.cycles)
	if err != nil {
		return 0, err
	}
	cycleFiles := filesByTile[tile]
	if len(cycleFiles) != len(p.cycles) {
		return 0, errors.E(errors.Precondition, "illuminaprovider: bcl tile", tile, "missing cycle files")
	}

	p.readers = make(map[int]cycleReader, len(cycleFiles))
	count := -1
	for _, cf := range cycleFiles {
		r, err := bcl.Open(cf.Path)
		if err != nil {
			p.closeTile()
			return 0, err
		}
		p.readers[cf.Cycle] = r
		if count == -1 {
			count = r.NumClusters()
		} else if r.NumClusters() != count {
			p.closeTile()
			return 0, errors.E(errors.Precondition,
				"illuminaprovider: bcl tile", tile, "cycle", cf.Cycle, "cluster count disagrees with other cycles")
		}
	}
	if count == -1 {
		count = 0
	}
	return count, nil
}

// openMultiTile opens tile's records out of the block-compressed,
// multi-tile BCL layout: one packed file per cycle plus a lane-shared
// tile index and per-cycle .bci virtual-offset index (spec.md §4.10).
func (p *bclParser) openMultiTile(tile int) (int, error) {
	tileIndexPath, ok := p.fu.Bcl().TileIndexPath()
	if !ok {
		return 0, errors.E(errors.Internal, "illuminaprovider: bcl tile index unavailable")
	}
	tileIndex, err := bcl.ReadTileIndex(tileIndexPath)
	if err != nil {
		return 0, err
	}

	p.readers = make(map[int]cycleReader, len(p.cycles))
	count := -1
	for _, cycle := range p.cycles {
		bclPath, bciPath, ok := p.fu.Bcl().MultiTileFiles(cycle)
		if !ok {
			p.closeTile()
			return 0, errors.E(errors.Precondition, "illuminaprovider: bcl cycle", cycle, "missing multi-tile files")
		}
		r, err := bcl.OpenTile(bclPath, tileIndex, bciPath, tile)
		if err != nil {
			p.closeTile()
			return 0, err
		}
		p.readers[cycle] = r
		if count == -1 {
			count = r.NumClusters()
		} else if r.NumClusters() != count {
			p.closeTile()
			return 0, errors.E(errors.Precondition,
				"illuminaprovider: bcl tile", tile, "cycle", cycle, "cluster count disagrees with other cycles")
		}
	}
	if count == -1 {
		count = 0
	}
	return count, nil
}

func (p *bclParser) closeTile() error {
	var firstErr error
	for cycle, r := range p.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.readers, cycle)
	}
	return firstErr
}

func (p *bclParser) readCluster(cd *illumina.ClusterData) error {
	for _, cycle := range p.cycles {
		r := p.readers[cycle]
		if !r.Scan() {
			if err := r.Err(); err != nil {
				return err
			}
			return errors.E(errors.Internal, "illuminaprovider: bcl cycle", cycle, "exhausted early")
		}
		target, ok := p.om.Target(cycle)
		if !ok {
			return errors.E(errors.Internal, "illuminaprovider: emitted cycle", cycle, "has no output target")
		}
		read := &cd.Reads[target.MajorIndex]
		read.Bases[target.MinorIndex] = r.Base()
		read.Qualities[target.MinorIndex] = r.Quality()
	}
	return nil
}
