package illuminaprovider

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina"
	"github.com/grailbio/illumina/encoding/cif"
	"github.com/grailbio/illumina/encoding/layout"
)

// intensityParser is the per-tile-per-cycle parser shared by RawIntensities
// (Cif) and Noise (Cnf): it opens one reader per emitted cycle and writes
// each cluster's four-channel values into the matching ReadData array
// (spec.md §4.4, §4.6).
type intensityParser struct {
	fu     *layout.FileUtil
	om     *illumina.OutputMapping
	format layout.Format // Cif or Cnf
	isNoise bool

	cycles  []int
	readers map[int]*cif.Reader
	cluster int
}

func newIntensityParser(fu *layout.FileUtil, om *illumina.OutputMapping, format layout.Format) *intensityParser {
	return &intensityParser{fu: fu, om: om, format: format, isNoise: format == layout.Cnf}
}

func (p *intensityParser) dataTypes() []DataType {
	if p.isNoise {
		return []DataType{Noise}
	}
	return []DataType{RawIntensities}
}

func (p *intensityParser) cycleUtil() layout.CycleFormatUtil {
	if p.isNoise {
		return p.fu.Cnf()
	}
	return p.fu.Cif()
}

func (p *intensityParser) openTile(tile int) (int, error) {
	p.cycles = p.om.OutputCycles()
	filesByTile, err := p.cycleUtil().FilesCycles([]int{tile}, p.cycles)
	if err != nil {
		return 0, err
	}
	cycleFiles := filesByTile[tile]
	if len(cycleFiles) != len(p.cycles) {
		return 0, errors.E(errors.Precondition, "illuminaprovider:", p.format.String(), "tile", tile, "missing cycle files")
	}

	p.readers = make(map[int]*cif.Reader, len(cycleFiles))
	p.cluster = 0
	count := -1
	elementSize := -1
	for _, cf := range cycleFiles {
		r, err := cif.Open(cf.Path)
		if err != nil {
			p.closeTile()
			return 0, err
		}
		if err := r.CheckSingleCycle(); err != nil {
			r.Close()
			p.closeTile()
			return 0, err
		}
		p.readers[cf.Cycle] = r
		if count == -1 {
			count, elementSize = r.NumClusters, r.ElementSize
		} else if r.NumClusters != count || r.ElementSize != elementSize {
			p.closeTile()
			return 0, errors.E(errors.Precondition,
				"illuminaprovider:", p.format.String(), "tile", tile, "cycle", cf.Cycle, "header disagrees with other cycles")
		}
	}
	if count == -1 {
		count = 0
	}
	return count, nil
}

func (p *intensityParser) closeTile() error {
	var firstErr error
	for cycle, r := range p.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.readers, cycle)
	}
	return firstErr
}

func (p *intensityParser) readCluster(cd *illumina.ClusterData) error {
	for _, cycle := range p.cycles {
		r := p.readers[cycle]
		target, ok := p.om.Target(cycle)
		if !ok {
			return errors.E(errors.Internal, "illuminaprovider: emitted cycle", cycle, "has no output target")
		}
		read := &cd.Reads[target.MajorIndex]
		var fc *illumina.FourChannelIntensityData
		if p.isNoise {
			fc = cd.EnsureNoise(target.MajorIndex, len(read.Bases))
		} else {
			fc = cd.EnsureIntensities(target.MajorIndex, len(read.Bases))
		}
		fc.A[target.MinorIndex] = r.Value(p.cluster, 0, cycle)
		fc.C[target.MinorIndex] = r.Value(p.cluster, 1, cycle)
		fc.G[target.MinorIndex] = r.Value(p.cluster, 2, cycle)
		fc.T[target.MinorIndex] = r.Value(p.cluster, 3, cycle)
	}
	p.cluster++
	return nil
}
