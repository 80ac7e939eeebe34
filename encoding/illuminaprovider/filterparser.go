package illuminaprovider

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina"
	"github.com/grailbio/illumina/encoding/filter"
	"github.com/grailbio/illumina/encoding/layout"
)

// filterParser adapts the per-tile filter reader to the parser interface.
type filterParser struct {
	fu   *layout.FileUtil
	path string
	r    *filter.Reader
}

func newFilterParser(fu *layout.FileUtil) *filterParser {
	return &filterParser{fu: fu}
}

func (p *filterParser) dataTypes() []DataType { return []DataType{PF} }

func (p *filterParser) openTile(tile int) (int, error) {
	files, err := p.fu.Filter().Files([]int{tile})
	if err != nil {
		return 0, err
	}
	p.path = files[tile]

	// Filter files have no explicit cluster-count header, unlike BCL, so the
	// count is derived by scanning once, then the reader is reopened so
	// iteration starts from the top.
	counter, err := filter.Open(p.path)
	if err != nil {
		return 0, err
	}
	n := 0
	for counter.Scan() {
		n++
	}
	if err := counter.Err(); err != nil {
		counter.Close()
		return 0, err
	}
	if err := counter.Close(); err != nil {
		return 0, err
	}

	p.r, err = filter.Open(p.path)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (p *filterParser) closeTile() error {
	if p.r == nil {
		return nil
	}
	err := p.r.Close()
	p.r = nil
	return err
}

func (p *filterParser) readCluster(cd *illumina.ClusterData) error {
	if !p.r.Scan() {
		if err := p.r.Err(); err != nil {
			return err
		}
		return errors.E(errors.Internal, "illuminaprovider: filter parser exhausted early")
	}
	cd.PF = p.r.PF()
	return nil
}
