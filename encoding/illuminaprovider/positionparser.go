package illuminaprovider

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina"
	"github.com/grailbio/illumina/encoding/layout"
	"github.com/grailbio/illumina/encoding/pos"
)

// positionParser adapts whichever of locs/clocs/pos was selected to the
// parser interface.
type positionParser struct {
	fu     *layout.FileUtil
	format layout.Format
	r      pos.Reader
}

func newPositionParser(fu *layout.FileUtil, format layout.Format) *positionParser {
	return &positionParser{fu: fu, format: format}
}

func (p *positionParser) dataTypes() []DataType { return []DataType{Position} }

func (p *positionParser) openTile(tile int) (int, error) {
	var fu layout.FormatUtil
	var open func(string) (pos.Reader, error)
	switch p.format {
	case layout.Locs:
		fu, open = p.fu.Locs(), pos.OpenLocs
	case layout.Clocs:
		fu, open = p.fu.Clocs(), pos.OpenClocs
	case layout.Pos:
		fu, open = p.fu.Pos(), pos.OpenPos
	default:
		return 0, errors.E(errors.Internal, "illuminaprovider: unsupported position format", p.format.String())
	}
	files, err := fu.Files([]int{tile})
	if err != nil {
		return 0, err
	}
	r, err := open(files[tile])
	if err != nil {
		return 0, err
	}
	p.r = r

	n := 0
	for r.Scan() {
		n++
	}
	if err := r.Err(); err != nil {
		r.Close()
		return 0, err
	}
	if err := r.Close(); err != nil {
		return 0, err
	}
	p.r, err = open(files[tile])
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (p *positionParser) closeTile() error {
	if p.r == nil {
		return nil
	}
	err := p.r.Close()
	p.r = nil
	return err
}

func (p *positionParser) readCluster(cd *illumina.ClusterData) error {
	if !p.r.Scan() {
		if err := p.r.Err(); err != nil {
			return err
		}
		return errors.E(errors.Internal, "illuminaprovider: position parser exhausted early")
	}
	cd.X, cd.Y = p.r.X(), p.r.Y()
	return nil
}
