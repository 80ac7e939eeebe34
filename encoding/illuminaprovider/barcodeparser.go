package illuminaprovider

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina"
	"github.com/grailbio/illumina/encoding/barcode"
	"github.com/grailbio/illumina/encoding/layout"
)

// barcodeParser adapts the per-tile barcode-assignment reader to the
// parser interface.
type barcodeParser struct {
	fu *layout.FileUtil
	r  *barcode.Reader
}

func newBarcodeParser(fu *layout.FileUtil) *barcodeParser {
	return &barcodeParser{fu: fu}
}

func (p *barcodeParser) dataTypes() []DataType { return []DataType{Barcodes} }

func (p *barcodeParser) openTile(tile int) (int, error) {
	files, err := p.fu.Barcode().Files([]int{tile})
	if err != nil {
		return 0, err
	}
	counter, err := barcode.Open(files[tile])
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
	p.r, err = barcode.Open(files[tile])
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (p *barcodeParser) closeTile() error {
	if p.r == nil {
		return nil
	}
	err := p.r.Close()
	p.r = nil
	return err
}

func (p *barcodeParser) readCluster(cd *illumina.ClusterData) error {
	if !p.r.Scan() {
		if err := p.r.Err(); err != nil {
			return err
		}
		return errors.E(errors.Internal, "illuminaprovider: barcode parser exhausted early")
	}
	cd.MatchedBarcode = p.r.Tag()
	return nil
}
