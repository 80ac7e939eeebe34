package illuminaprovider

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina"
	"github.com/grailbio/illumina/encoding/layout"
	"github.com/grailbio/illumina/encoding/qseq"
)

// qseqParser is the combined-format fallback parser (spec.md §4.9): it
// folds every requested data type QSeq can provide into one pass over the
// lane's QSeq files, splitting each physical read's bases/qualities across
// the output reads it covers.
//
// Read numbers are assumed to align 1:1, in ascending order, with the
// OutputMapping's non-skip CycleIndexRanges -- the well-formed case where
// each physical QSeq read corresponds to one ReadStructure read. A run
// whose QSeq read boundaries do not follow ReadStructure boundaries would
// need its true per-read cycle spans supplied separately; BuildSplits
// itself places no such restriction, only this default span derivation
// does (see DESIGN.md).
type qseqParser struct {
	fu     *layout.FileUtil
	om     *illumina.OutputMapping
	types  []DataType

	readNumbers []int
	spans       map[int]qseq.ReadSpan
	splits      map[int][]qseq.Split
	readers     map[int]*qseq.Reader
}

func newQseqParser(fu *layout.FileUtil, om *illumina.OutputMapping, types []DataType) *qseqParser {
	ranges := om.CycleIndexRanges()
	spans := make(map[int]qseq.ReadSpan, len(ranges))
	var readNumbers []int
	for _, r := range ranges {
		readNo := r.MajorIndex + 1
		spans[readNo] = qseq.ReadSpan{FirstCycle: r.Start, LastCycle: r.End - 1}
		readNumbers = append(readNumbers, readNo)
	}
	splits := make(map[int][]qseq.Split, len(readNumbers))
	for _, readNo := range readNumbers {
		splits[readNo] = qseq.BuildSplits(om, spans[readNo])
	}
	return &qseqParser{fu: fu, om: om, types: types, readNumbers: readNumbers, spans: spans, splits: splits}
}

func (p *qseqParser) dataTypes() []DataType { return p.types }

func (p *qseqParser) openTile(tile int) (int, error) {
	p.readers = make(map[int]*qseq.Reader, len(p.readNumbers))
	count := -1
	for _, readNo := range p.readNumbers {
		files, err := p.fu.Qseq().FilesForRead(readNo, []int{tile})
		if err != nil {
			p.closeTile()
			return 0, err
		}
		counter, err := qseq.Open(files[tile])
		if err != nil {
			p.closeTile()
			return 0, err
		}
		n := 0
		for counter.Scan() {
			n++
		}
		if err := counter.Err(); err != nil {
			counter.Close()
			p.closeTile()
			return 0, err
		}
		counter.Close()
		if count == -1 {
			count = n
		} else if n != count {
			p.closeTile()
			return 0, errors.E(errors.Precondition, "illuminaprovider: qseq tile", tile, "read", readNo, "cluster count disagrees")
		}

		r, err := qseq.Open(files[tile])
		if err != nil {
			p.closeTile()
			return 0, err
		}
		p.readers[readNo] = r
	}
	if count == -1 {
		count = 0
	}
	return count, nil
}

func (p *qseqParser) closeTile() error {
	var firstErr error
	for readNo, r := range p.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.readers, readNo)
	}
	return firstErr
}

func (p *qseqParser) wants(t DataType) bool {
	for _, want := range p.types {
		if want == t {
			return true
		}
	}
	return false
}

func (p *qseqParser) readCluster(cd *illumina.ClusterData) error {
	for _, readNo := range p.readNumbers {
		r := p.readers[readNo]
		if !r.Scan() {
			if err := r.Err(); err != nil {
				return err
			}
			return errors.E(errors.Internal, "illuminaprovider: qseq read", readNo, "exhausted early")
		}
		rec := r.Record()
		if p.wants(PF) {
			cd.PF = rec.PF
		}
		if p.wants(Position) {
			cd.X, cd.Y = rec.X, rec.Y
		}
		if p.wants(BaseCalls) || p.wants(QualityScores) {
			for _, s := range p.splits[readNo] {
				read := &cd.Reads[s.MajorIndex]
				qseq.Apply(s, rec, read.Bases, read.Qualities)
			}
		}
	}
	return nil
}
