// Package illuminaprovider selects, among the file formats discovered by
// encoding/layout, the best available parser per requested data type, and
// assembles their output into a single ordered ClusterData stream
// (spec.md §4.2, §4.11). It is the Go counterpart of
// IlluminaDataProviderFactory / IlluminaDataProvider.
package illuminaprovider

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina/encoding/layout"
)

// DataType is one kind of per-cluster field a caller may request.
type DataType int

const (
	BaseCalls DataType = iota
	QualityScores
	PF
	Position
	Barcodes
	RawIntensities
	Noise
)

func (t DataType) String() string {
	switch t {
	case BaseCalls:
		return "BaseCalls"
	case QualityScores:
		return "QualityScores"
	case PF:
		return "PF"
	case Position:
		return "Position"
	case Barcodes:
		return "Barcodes"
	case RawIntensities:
		return "RawIntensities"
	case Noise:
		return "Noise"
	default:
		return "Unknown"
	}
}

// preferences lists, for each data type, the formats that can provide it in
// preferred order (spec.md §4.2).
var preferences = map[DataType][]layout.Format{
	BaseCalls:      {layout.Bcl, layout.Qseq},
	QualityScores:  {layout.Bcl, layout.Qseq},
	PF:             {layout.Filter, layout.Qseq},
	Position:       {layout.Locs, layout.Clocs, layout.Pos, layout.Qseq},
	Barcodes:       {layout.Barcode},
	RawIntensities: {layout.Cif},
	Noise:          {layout.Cnf},
}

// Selection records which format feeds each requested data type.
type Selection struct {
	ByType map[DataType]layout.Format
	// Formats is the deduplicated set of formats actually in use, after the
	// QSeq-folding rule.
	Formats map[layout.Format]bool
}

// Select runs the format-selection policy of spec.md §4.2 against the
// formats fu reports available for its lane.
func Select(fu *layout.FileUtil, requested []DataType) (*Selection, error) {
	types := append([]DataType(nil), requested...)
	hasPosition := false
	for _, t := range types {
		if t == Position {
			hasPosition = true
		}
	}
	// If BaseCalls/PF/QualityScores are requested but Position is not,
	// implicitly add Position.
	if !hasPosition {
		for _, t := range types {
			if t == BaseCalls || t == PF || t == QualityScores {
				types = append(types, Position)
				break
			}
		}
	}

	byType := map[DataType]layout.Format{}
	anyQseq := false
	for _, t := range types {
		prefs, ok := preferences[t]
		if !ok {
			return nil, errors.E(errors.Invalid, "illuminaprovider: unknown data type", t.String())
		}
		chosen := layout.Format(-1)
		for _, f := range prefs {
			if fu.Format(f).FilesAvailable() {
				chosen = f
				break
			}
		}
		if chosen == layout.Format(-1) {
			return nil, errors.E(errors.Precondition, "illuminaprovider: no available format for", t.String())
		}
		byType[t] = chosen
		if chosen == layout.Qseq {
			anyQseq = true
		}
	}

	// QSeq-folding rule: if any selection resolves to QSeq, fold every
	// QSeq-providing requested type into QSeq.
	if anyQseq {
		for _, t := range types {
			for _, f := range preferences[t] {
				if f == layout.Qseq {
					byType[t] = layout.Qseq
					break
				}
			}
		}
	}

	formats := map[layout.Format]bool{}
	for _, f := range byType {
		formats[f] = true
	}
	return &Selection{ByType: byType, Formats: formats}, nil
}
