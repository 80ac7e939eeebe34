// Package illumina defines the run-geometry and cluster-record data model
// shared by the Illumina raw-run readers and the cluster assembler: read
// structures, the derived output mapping, EAMSS quality masking, and the
// ClusterData record that the parsers in encoding/* ultimately populate.
package illumina

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// ReadType classifies one ReadDescriptor (and, by extension, one emitted
// ReadData).
type ReadType int

const (
	// Template is a read of sequenced sample DNA.
	Template ReadType = iota
	// Barcode is a read of a multiplexing index sequence.
	Barcode
	// Skip is a run of cycles that are not emitted in any output read (e.g.
	// a spacer between template and index reads).
	Skip
)

func (t ReadType) String() string {
	switch t {
	case Template:
		return "Template"
	case Barcode:
		return "Barcode"
	case Skip:
		return "Skip"
	default:
		return fmt.Sprintf("ReadType(%d)", int(t))
	}
}

// ReadDescriptor is one element of a ReadStructure: a contiguous span of
// "Length" input cycles of uniform "Type".
type ReadDescriptor struct {
	Length int
	Type   ReadType
}

// ReadStructure is the declared decomposition of a run's cycles into reads,
// e.g. "76T8B76T" (two 76-cycle template reads flanking an 8-cycle barcode
// read).
//
// ReadStructure is immutable once constructed by NewReadStructure.
type ReadStructure struct {
	descriptors []ReadDescriptor

	templateIndices []int
	barcodeIndices  []int
	skipIndices     []int
}

// NewReadStructure validates descriptors and returns the ReadStructure they
// describe.
//
// ConfigError invariants (spec.md §7): descriptors must be non-empty; every
// descriptor's Length must be >= 1.
func NewReadStructure(descriptors []ReadDescriptor) (*ReadStructure, error) {
	if len(descriptors) == 0 {
		return nil, errors.E(errors.Invalid, "illumina: read structure has no descriptors")
	}
	rs := &ReadStructure{descriptors: append([]ReadDescriptor(nil), descriptors...)}
	for i, d := range rs.descriptors {
		if d.Length < 1 {
			return nil, errors.E(errors.Invalid,
				fmt.Sprintf("illumina: read structure descriptor %d has non-positive length %d", i, d.Length))
		}
		switch d.Type {
		case Template:
			rs.templateIndices = append(rs.templateIndices, i)
		case Barcode:
			rs.barcodeIndices = append(rs.barcodeIndices, i)
		case Skip:
			rs.skipIndices = append(rs.skipIndices, i)
		default:
			return nil, errors.E(errors.Invalid,
				fmt.Sprintf("illumina: read structure descriptor %d has unknown type %v", i, d.Type))
		}
	}
	return rs, nil
}

// Descriptors returns the ordered list of descriptors.
func (rs *ReadStructure) Descriptors() []ReadDescriptor { return rs.descriptors }

// TotalCycles returns the sum of all descriptor lengths, i.e. the run's total
// cycle count.
func (rs *ReadStructure) TotalCycles() int {
	n := 0
	for _, d := range rs.descriptors {
		n += d.Length
	}
	return n
}

// TemplateIndices returns the descriptor-list positions of Template reads.
func (rs *ReadStructure) TemplateIndices() []int { return rs.templateIndices }

// BarcodeIndices returns the descriptor-list positions of Barcode reads.
func (rs *ReadStructure) BarcodeIndices() []int { return rs.barcodeIndices }

// SkipIndices returns the descriptor-list positions of Skip reads.
func (rs *ReadStructure) SkipIndices() []int { return rs.skipIndices }

// NumTemplates returns the number of Template descriptors.
func (rs *ReadStructure) NumTemplates() int { return len(rs.templateIndices) }

// NumBarcodes returns the number of Barcode descriptors.
func (rs *ReadStructure) NumBarcodes() int { return len(rs.barcodeIndices) }

// NumSkips returns the number of Skip descriptors.
func (rs *ReadStructure) NumSkips() int { return len(rs.skipIndices) }
