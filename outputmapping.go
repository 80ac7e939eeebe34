package illumina

import (
	"github.com/biogo/store/llrb"
)

// OutputTarget is the two-dimensional destination of one non-skip input
// cycle: MajorIndex selects the output read (an index into
// OutputMapping.GetOutputDescriptors()), MinorIndex selects the position
// within that read's base/quality/intensity arrays.
type OutputTarget struct {
	MajorIndex int
	MinorIndex int
}

// CycleIndexRange is a contiguous, half-open span [Start,End) of input
// cycles (1-based, like the rest of this package) that all route to the
// same output read.
type CycleIndexRange struct {
	Start, End int // input-cycle numbers; [Start, End)
	MajorIndex int
}

// rangeKey orders CycleIndexRanges by start cycle for llrb.Tree lookups,
// mirroring the ordered-range-by-start-key idiom of
// encoding/bampair/shard_info.go's ShardInfo.byKey.
type rangeKey struct {
	start int
	r     CycleIndexRange
}

func (k rangeKey) Compare(c llrb.Comparable) int {
	return k.start - c.(rangeKey).start
}

// OutputMapping derives, from a ReadStructure, the per-input-cycle routing
// that the per-tile-per-cycle parser and the QSeq splitter use to place a
// cycle's value into the right ClusterData slot.
type OutputMapping struct {
	rs *ReadStructure

	// targets[c-1] is the OutputTarget for input cycle c, or nil if c is a
	// skip cycle.
	targets []*OutputTarget

	outputCycles      []int
	outputReadLengths []int
	outputDescriptors []ReadDescriptor
	ranges            []CycleIndexRange
	rangesByStart     llrb.Tree
}

// NewOutputMapping derives an OutputMapping from rs.
func NewOutputMapping(rs *ReadStructure) *OutputMapping {
	om := &OutputMapping{rs: rs}
	cycle := 1
	major := -1
	minor := 0
	var curRange *CycleIndexRange
	for _, d := range rs.Descriptors() {
		if d.Type == Skip {
			om.flushRange(&curRange)
			for i := 0; i < d.Length; i++ {
				om.targets = append(om.targets, nil)
				cycle++
			}
			continue
		}
		major++
		minor = 0
		om.outputDescriptors = append(om.outputDescriptors, d)
		om.outputReadLengths = append(om.outputReadLengths, d.Length)
		om.flushRange(&curRange)
		curRange = &CycleIndexRange{Start: cycle, MajorIndex: major}
		for i := 0; i < d.Length; i++ {
			om.targets = append(om.targets, &OutputTarget{MajorIndex: major, MinorIndex: minor})
			om.outputCycles = append(om.outputCycles, cycle)
			minor++
			cycle++
		}
		curRange.End = cycle
	}
	om.flushRange(&curRange)
	return om
}

func (om *OutputMapping) flushRange(cur **CycleIndexRange) {
	if *cur == nil {
		return
	}
	r := **cur
	om.ranges = append(om.ranges, r)
	om.rangesByStart.Insert(rangeKey{start: r.Start, r: r})
	*cur = nil
}

// Target returns the OutputTarget for 1-based input cycle c, and false if c
// is a skip cycle or out of range.
func (om *OutputMapping) Target(c int) (OutputTarget, bool) {
	if c < 1 || c > len(om.targets) {
		return OutputTarget{}, false
	}
	t := om.targets[c-1]
	if t == nil {
		return OutputTarget{}, false
	}
	return *t, true
}

// OutputCycles returns the sorted list of non-skip input cycle numbers.
func (om *OutputMapping) OutputCycles() []int { return om.outputCycles }

// OutputReadLengths returns the length of each emitted read, in the order
// they appear in GetOutputDescriptors.
func (om *OutputMapping) OutputReadLengths() []int { return om.outputReadLengths }

// TotalOutputCycles returns the number of non-skip input cycles.
func (om *OutputMapping) TotalOutputCycles() int { return len(om.outputCycles) }

// GetOutputDescriptors returns the non-skip descriptors, in emission order.
func (om *OutputMapping) GetOutputDescriptors() []ReadDescriptor {
	return om.outputDescriptors
}

// CycleIndexRanges returns the contiguous spans of emitted cycles in
// input-cycle space, one per emitted read, in ascending start-cycle order.
func (om *OutputMapping) CycleIndexRanges() []CycleIndexRange {
	return om.ranges
}

// RangeContaining returns the CycleIndexRange that contains input cycle c,
// and false if c falls in a gap (a skip) or outside all ranges. Used by the
// QSeq splitter (encoding/qseq) to locate the destination for a
// sub-span of a QSeq line without a linear scan.
func (om *OutputMapping) RangeContaining(c int) (CycleIndexRange, bool) {
	k := om.rangesByStart.Floor(rangeKey{start: c})
	if k == nil {
		return CycleIndexRange{}, false
	}
	r := k.(rangeKey).r
	if c < r.Start || c >= r.End {
		return CycleIndexRange{}, false
	}
	return r, true
}
