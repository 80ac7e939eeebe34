package qseq

import "github.com/grailbio/illumina"

// Split is one contiguous span of a QSeq read's bases/qualities that maps
// to a single output read (spec.md §4.9).
type Split struct {
	// SourceStart, SourceEnd are the half-open byte range within the QSeq
	// record's Bases/Qualities strings.
	SourceStart, SourceEnd int
	// MajorIndex, MinorIndex identify the destination output read and its
	// offset within that read.
	MajorIndex, MinorIndex int
}

// ReadSpan is one QSeq file's contribution: its own first/last absolute
// input cycle (inclusive-inclusive), used to clip output cycle ranges to
// file boundaries so no Split crosses a QSeq file.
type ReadSpan struct {
	FirstCycle, LastCycle int
}

// BuildSplits computes, for one QSeq ReadSpan, the ordered list of Splits
// that carve its bases/qualities into the output ranges they feed. Each
// output CycleIndexRange from om is clipped to span and, where it overlaps,
// turned into exactly one Split (step 1-3 of spec.md §4.9's splitter
// algorithm; step 2 -- splitting so no range crosses a QSeq file -- is
// satisfied by the caller only ever passing ranges already bounded by
// per-file ReadSpans).
func BuildSplits(om *illumina.OutputMapping, span ReadSpan) []Split {
	ranges := om.CycleIndexRanges()
	// RangeContaining's interval lookup locates the first range this span
	// can possibly overlap, so the scan below skips straight past any
	// earlier output reads instead of walking them from the start.
	startIdx := 0
	if r, ok := om.RangeContaining(span.FirstCycle); ok {
		startIdx = r.MajorIndex
	}

	var splits []Split
	for _, r := range ranges[startIdx:] {
		if r.Start >= span.LastCycle+1 {
			break
		}
		start := max(r.Start, span.FirstCycle)
		end := min(r.End, span.LastCycle+1)
		if start >= end {
			continue
		}
		splits = append(splits, Split{
			SourceStart: start - span.FirstCycle,
			SourceEnd:   end - span.FirstCycle,
			MajorIndex:  r.MajorIndex,
			MinorIndex:  start - r.Start,
		})
	}
	return splits
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Apply copies one Split's bases and Phred-converted qualities from rec
// into the destination read's Bases/Qualities slices starting at
// s.MinorIndex.
func Apply(s Split, rec Record, destBases, destQualities []byte) {
	srcBases := rec.Bases[s.SourceStart:s.SourceEnd]
	srcQuals := rec.Qualities[s.SourceStart:s.SourceEnd]
	copy(destBases[s.MinorIndex:], srcBases)
	copy(destQualities[s.MinorIndex:], DecodeQualities(srcQuals))
}
