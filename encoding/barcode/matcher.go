package barcode

import "github.com/grailbio/base/errors"

// Matcher finds the expected tag nearest, by edit distance, to a raw index
// read (spec.md §4.12).
type Matcher struct {
	tags      []string
	maxMismatch int
}

// NewMatcher builds a Matcher over the given panel of equal-length
// expected tags, accepting a match only when its edit distance is at most
// maxMismatch.
func NewMatcher(tags []string, maxMismatch int) (*Matcher, error) {
	if len(tags) == 0 {
		return nil, errors.E(errors.Invalid, "barcode: matcher requires at least one expected tag")
	}
	n := len(tags[0])
	for _, t := range tags {
		if len(t) != n {
			return nil, errors.E(errors.Invalid, "barcode: expected tags must have equal length")
		}
	}
	return &Matcher{tags: append([]string(nil), tags...), maxMismatch: maxMismatch}, nil
}

// Match finds the expected tag nearest to rawBases (an index read of the
// same length as the panel's tags, plus any downstream bases available for
// deletion recovery). It returns the matched tag, its edit distance, and
// whether the distance was within the configured threshold.
func (m *Matcher) Match(rawBases string, downstream string) (tag string, mismatches int, ok bool) {
	best := -1
	bestTag := ""
	for _, t := range m.tags {
		d := levenshtein(t, rawBases[:len(t)], "", downstream)
		if best == -1 || d < best {
			best = d
			bestTag = t
		}
	}
	return bestTag, best, best >= 0 && best <= m.maxMismatch
}
