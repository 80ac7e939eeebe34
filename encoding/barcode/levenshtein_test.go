package barcode

import (
	"testing"

	"github.com/antzucaro/matchr"
	"github.com/stretchr/testify/assert"
)

func TestLevenshteinWithDownstream(t *testing.T) {
	tests := []struct {
		tag1, tag2             string
		downstream1, downstream2 string
		want                   int
	}{
		{"ATCGGT", "ACGGTX", "XYZ", "", 1},
		{"ACGGTX", "ATCGGT", "", "XYZ", 1},
		{"ACAATTGG", "AXAAXTGX", "", "", 3},
		{"ATATACGGT", "ACGGTHIJK", "HIJKLMN", "", 4},
		{"CTCAGCGGCT", "AGCCTAACTC", "ACACTCTTTCCCTACACGACGCTCTTCCGATCT", "GTGACTGGAGTTCAGACGTGTGCTCTTCCGATC", 8},
	}
	for _, test := range tests {
		got := levenshtein(test.tag1, test.tag2, test.downstream1, test.downstream2)
		assert.Equal(t, test.want, got)
	}
}

func TestLevenshteinAgreesWithMatchrStandardCase(t *testing.T) {
	pairs := [][2]string{
		{"ACAATTGG", "AXAAXTGX"},
		{"ACGTACGT", "ACGTACGT"},
		{"TTTTTTTT", "AAAAAAAA"},
	}
	for _, p := range pairs {
		ours := levenshtein(p[0], p[1], "", "")
		reference := matchr.Levenshtein(p[0], p[1])
		assert.Equal(t, reference, ours)
	}
}
