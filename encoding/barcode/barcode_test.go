package barcode

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := filepath.Join(tempDir, "s_1_1101.barcode")
	require.NoError(t, ioutil.WriteFile(path, []byte("ACGTACGT\nTTTTAAAA\n"), 0644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	var got []string
	for r.Scan() {
		got = append(got, r.Tag())
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []string{"ACGTACGT", "TTTTAAAA"}, got)
}

func TestLevenshteinExactMatch(t *testing.T) {
	assert.Equal(t, 0, levenshtein("ACGT", "ACGT", "", ""))
}

func TestLevenshteinSubstitution(t *testing.T) {
	assert.Equal(t, 1, levenshtein("ACGT", "ACGA", "", ""))
}

func TestMatcherExact(t *testing.T) {
	m, err := NewMatcher([]string{"AAAA", "CCCC", "GGGG"}, 1)
	require.NoError(t, err)

	tag, mismatches, ok := m.Match("CCCC", "")
	assert.Equal(t, "CCCC", tag)
	assert.Equal(t, 0, mismatches)
	assert.True(t, ok)
}

func TestMatcherWithinThreshold(t *testing.T) {
	m, err := NewMatcher([]string{"AAAA", "CCCC"}, 1)
	require.NoError(t, err)

	tag, mismatches, ok := m.Match("AAAC", "")
	assert.Equal(t, "AAAA", tag)
	assert.Equal(t, 1, mismatches)
	assert.True(t, ok)
}

func TestMatcherBeyondThreshold(t *testing.T) {
	m, err := NewMatcher([]string{"AAAA", "CCCC"}, 0)
	require.NoError(t, err)

	_, mismatches, ok := m.Match("AAAC", "")
	assert.Equal(t, 1, mismatches)
	assert.False(t, ok)
}

func TestNewMatcherRejectsUnequalLengths(t *testing.T) {
	_, err := NewMatcher([]string{"AAAA", "CC"}, 1)
	assert.Error(t, err)
}
