package qseq

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

	path := filepath.Join(tempDir, "s_1_1_0001_qseq.txt")
	line := "MACHINE RUN 1 1101 1000 2000 0 1 ACGT BBBB 1\n"
	require.NoError(t, ioutil.WriteFile(path, []byte(line), 0644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Scan())
	rec := r.Record()
	assert.Equal(t, "MACHINE", rec.Machine)
	assert.Equal(t, 1, rec.Lane)
	assert.Equal(t, 1101, rec.Tile)
	assert.Equal(t, int32(1000), rec.X)
	assert.Equal(t, int32(2000), rec.Y)
	assert.Equal(t, "ACGT", rec.Bases)
	assert.True(t, rec.PF)
	assert.False(t, r.Scan())
}

func TestDecodeQualities(t *testing.T) {
	// 'h' = 104, solexa = 104-64 = 40 -> high-confidence Phred ~40.
	got := DecodeQualities([]byte{'h'})
	assert.Len(t, got, 1)
	assert.InDelta(t, 40, int(got[0]), 1)
}

func TestSolexaToPhredClampsNegative(t *testing.T) {
	// A very low/negative solexa value must clamp to 0, not go negative.
	got := solexaToPhred(-40)
	assert.Equal(t, byte(0), got)
}
