package bcl

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/hts/bgzf"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBCI(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := filepath.Join(tempDir, "s_1.bcl.bgzf.bci")
	buf := []byte{
		0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, // tile 0: block 1, within-block 0
		0x05, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, // tile 1: block 2, within-block 5
	}
	require.NoError(t, ioutil.WriteFile(path, buf, 0644))

	bci, err := ReadBCI(path)
	require.NoError(t, err)
	require.Len(t, bci.Offsets, 2)
	assert.Equal(t, bgzf.Offset{File: 1, Block: 0}, bci.Offsets[0])
	assert.Equal(t, bgzf.Offset{File: 2, Block: 5}, bci.Offsets[1])
}

// TestMultiTileReaderCountLimit is the scenario-6 test of spec.md §8: the
// count-limited iterator must yield exactly ClusterCount records and then
// report end-of-stream, ignoring any trailing bytes that belong to the
// next tile packed into the same block-compressed stream. It drives
// Scan()/Base()/Quality() directly against a fake reader standing in for
// the seeked bgzf.Reader, isolating the count-limiting logic from bgzf
// block decompression.
func TestMultiTileReaderCountLimit(t *testing.T) {
	// Tile's own 2 records (0xA1 -> base 'C' quality 40, 0x00 -> 'N'/0)
	// followed by 3 trailing bytes that belong to the next tile in the
	// packed stream.
	stream := bytes.NewReader([]byte{0xA1, 0x00, 0xFF, 0xFF, 0xFF})
	r := &MultiTileReader{r: stream, count: 2, remaining: 2}

	assert.Equal(t, 2, r.NumClusters())

	require.True(t, r.Scan())
	assert.Equal(t, byte('C'), r.Base())
	assert.Equal(t, byte(40), r.Quality())

	require.True(t, r.Scan())
	assert.Equal(t, byte('N'), r.Base())
	assert.Equal(t, byte(0), r.Quality())

	assert.False(t, r.Scan())
	assert.NoError(t, r.Err())

	// The next tile's bytes must remain unconsumed in the stream.
	rest, err := ioutil.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, rest)
}

func TestMultiTileReaderShortStream(t *testing.T) {
	stream := bytes.NewReader([]byte{0xA1})
	r := &MultiTileReader{r: stream, count: 2, remaining: 2}

	require.True(t, r.Scan())
	assert.False(t, r.Scan())
	require.Error(t, r.Err())
}
