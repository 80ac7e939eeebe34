package bcl

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBCL(t *testing.T, path string, header [4]byte, records []byte) {
	t.Helper()
	require.NoError(t, ioutil.WriteFile(path, append(header[:], records...), 0644))
}

func TestReaderTinyOneCluster(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := filepath.Join(tempDir, "s_1_1101.bcl")
	// 1 cluster, byte 0xA1 = 10100001: base index 1 ('C'), quality 40.
	writeBCL(t, path, [4]byte{0x01, 0x00, 0x00, 0x00}, []byte{0xA1})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 1, r.NumClusters())
	require.True(t, r.Scan())
	assert.Equal(t, byte('C'), r.Base())
	assert.Equal(t, byte(40), r.Quality())
	assert.False(t, r.Scan())
	assert.NoError(t, r.Err())
}

func TestReaderN(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := filepath.Join(tempDir, "s_1_1101.bcl")
	writeBCL(t, path, [4]byte{0x01, 0x00, 0x00, 0x00}, []byte{0x00})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Scan())
	assert.Equal(t, byte('N'), r.Base())
	assert.Equal(t, byte(0), r.Quality())
}

func TestReaderEmptyTile(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := filepath.Join(tempDir, "s_1_1101.bcl")
	writeBCL(t, path, [4]byte{0x00, 0x00, 0x00, 0x00}, nil)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 0, r.NumClusters())
	assert.False(t, r.Scan())
	assert.NoError(t, r.Err())
}

func TestReadTileIndex(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := filepath.Join(tempDir, "s_1.bci.tileidx")
	buf := []byte{
		0x4D, 0x04, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00, // tile 1101, count 3
		0x4E, 0x04, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, // tile 1102, count 2
	}
	require.NoError(t, ioutil.WriteFile(path, buf, 0644))

	idx, err := ReadTileIndex(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1101, 1102}, idx.Tiles)
	assert.Equal(t, []int{3, 2}, idx.ClusterCounts)

	pos, ok := idx.positionOf(1102)
	assert.True(t, ok)
	assert.Equal(t, 1, pos)

	_, ok = idx.positionOf(9999)
	assert.False(t, ok)
}
