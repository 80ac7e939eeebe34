package pos

import (
	"io/ioutil"
	"math"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32le(v float32) []byte {
	bits := math.Float32bits(v)
	return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}

func TestLocsZero(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	var buf []byte
	buf = append(buf, make([]byte, locsHeaderSize)...)
	buf = append(buf, f32le(0.0)...)
	buf = append(buf, f32le(0.0)...)
	path := filepath.Join(tempDir, "s_1_1101.locs")
	require.NoError(t, ioutil.WriteFile(path, buf, 0644))

	r, err := OpenLocs(path)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Scan())
	assert.Equal(t, int32(1000), r.X())
	assert.Equal(t, int32(1000), r.Y())
	assert.False(t, r.Scan())
}

func TestLocsMultiple(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	var buf []byte
	buf = append(buf, make([]byte, locsHeaderSize)...)
	buf = append(buf, f32le(1.5)...)
	buf = append(buf, f32le(-2.0)...)
	path := filepath.Join(tempDir, "s_1_1101.locs")
	require.NoError(t, ioutil.WriteFile(path, buf, 0644))

	r, err := OpenLocs(path)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Scan())
	assert.Equal(t, int32(1015), r.X())
	assert.Equal(t, int32(980), r.Y())
}

func TestPosText(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := filepath.Join(tempDir, "s_1_1101_pos.txt")
	require.NoError(t, ioutil.WriteFile(path, []byte("0.0 0.0\n1.5 -2.0\n"), 0644))

	r, err := OpenPos(path)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Scan())
	assert.Equal(t, int32(1000), r.X())
	assert.Equal(t, int32(1000), r.Y())
	require.True(t, r.Scan())
	assert.Equal(t, int32(1015), r.X())
	assert.Equal(t, int32(980), r.Y())
	assert.False(t, r.Scan())
}

func TestClocs(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	// version 1, 2 bins; bin 0 has 1 record (dx=5,dy=6), bin 1 has 0 records.
	buf := []byte{1, 0x02, 0x00, 0x00, 0x00, 0x01, 5, 6, 0x00}
	path := filepath.Join(tempDir, "s_1_1101.clocs")
	require.NoError(t, ioutil.WriteFile(path, buf, 0644))

	r, err := OpenClocs(path)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Scan())
	assert.Equal(t, binX(0)*10+5+1000, r.X())
	assert.Equal(t, binY(0)*10+6+1000, r.Y())
	assert.False(t, r.Scan())
	assert.NoError(t, r.Err())
}

func TestClocsNonZeroBin(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	// version 1, 2 bins; bin 0 has 0 records, bin 1 has 1 record (dx=7,dy=9).
	// Bin 1 is still in row 0 (binsPerRow > 1), so this isolates the ×10
	// scale on the bin-column term from the row term.
	require.Greater(t, binsPerRow, 1)
	buf := []byte{1, 0x02, 0x00, 0x00, 0x00, 0x00, 0x01, 7, 9}
	path := filepath.Join(tempDir, "s_1_1102.clocs")
	require.NoError(t, ioutil.WriteFile(path, buf, 0644))

	r, err := OpenClocs(path)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Scan())
	assert.Equal(t, binX(1)*10+7+1000, r.X())
	assert.Equal(t, binY(1)*10+9+1000, r.Y())
	assert.False(t, r.Scan())
	assert.NoError(t, r.Err())
}
