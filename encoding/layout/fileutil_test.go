package layout

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
}

func TestFileUtilPerTileCycle(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	basecalls := filepath.Join(tempDir, "BaseCalls")
	laneDir := filepath.Join(basecalls, "L001")
	for _, cycle := range []int{1, 2, 3} {
		for _, tile := range []int{101, 102} {
			writeFile(t, filepath.Join(laneDir, cycleDirName(cycle), sTileFile(1, tile, "bcl")), "x")
		}
	}

	u := newCycleUtil(laneDir, 1, "bcl")
	assert.True(t, u.FilesAvailable())
	assert.Equal(t, []int{1, 2, 3}, u.Cycles())
	assert.Equal(t, []int{101, 102}, u.Tiles())
	assert.NoError(t, u.checkContiguous())

	files, err := u.FilesCycles([]int{101, 102}, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, files[101], 3)
	assert.Equal(t, 1, files[101][0].Cycle)
	assert.Equal(t, 3, files[101][2].Cycle)
}

func TestFileUtilPerTileCycleGap(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	laneDir := filepath.Join(tempDir, "BaseCalls", "L001")
	for _, cycle := range []int{1, 3} { // missing cycle 2
		writeFile(t, filepath.Join(laneDir, cycleDirName(cycle), sTileFile(1, 101, "bcl")), "x")
	}

	u := newCycleUtil(laneDir, 1, "bcl")
	_, err := u.FilesCycles([]int{101}, []int{1, 3})
	assert.Error(t, err)
}

func TestFileUtilPerTile(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	laneDir := filepath.Join(tempDir, "BaseCalls", "L001")
	for _, tile := range []int{1101, 1102, 2101} {
		writeFile(t, filepath.Join(laneDir, sTileFile(1, tile, "filter")), "x")
	}
	// a different lane's file should be ignored
	writeFile(t, filepath.Join(laneDir, sTileFile(2, 1101, "filter")), "x")

	u := newTileUtil(laneDir, 1, "filter", false)
	assert.True(t, u.FilesAvailable())
	assert.Equal(t, []int{1101, 1102, 2101}, u.Tiles())

	files, err := u.Files([]int{1101, 2101})
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = u.Files([]int{9999})
	assert.Error(t, err)
}

func TestFileUtilQseq(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	basecalls := filepath.Join(tempDir, "BaseCalls")
	for _, readNo := range []int{1, 2} {
		for _, tile := range []int{1, 2} {
			writeFile(t, filepath.Join(basecalls, "L001", qseqFile(1, readNo, tile)), "x")
		}
	}

	u := newQseqUtil(basecalls, 1)
	assert.True(t, u.FilesAvailable())
	assert.Equal(t, []int{1, 2}, u.ReadNumbers())
	assert.NoError(t, u.CheckReadTileSetsAgree())

	files, err := u.FilesForRead(2, []int{1, 2})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestCycleUtilMultiTile(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	laneDir := filepath.Join(tempDir, "BaseCalls", "L001")
	for _, cycle := range []int{1, 2} {
		dir := filepath.Join(laneDir, cycleDirName(cycle))
		writeFile(t, filepath.Join(dir, "s_1.bcl.bgzf"), "packed-bytes")
		writeFile(t, filepath.Join(dir, multiTileBciName(1)), "bci-bytes")
	}
	// tile index: tile 1101 has 2 clusters, tile 1102 has 1.
	tileIndex := []byte{
		0x4D, 0x04, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00,
		0x4E, 0x04, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
	}
	require.NoError(t, ioutil.WriteFile(filepath.Join(laneDir, multiTileIndexName(1)), tileIndex, 0644))

	u := newCycleUtil(laneDir, 1, "bcl")
	assert.True(t, u.FilesAvailable())
	assert.True(t, u.MultiTile())
	assert.Equal(t, []int{1, 2}, u.Cycles())
	assert.Equal(t, []int{1101, 1102}, u.Tiles())

	path, ok := u.TileIndexPath()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(laneDir, multiTileIndexName(1)), path)

	bclPath, bciPath, ok := u.MultiTileFiles(1)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(laneDir, cycleDirName(1), "s_1.bcl.bgzf"), bclPath)
	assert.Equal(t, filepath.Join(laneDir, cycleDirName(1), multiTileBciName(1)), bciPath)

	_, _, ok = u.MultiTileFiles(99)
	assert.False(t, ok)

	_, err := u.FilesCycles([]int{1101}, []int{1, 2})
	assert.Error(t, err)
}

func TestFileUtilConfigDirs(t *testing.T) {
	cfg := Config{BasecallsDir: "/run/Data/Intensities/BaseCalls", IntensitiesDir: "/run/Data/Intensities", Lane: 3}
	assert.Equal(t, "/run/Data/Intensities/BaseCalls/L003", cfg.laneBasecallsDir())
	assert.Equal(t, "/run/Data/Intensities/L003", cfg.laneIntensitiesDir())
}
