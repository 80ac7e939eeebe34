package cif

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCIF(elementSize, firstCycle, numCycles, numClusters int, values []int16) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:3], "CIF")
	buf[3] = 1
	buf[4] = byte(elementSize)
	buf[5] = byte(firstCycle)
	buf[6] = byte(firstCycle >> 8)
	buf[7] = byte(numCycles)
	buf[8] = byte(numCycles >> 8)
	buf[9] = byte(numClusters)
	buf[10] = byte(numClusters >> 8)
	buf[11] = byte(numClusters >> 16)
	buf[12] = byte(numClusters >> 24)
	for _, v := range values {
		if elementSize == 1 {
			buf = append(buf, byte(int8(v)))
		} else {
			buf = append(buf, byte(uint16(v)), byte(uint16(v)>>8))
		}
	}
	return buf
}

func TestReaderOneCycleOneCluster(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	// 1 cycle, 1 cluster, element size 2: values for A,C,G,T = 10,20,30,40.
	data := buildCIF(2, 1, 1, 1, []int16{10, 20, 30, 40})
	path := filepath.Join(tempDir, "s_1_1101.cif")
	require.NoError(t, ioutil.WriteFile(path, data, 0644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.NoError(t, r.CheckSingleCycle())
	assert.Equal(t, 1, r.FirstCycle)
	assert.Equal(t, 1, r.NumClusters)
	assert.Equal(t, int16(10), r.Value(0, 0, 1))
	assert.Equal(t, int16(20), r.Value(0, 1, 1))
	assert.Equal(t, int16(30), r.Value(0, 2, 1))
	assert.Equal(t, int16(40), r.Value(0, 3, 1))
}

func TestReaderTwoClustersOneByte(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	// 1 cycle, 2 clusters, element size 1: A=[1,2] C=[3,4] G=[5,6] T=[7,8].
	data := buildCIF(1, 5, 1, 2, []int16{1, 2, 3, 4, 5, 6, 7, 8})
	path := filepath.Join(tempDir, "s_1_1101.cnf")
	require.NoError(t, ioutil.WriteFile(path, data, 0644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 5, r.FirstCycle)
	assert.Equal(t, int16(1), r.Value(0, 0, 5))
	assert.Equal(t, int16(2), r.Value(1, 0, 5))
	assert.Equal(t, int16(6), r.Value(1, 2, 5))
	assert.Equal(t, int16(8), r.Value(1, 3, 5))
}

func TestOpenRejectsBadMagic(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	data := buildCIF(1, 1, 1, 1, []int16{0, 0, 0, 0})
	data[0] = 'X'
	path := filepath.Join(tempDir, "bad.cif")
	require.NoError(t, ioutil.WriteFile(path, data, 0644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestOpenRejectsShortBody(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	data := buildCIF(2, 1, 1, 2, []int16{1, 2, 3, 4}) // declares 2 clusters, only 1 worth of data
	path := filepath.Join(tempDir, "short.cif")
	require.NoError(t, ioutil.WriteFile(path, data, 0644))

	_, err := Open(path)
	assert.Error(t, err)
}
