package runinfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0"?>
<RunInfo>
  <Run Id="1" Number="1">
    <Reads>
      <Read Number="1" NumCycles="76" IsIndexedRead="N"/>
      <Read Number="2" NumCycles="8" IsIndexedRead="Y"/>
      <Read Number="3" NumCycles="76" IsIndexedRead="N"/>
    </Reads>
    <FlowcellLayout LaneCount="8" SurfaceCount="2" SwathCount="3" TileCount="12"/>
  </Run>
</RunInfo>`

func TestParse(t *testing.T) {
	info, err := Parse(strings.NewReader(sampleXML))
	require.NoError(t, err)

	assert.Equal(t, 8, info.LaneCount)
	assert.Equal(t, 12, info.TileCount)
	assert.Equal(t, 2, info.SurfaceCount)
	assert.Equal(t, 3, info.SwathCount)

	descs := info.ReadStructure.Descriptors()
	require.Len(t, descs, 3)
	assert.Equal(t, 76, descs[0].Length)
	assert.Equal(t, 8, descs[1].Length)
	assert.Equal(t, 76, descs[2].Length)
	assert.Equal(t, 2, info.ReadStructure.NumTemplates())
	assert.Equal(t, 1, info.ReadStructure.NumBarcodes())
}
