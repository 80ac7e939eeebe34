package illumina

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadStructure(t *testing.T) {
	rs, err := NewReadStructure([]ReadDescriptor{
		{Length: 76, Type: Template},
		{Length: 8, Type: Barcode},
		{Length: 76, Type: Template},
	})
	require.NoError(t, err)
	assert.Equal(t, 160, rs.TotalCycles())
	assert.Equal(t, []int{0, 2}, rs.TemplateIndices())
	assert.Equal(t, []int{1}, rs.BarcodeIndices())
	assert.Empty(t, rs.SkipIndices())
	assert.Equal(t, 2, rs.NumTemplates())
	assert.Equal(t, 1, rs.NumBarcodes())
	assert.Equal(t, 0, rs.NumSkips())
}

func TestNewReadStructureEmpty(t *testing.T) {
	_, err := NewReadStructure(nil)
	assert.Error(t, err)
}

func TestNewReadStructureBadLength(t *testing.T) {
	_, err := NewReadStructure([]ReadDescriptor{{Length: 0, Type: Template}})
	assert.Error(t, err)
}

func TestNewReadStructureWithSkip(t *testing.T) {
	rs, err := NewReadStructure([]ReadDescriptor{
		{Length: 4, Type: Template},
		{Length: 2, Type: Skip},
		{Length: 4, Type: Barcode},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, rs.TotalCycles())
	assert.Equal(t, []int{1}, rs.SkipIndices())
}
