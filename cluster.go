package illumina

// FourChannelIntensityData holds one [4 x readLength] array of per-cycle,
// per-channel values (channels in A, C, G, T order) for one read: either raw
// intensities (from a CIF file) or noise (from a CNF file).
type FourChannelIntensityData struct {
	// A, C, G, T each have length equal to the owning ReadData's read
	// length; A[i] is the A-channel value at position i of the read.
	A, C, G, T []int16
}

func newFourChannelIntensityData(n int) *FourChannelIntensityData {
	return &FourChannelIntensityData{
		A: make([]int16, n),
		C: make([]int16, n),
		G: make([]int16, n),
		T: make([]int16, n),
	}
}

// ReadData is one emitted read of one cluster: its bases, quality scores,
// and (optionally) raw intensities and noise.
type ReadData struct {
	Type ReadType

	// Bases holds ASCII base characters in {A,C,G,T,N}, one per cycle of
	// this read.
	Bases []byte
	// Qualities holds binary Phred quality values 0..93, one per cycle of
	// this read, in the same order as Bases.
	Qualities []byte

	// RawIntensities and Noise are nil unless the corresponding data type
	// was requested of the provider.
	RawIntensities *FourChannelIntensityData
	Noise          *FourChannelIntensityData
}

func newReadData(t ReadType, length int) ReadData {
	return ReadData{
		Type:      t,
		Bases:     make([]byte, length),
		Qualities: make([]byte, length),
	}
}

// ClusterData is the fully assembled record for one sequencing cluster: its
// position, pass-filter flag, optional barcode assignment, and one ReadData
// per non-skip ReadStructure descriptor.
type ClusterData struct {
	Lane, Tile int32
	X, Y       int32

	PF bool

	// MatchedBarcode is the assigned barcode: read from a barcode file when
	// barcodes were requested, or else the nearest expected tag found by
	// encoding/barcode.Matcher when the provider was built with a tag panel.
	// It is empty when neither source supplied a tag.
	MatchedBarcode string

	Reads []ReadData
}

// NewClusterData allocates a ClusterData pre-sized to the OutputMapping's
// per-read lengths, as required by IlluminaDataProvider.next (spec.md
// §4.11 step 2).
func NewClusterData(om *OutputMapping, lane int32) *ClusterData {
	return newClusterData(om, lane)
}

func newClusterData(om *OutputMapping, lane int32) *ClusterData {
	descriptors := om.GetOutputDescriptors()
	cd := &ClusterData{
		Lane:  lane,
		Tile:  -1,
		X:     -1,
		Y:     -1,
		Reads: make([]ReadData, len(descriptors)),
	}
	for i, d := range descriptors {
		cd.Reads[i] = newReadData(d.Type, d.Length)
	}
	return cd
}

// ensureIntensities lazily allocates RawIntensities for read i, sized to
// that read's length.
func (cd *ClusterData) ensureIntensities(i int) *FourChannelIntensityData {
	if cd.Reads[i].RawIntensities == nil {
		cd.Reads[i].RawIntensities = newFourChannelIntensityData(len(cd.Reads[i].Bases))
	}
	return cd.Reads[i].RawIntensities
}

// ensureNoise lazily allocates Noise for read i, sized to that read's
// length.
func (cd *ClusterData) ensureNoise(i int) *FourChannelIntensityData {
	if cd.Reads[i].Noise == nil {
		cd.Reads[i].Noise = newFourChannelIntensityData(len(cd.Reads[i].Bases))
	}
	return cd.Reads[i].Noise
}

// EnsureIntensities lazily allocates RawIntensities for read i. The
// expectedLength parameter is unused beyond documenting intent at call
// sites; the allocated length always matches the read's own Bases length.
func (cd *ClusterData) EnsureIntensities(i, expectedLength int) *FourChannelIntensityData {
	return cd.ensureIntensities(i)
}

// EnsureNoise lazily allocates Noise for read i.
func (cd *ClusterData) EnsureNoise(i, expectedLength int) *FourChannelIntensityData {
	return cd.ensureNoise(i)
}
