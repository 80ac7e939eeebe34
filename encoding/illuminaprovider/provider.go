package illuminaprovider

import (
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/illumina"
	"github.com/grailbio/illumina/encoding/barcode"
	"github.com/grailbio/illumina/encoding/layout"
	"v.io/x/lib/vlog"
)

// Factory resolves a format selection once for a lane and then constructs
// independent Providers over requested tile subsets (spec.md §4.2, §5):
// once built, a Factory is immutable and MakeDataProvider is idempotent.
type Factory struct {
	fu        *layout.FileUtil
	rs        *illumina.ReadStructure
	om        *illumina.OutputMapping
	lane      int32
	selection *Selection
	matcher   *barcode.Matcher
}

// NewFactory validates format availability and tile-set consistency for
// the requested data types and returns a Factory bound to one lane.
//
// When expectedBarcodes is non-empty, the returned Factory's Providers
// additionally correct each cluster's raw basecalled index read against
// the given tag panel (spec.md §4.12), nearest by edit distance within
// maxBarcodeMismatch, and report the result as ClusterData.MatchedBarcode
// whenever it has not already been set from a pre-assigned barcode file.
// Pass a nil/empty expectedBarcodes to skip this correction entirely.
func NewFactory(cfg layout.Config, rs *illumina.ReadStructure, requested []DataType, expectedBarcodes []string, maxBarcodeMismatch int) (*Factory, error) {
	fu := layout.New(cfg)
	selection, err := Select(fu, requested)
	if err != nil {
		return nil, err
	}

	formatUtils := make(map[layout.Format]layout.FormatUtil, len(selection.Formats))
	for f := range selection.Formats {
		formatUtils[f] = fu.Format(f)
	}
	if err := layout.CheckTileSetsAgree(formatUtils); err != nil {
		return nil, err
	}

	var matcher *barcode.Matcher
	if len(expectedBarcodes) > 0 {
		matcher, err = barcode.NewMatcher(expectedBarcodes, maxBarcodeMismatch)
		if err != nil {
			return nil, err
		}
	}

	om := illumina.NewOutputMapping(rs)
	return &Factory{fu: fu, rs: rs, om: om, lane: int32(cfg.Lane), selection: selection, matcher: matcher}, nil
}

// Tiles returns the full ascending tile list available for the lane, as
// reported by whichever format was selected.
func (f *Factory) Tiles() []int {
	for format := range f.selection.Formats {
		return f.fu.Format(format).Tiles()
	}
	return nil
}

// MakeDataProvider constructs a Provider limited to the given tiles (in
// ascending order). Independent Providers built from the same Factory for
// distinct tile sets share no mutable state and may be driven from
// independent goroutines (spec.md §5).
func (f *Factory) MakeDataProvider(tiles []int) (*Provider, error) {
	if len(tiles) == 0 {
		return nil, errors.E(errors.Invalid, "illuminaprovider: MakeDataProvider requires at least one tile")
	}
	sorted := append([]int(nil), tiles...)
	sort.Ints(sorted)

	var parsers []parser
	qseqTypes := map[DataType]bool{}
	for t, format := range f.selection.ByType {
		if format == layout.Qseq {
			qseqTypes[t] = true
		}
	}
	if len(qseqTypes) > 0 {
		var types []DataType
		for t := range qseqTypes {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		parsers = append(parsers, newQseqParser(f.fu, f.om, types))
	}
	if format, ok := f.selection.ByType[BaseCalls]; ok && format == layout.Bcl {
		parsers = append(parsers, newBCLParser(f.fu, f.om))
	}
	if format, ok := f.selection.ByType[PF]; ok && format == layout.Filter {
		parsers = append(parsers, newFilterParser(f.fu))
	}
	if format, ok := f.selection.ByType[Position]; ok && format != layout.Qseq {
		parsers = append(parsers, newPositionParser(f.fu, format))
	}
	if format, ok := f.selection.ByType[Barcodes]; ok && format == layout.Barcode {
		parsers = append(parsers, newBarcodeParser(f.fu))
	}
	if format, ok := f.selection.ByType[RawIntensities]; ok && format == layout.Cif {
		parsers = append(parsers, newIntensityParser(f.fu, f.om, layout.Cif))
	}
	if format, ok := f.selection.ByType[Noise]; ok && format == layout.Cnf {
		parsers = append(parsers, newIntensityParser(f.fu, f.om, layout.Cnf))
	}

	// QSeq's bundled quality column is already pipeline-processed output,
	// not raw per-cycle quality, so EAMSS only applies on the Bcl path
	// (spec.md §9, §8 invariant 7).
	applyEAMSS := f.selection.ByType[BaseCalls] == layout.Bcl

	var barcodeIndices []int
	for i, d := range f.om.GetOutputDescriptors() {
		if d.Type == illumina.Barcode {
			barcodeIndices = append(barcodeIndices, i)
		}
	}

	return &Provider{
		fu:             f.fu,
		om:             f.om,
		lane:           f.lane,
		tiles:          sorted,
		parsers:        parsers,
		applyEAMSS:     applyEAMSS,
		matcher:        f.matcher,
		barcodeIndices: barcodeIndices,
		tileIdx:        -1,
	}, nil
}

// Provider is the cluster assembler (IlluminaDataProvider): it advances
// every active parser in lockstep, enforces end-of-stream agreement, and
// assembles one ClusterData per step (spec.md §4.11).
type Provider struct {
	fu   *layout.FileUtil
	om   *illumina.OutputMapping
	lane int32

	tiles   []int
	tileIdx int // index into tiles of the currently open tile, or -1

	parsers    []parser
	applyEAMSS bool

	// matcher and barcodeIndices implement spec.md §4.12's raw-read
	// correction: matcher is nil unless Factory was built with a non-empty
	// expected-tag panel, and barcodeIndices names which cd.Reads entries
	// hold basecalled index reads to match against it.
	matcher        *barcode.Matcher
	barcodeIndices []int

	tileCount     int
	tileRemaining int // clusters remaining to read in the current tile
	closed        bool
}

// HasNext reports whether Next would return another cluster. It opens the
// next tile's resources if the current tile is exhausted.
func (p *Provider) HasNext() (bool, error) {
	if p.closed {
		return false, nil
	}
	for p.tileIdx == -1 || p.tileRemaining == 0 {
		if p.tileIdx >= 0 {
			if err := p.closeCurrentTile(); err != nil {
				return false, err
			}
		}
		p.tileIdx++
		if p.tileIdx >= len(p.tiles) {
			return false, nil
		}
		if err := p.openTile(p.tiles[p.tileIdx]); err != nil {
			return false, err
		}
		if p.tileRemaining > 0 {
			break
		}
		// Empty tile (spec.md §9): yield no records, advance cleanly.
	}
	return true, nil
}

func (p *Provider) openTile(tile int) error {
	counts := make([]int, len(p.parsers))
	for i, parser := range p.parsers {
		n, err := parser.openTile(tile)
		if err != nil {
			return err
		}
		counts[i] = n
	}
	for i := 1; i < len(counts); i++ {
		if counts[i] != counts[0] {
			return illumina.ErrStreamDesync("parsers disagree on cluster count for tile")
		}
	}
	if len(counts) > 0 {
		p.tileRemaining = counts[0]
	}
	return nil
}

func (p *Provider) closeCurrentTile() error {
	var firstErr error
	for _, parser := range p.parsers {
		if err := parser.closeTile(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GetTileOfNextCluster returns the tile that Next will return, opening the
// next tile's resources if necessary.
func (p *Provider) GetTileOfNextCluster() (int, bool, error) {
	ok, err := p.HasNext()
	if err != nil || !ok {
		return 0, false, err
	}
	return p.tiles[p.tileIdx], true, nil
}

// Next assembles and returns the next ClusterData, advancing every active
// parser by one cluster (spec.md §4.11 step 1-4).
func (p *Provider) Next() (*illumina.ClusterData, error) {
	tile, ok, err := p.GetTileOfNextCluster()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.E(errors.Invalid, "illuminaprovider: Next called with no more clusters")
	}

	cd := illumina.NewClusterData(p.om, p.lane)
	cd.Tile = int32(tile)
	for _, parser := range p.parsers {
		if err := parser.readCluster(cd); err != nil {
			return nil, err
		}
	}
	p.tileRemaining--

	if p.matcher != nil && cd.MatchedBarcode == "" {
		p.matchBarcode(cd)
	}

	if p.applyEAMSS {
		for i := range cd.Reads {
			illumina.MaskEAMSS(cd.Reads[i].Bases, cd.Reads[i].Qualities)
		}
	}
	return cd, nil
}

// matchBarcode corrects cd's first raw basecalled index read against
// p.matcher's expected-tag panel (spec.md §4.12), using the immediately
// following read's leading bases as the downstream extension a deletion
// could shift into. It leaves MatchedBarcode unset if no tag is within the
// matcher's mismatch threshold.
func (p *Provider) matchBarcode(cd *illumina.ClusterData) {
	if len(p.barcodeIndices) == 0 {
		return
	}
	i := p.barcodeIndices[0]
	if i >= len(cd.Reads) {
		return
	}
	downstream := ""
	if i+1 < len(cd.Reads) {
		downstream = string(cd.Reads[i+1].Bases)
	}
	if tag, _, ok := p.matcher.Match(string(cd.Reads[i].Bases), downstream); ok {
		cd.MatchedBarcode = tag
	}
}

// SeekToTile discards per-tile state and positions the provider so the
// next Next() call starts at tile. All or nothing: if any parser cannot
// open tile, the provider is left unusable (spec.md §4.11).
func (p *Provider) SeekToTile(tile int) error {
	idx := -1
	for i, t := range p.tiles {
		if t == tile {
			idx = i
			break
		}
	}
	if idx == -1 {
		return illumina.ErrSeekOutOfRange(tile)
	}
	if p.tileIdx >= 0 {
		if err := p.closeCurrentTile(); err != nil {
			return err
		}
	}
	p.tileIdx = idx - 1 // HasNext will open p.tiles[idx] on its next call
	p.tileRemaining = 0
	return nil
}

// Close releases any resources held by the currently open tile.
func (p *Provider) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.tileIdx >= 0 && p.tileIdx < len(p.tiles) {
		if p.tileRemaining > 0 {
			vlog.VI(1).Infof("illuminaprovider: closing tile %d with %d clusters unread", p.tiles[p.tileIdx], p.tileRemaining)
		}
		return p.closeCurrentTile()
	}
	return nil
}
