package illuminaprovider

import "github.com/grailbio/illumina"

// parser is implemented by every per-format adapter the provider
// multiplexes. One parser instance is bound to one lane and one requested
// tile list; openTile/closeTile scope its file resources to the currently
// active tile (spec.md §4.3, §4.4).
type parser interface {
	// dataTypes returns the data types this parser contributes to a
	// ClusterData.
	dataTypes() []DataType
	// openTile opens this parser's resources for tile and returns the
	// number of clusters it reports for that tile.
	openTile(tile int) (int, error)
	// closeTile releases this parser's resources for the current tile.
	closeTile() error
	// readCluster reads the next cluster within the currently open tile and
	// writes its contribution into cd.
	readCluster(cd *illumina.ClusterData) error
}
