// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

/*
illumina-dump reads one lane of an Illumina run's raw-cycle output and
writes one FASTQ-like TSV line per cluster, splitting the work across tiles
in parallel.
*/

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/grailbio/illumina"
	"github.com/grailbio/illumina/encoding/illuminaprovider"
	"github.com/grailbio/illumina/encoding/layout"
	"github.com/grailbio/illumina/encoding/runinfo"
)

var (
	basecallsDir = flag.String("basecalls-dir", "", "Path to the run's Data/Intensities/BaseCalls directory")
	runInfoPath  = flag.String("run-info", "", "Path to the run's RunInfo.xml; supplies the read structure unless -read-structure is given")
	readStruct   = flag.String("read-structure", "", "Explicit read structure, e.g. \"76T8B76T\"; overrides -run-info")
	lane         = flag.Int("lane", 1, "Lane number")
	outPrefix    = flag.String("out", "illumina-dump", "Output path prefix; one file per tile is written as <prefix>.<tile>.tsv")
	wantPF       = flag.Bool("want-pf", true, "Request the pass-filter flag")
	wantBarcodes = flag.Bool("want-barcodes", false, "Request assigned barcodes")
	parallelism  = flag.Int("parallelism", 0, "Maximum number of tiles to process concurrently; 0 = traverse default")

	expectedBarcodes   = flag.String("expected-barcodes", "", "Comma-separated panel of expected barcode tags; when set, the raw basecalled index read is corrected against this panel")
	maxBarcodeMismatch = flag.Int("max-barcode-mismatch", 1, "Maximum edit distance accepted when correcting against -expected-barcodes")
)

func usage() {
	fmt.Printf("Usage: %s -basecalls-dir DIR [-run-info PATH | -read-structure STRUCT] [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func parseReadStructure(s string) (*illumina.ReadStructure, error) {
	var descriptors []illumina.ReadDescriptor
	for len(s) > 0 {
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 || i == len(s) {
			return nil, fmt.Errorf("illumina-dump: malformed read structure %q", s)
		}
		length, err := strconv.Atoi(s[:i])
		if err != nil {
			return nil, err
		}
		var rt illumina.ReadType
		switch s[i] {
		case 'T':
			rt = illumina.Template
		case 'B':
			rt = illumina.Barcode
		case 'S':
			rt = illumina.Skip
		default:
			return nil, fmt.Errorf("illumina-dump: unknown read structure token %q", s[i:i+1])
		}
		descriptors = append(descriptors, illumina.ReadDescriptor{Length: length, Type: rt})
		s = s[i+1:]
	}
	return illumina.NewReadStructure(descriptors)
}

func resolveReadStructure() (*illumina.ReadStructure, error) {
	if *readStruct != "" {
		return parseReadStructure(*readStruct)
	}
	if *runInfoPath != "" {
		info, err := runinfo.Open(*runInfoPath)
		if err != nil {
			return nil, err
		}
		return info.ReadStructure, nil
	}
	return nil, fmt.Errorf("illumina-dump: one of -read-structure or -run-info is required")
}

func dumpTile(provider *illuminaprovider.Provider, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	for {
		ok, err := provider.HasNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		cd, err := provider.Next()
		if err != nil {
			return err
		}
		var bases []string
		for _, r := range cd.Reads {
			bases = append(bases, string(r.Bases))
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%v\t%s\t%s\n",
			cd.Lane, cd.Tile, cd.X, cd.Y, cd.PF, cd.MatchedBarcode, strings.Join(bases, "+"))
	}
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *basecallsDir == "" {
		log.Fatalf("illumina-dump: -basecalls-dir is required")
	}
	rs, err := resolveReadStructure()
	if err != nil {
		log.Fatalf("%v", err)
	}

	intensitiesDir := strings.TrimSuffix(*basecallsDir, "/BaseCalls")
	cfg := layout.Config{BasecallsDir: *basecallsDir, IntensitiesDir: intensitiesDir, Lane: *lane}

	types := []illuminaprovider.DataType{illuminaprovider.BaseCalls, illuminaprovider.QualityScores}
	if *wantPF {
		types = append(types, illuminaprovider.PF)
	}
	if *wantBarcodes {
		types = append(types, illuminaprovider.Barcodes)
	}

	var barcodePanel []string
	if *expectedBarcodes != "" {
		barcodePanel = strings.Split(*expectedBarcodes, ",")
	}
	factory, err := illuminaprovider.NewFactory(cfg, rs, types, barcodePanel, *maxBarcodeMismatch)
	if err != nil {
		log.Fatalf("illumina-dump: building factory: %v", err)
	}
	tiles := factory.Tiles()
	if len(tiles) == 0 {
		log.Fatalf("illumina-dump: no tiles found for lane %d under %s", *lane, *basecallsDir)
	}

	err = traverse.T{Limit: *parallelism}.Each(len(tiles), func(i int) error {
		tile := tiles[i]
		provider, err := factory.MakeDataProvider([]int{tile})
		if err != nil {
			return err
		}
		defer provider.Close()
		return dumpTile(provider, fmt.Sprintf("%s.%d.tsv", *outPrefix, tile))
	})
	if err != nil {
		log.Fatalf("illumina-dump: %v", err)
	}
	log.Debug.Printf("illumina-dump: wrote %d tiles", len(tiles))
}
