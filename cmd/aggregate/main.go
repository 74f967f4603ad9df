// Command aggregate runs the hexbin pipeline over a GeoJSON file of points
// and writes the resulting hexbins as GeoJSON.
//
// Usage:
//
//	go run ./cmd/aggregate \
//	  -in points.geojson -out hexbins.geojson \
//	  -min-level 5 -max-level 9 -min-count 100
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/morenobcn/hexbin-service/internal/adapter/h3grid"
	"github.com/morenobcn/hexbin-service/internal/domain"
)

func main() {
	in := flag.String("in", "", "input GeoJSON FeatureCollection of points")
	out := flag.String("out", "", "output GeoJSON file; defaults to stdout")
	minLevel := flag.Int("min-level", 5, "coarsest H3 resolution level")
	maxLevel := flag.Int("max-level", 9, "finest H3 resolution level")
	minCount := flag.Int("min-count", 100, "minimum point count per hexbin")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*in, *out, *minLevel, *maxLevel, *minCount); err != nil {
		fmt.Fprintf(os.Stderr, "aggregate: %v\n", err)
		os.Exit(1)
	}
}

func run(in, out string, minLevel, maxLevel, minCount int) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	points, err := domain.PointsFromGeoJSON(fc)
	if err != nil {
		return err
	}

	bins, err := domain.AggregatePointsToHexbins(h3grid.New(), points, minLevel, maxLevel, minCount)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(domain.HexbinsToGeoJSON(bins), "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	if out == "" {
		fmt.Println(string(encoded))
		return nil
	}
	if err := os.WriteFile(out, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("wrote %d hexbins from %d points to %s\n", len(bins), len(points), out)
	return nil
}
