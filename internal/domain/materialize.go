package domain

import (
	"fmt"
	"slices"
)

// MaterializeHexbins groups the assigned points by cell and joins each
// surviving cell's point count, resolution level, and boundary polygon into
// one Hexbin record. Cells without surviving points never appear. Output is
// sorted by cell id so repeated runs over the same input produce identical
// results; callers should still treat it as a set.
func MaterializeHexbins(grid GridIndex, points []AnnotatedPoint) ([]Hexbin, error) {
	counts := make(map[CellID]int, len(points))
	levels := make(map[CellID]int, len(points))
	for _, p := range points {
		if p.Assignment == nil {
			continue
		}
		counts[p.Assignment.Cell]++
		levels[p.Assignment.Cell] = p.Assignment.Level
	}

	cells := make([]CellID, 0, len(counts))
	for cell := range counts {
		cells = append(cells, cell)
	}
	slices.Sort(cells)

	bins := make([]Hexbin, 0, len(cells))
	for _, cell := range cells {
		boundary, err := grid.BoundaryPolygon(cell)
		if err != nil {
			return nil, fmt.Errorf("boundary for cell %s: %w", cell, err)
		}
		bins = append(bins, Hexbin{
			Cell:     cell,
			Level:    levels[cell],
			Count:    counts[cell],
			Boundary: boundary,
		})
	}

	return bins, nil
}

// AggregatePointsToHexbins runs the full pipeline: tag points with cells at
// every level in [minLevel, maxLevel], suppress cells at or below minCount,
// resolve ancestor overlaps, and materialize the surviving cells into
// hexbins with counts and boundary polygons.
func AggregatePointsToHexbins(grid GridIndex, points []Point, minLevel, maxLevel, minCount int) ([]Hexbin, error) {
	annotated, err := TagPointsWithCells(grid, points, minLevel, maxLevel)
	if err != nil {
		return nil, err
	}
	assigned := SuppressBelowThreshold(annotated, minCount)
	resolved := ResolveOverlaps(assigned)
	return MaterializeHexbins(grid, resolved)
}
