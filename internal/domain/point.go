package domain

import (
	"sort"

	"github.com/paulmach/orb"
)

// CellID is an opaque hexagon cell identifier produced by the grid index,
// unique per (resolution level, geographic cell). The H3 implementation uses
// the 15-character hexadecimal string form, e.g. "8928308280fffff".
type CellID string

// Point is a single geographic point record with optional caller-supplied
// attributes. Attributes travel through the pipeline untouched; only the
// coordinates participate in aggregation.
type Point struct {
	ID         string
	Lat        float64
	Lon        float64
	Properties map[string]any
}

// Assignment is a point's final (cell, level) pair once its cell has cleared
// the count threshold.
type Assignment struct {
	Cell  CellID
	Level int
}

// AnnotatedPoint carries a point through the aggregation pipeline.
//
// CellByLevel maps each configured resolution level to the point's cell id
// at that level. The map is ancestor-consistent: the cell at level L is
// always the parent of the cell at level L+1, because coarser entries are
// derived by parent lookups rather than recomputed from coordinates.
//
// Assignment is nil until the point's cell clears the threshold; points
// still unassigned after SuppressBelowThreshold are dropped.
type AnnotatedPoint struct {
	Point
	CellByLevel map[int]CellID
	Assignment  *Assignment
}

// Hexbin is one output record: a surviving cell with its resolution level,
// the number of member points, and a closed GeoJSON-ordered boundary ring.
type Hexbin struct {
	Cell     CellID
	Level    int
	Count    int
	Boundary orb.Ring
}

// levelRange returns the configured levels in ascending order (coarsest
// first), derived from the annotation maps. All points in a batch carry the
// same level set by construction, so the first point is representative.
func levelRange(points []AnnotatedPoint) []int {
	if len(points) == 0 {
		return nil
	}
	levels := make([]int, 0, len(points[0].CellByLevel))
	for level := range points[0].CellByLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}
