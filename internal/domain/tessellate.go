package domain

import (
	"fmt"
	"slices"

	"github.com/paulmach/orb"
)

// CellGeometry is a covering cell with its boundary ring, produced by
// TessellateAreaOfInterest.
type CellGeometry struct {
	Cell     CellID
	Boundary orb.Ring
}

// CoverAreaOfInterest returns the deduplicated set of cells at the given
// level whose centroids fall inside the area of interest. Multipart
// geometry is split into single-part polygons first, since H3 polygon fill
// only handles single connected rings; the per-part results are unioned.
//
// An empty union is reported as ErrResolutionTooCoarse with a hint to retry
// one level finer, matching the behavior callers rely on to probe for a
// workable resolution. The result is sorted by cell id.
func CoverAreaOfInterest(grid GridIndex, geometry orb.Geometry, level int) ([]CellID, error) {
	parts, err := splitMultipart(geometry)
	if err != nil {
		return nil, err
	}

	seen := make(map[CellID]struct{})
	for _, part := range parts {
		cells, err := grid.CoverCells(part, level)
		if err != nil {
			return nil, fmt.Errorf("cover cells at level %d: %w", level, err)
		}
		for _, cell := range cells {
			seen[cell] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: level %d yields no cells, try level %d", ErrResolutionTooCoarse, level, level+1)
	}

	ids := make([]CellID, 0, len(seen))
	for cell := range seen {
		ids = append(ids, cell)
	}
	slices.Sort(ids)
	return ids, nil
}

// TessellateAreaOfInterest covers the area of interest at the given level
// and returns each covering cell with its boundary ring, for callers that
// want hexagon geometry without any point data.
func TessellateAreaOfInterest(grid GridIndex, geometry orb.Geometry, level int) ([]CellGeometry, error) {
	ids, err := CoverAreaOfInterest(grid, geometry, level)
	if err != nil {
		return nil, err
	}

	cells := make([]CellGeometry, 0, len(ids))
	for _, id := range ids {
		boundary, err := grid.BoundaryPolygon(id)
		if err != nil {
			return nil, fmt.Errorf("boundary for cell %s: %w", id, err)
		}
		cells = append(cells, CellGeometry{Cell: id, Boundary: boundary})
	}
	return cells, nil
}

// splitMultipart breaks a geometry into single-part polygons.
func splitMultipart(geometry orb.Geometry) ([]orb.Polygon, error) {
	switch g := geometry.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}, nil
	case orb.MultiPolygon:
		return slices.Clone([]orb.Polygon(g)), nil
	case orb.Ring:
		return []orb.Polygon{{g}}, nil
	default:
		return nil, fmt.Errorf("unsupported area geometry type %q", geometry.GeoJSONType())
	}
}
