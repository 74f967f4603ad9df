package domain

import (
	"errors"

	"github.com/paulmach/orb"
)

// ErrInvalidLevelRange reports a configured level range where the minimum
// (coarsest) level is not strictly below the maximum (finest) level. This is
// a configuration error and is raised before any grid call.
var ErrInvalidLevelRange = errors.New("minimum level must be less than maximum level")

// ErrResolutionTooCoarse reports that covering an area of interest produced
// zero cells, meaning no cell centroid fell inside the area at the requested
// resolution. Callers should retry at a finer level.
var ErrResolutionTooCoarse = errors.New("resolution too coarse for area of interest")

// GridIndex is the hierarchical hexagonal grid capability the pipeline
// consumes. Implementations must keep ParentCell consistent with
// CellForPoint: the parent relation is the library's own hierarchy, never an
// independent derivation from coordinates. All methods are pure and
// side-effect free.
type GridIndex interface {
	// CellForPoint returns the cell containing (lat, lon) at the given level.
	CellForPoint(lat, lon float64, level int) (CellID, error)

	// ParentCell returns the ancestor of cell at the coarser parentLevel.
	ParentCell(cell CellID, parentLevel int) (CellID, error)

	// BoundaryPolygon returns the cell's boundary as a closed ring in
	// GeoJSON (lon, lat) order.
	BoundaryPolygon(cell CellID) (orb.Ring, error)

	// CoverCells returns the cells at the given level whose centroids fall
	// inside the single-part polygon.
	CoverCells(polygon orb.Polygon, level int) ([]CellID, error)
}
