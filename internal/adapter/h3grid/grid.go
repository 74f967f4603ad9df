// Package h3grid implements domain.GridIndex on Uber's H3 library.
package h3grid

import (
	"fmt"

	"github.com/paulmach/orb"
	h3 "github.com/uber/h3-go/v4"

	"github.com/morenobcn/hexbin-service/internal/domain"
)

// Grid is the production grid index. It is stateless; a single instance is
// safe for concurrent use.
type Grid struct{}

// New creates an H3-backed grid index.
func New() *Grid {
	return &Grid{}
}

// CellForPoint returns the H3 cell containing (lat, lon) at the given
// resolution, in string index form.
func (g *Grid) CellForPoint(lat, lon float64, level int) (domain.CellID, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lon), level)
	if err != nil {
		return "", fmt.Errorf("latlng to cell at level %d: %w", level, err)
	}
	return domain.CellID(cell.String()), nil
}

// ParentCell returns the ancestor of cell at the coarser parentLevel, using
// H3's own hierarchy so results stay consistent with CellForPoint.
func (g *Grid) ParentCell(id domain.CellID, parentLevel int) (domain.CellID, error) {
	cell, err := parseCell(id)
	if err != nil {
		return "", err
	}
	parent, err := cell.Parent(parentLevel)
	if err != nil {
		return "", fmt.Errorf("parent of %s at level %d: %w", id, parentLevel, err)
	}
	return domain.CellID(parent.String()), nil
}

// BoundaryPolygon returns the cell boundary as a closed ring in GeoJSON
// (lon, lat) order. H3 returns vertices unclosed in (lat, lng) order.
func (g *Grid) BoundaryPolygon(id domain.CellID) (orb.Ring, error) {
	cell, err := parseCell(id)
	if err != nil {
		return nil, err
	}
	boundary, err := h3.CellToBoundary(cell)
	if err != nil {
		return nil, fmt.Errorf("boundary of %s: %w", id, err)
	}

	ring := make(orb.Ring, 0, len(boundary)+1)
	for _, vertex := range boundary {
		ring = append(ring, orb.Point{vertex.Lng, vertex.Lat})
	}
	ring = append(ring, ring[0])
	return ring, nil
}

// CoverCells returns the cells at the given resolution whose centroids fall
// inside the polygon. The polygon's first ring is the outer loop, the rest
// are holes; it must be single-part.
func (g *Grid) CoverCells(polygon orb.Polygon, level int) ([]domain.CellID, error) {
	if len(polygon) == 0 {
		return nil, nil
	}

	geo := h3.GeoPolygon{GeoLoop: toGeoLoop(polygon[0])}
	for _, hole := range polygon[1:] {
		geo.Holes = append(geo.Holes, toGeoLoop(hole))
	}

	cells, err := h3.PolygonToCells(geo, level)
	if err != nil {
		return nil, fmt.Errorf("polygon to cells at level %d: %w", level, err)
	}

	ids := make([]domain.CellID, 0, len(cells))
	for _, cell := range cells {
		ids = append(ids, domain.CellID(cell.String()))
	}
	return ids, nil
}

func toGeoLoop(ring orb.Ring) h3.GeoLoop {
	loop := make(h3.GeoLoop, 0, len(ring))
	for _, p := range ring {
		loop = append(loop, h3.NewLatLng(p.Lat(), p.Lon()))
	}
	return loop
}

func parseCell(id domain.CellID) (h3.Cell, error) {
	cell := h3.Cell(h3.IndexFromString(string(id)))
	if !cell.IsValid() {
		return 0, fmt.Errorf("invalid h3 cell id %q", id)
	}
	return cell, nil
}
