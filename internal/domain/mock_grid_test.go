package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// mockGrid is a synthetic hierarchical grid for pipeline tests. A cell at
// level L spans 2^(mockFinestLevel-L) degrees of longitude (latitude is
// ignored), so each cell has exactly two children at the next finer level
// and the parent relation is an index shift. Cell ids look like "9/3".
// Error fields force the corresponding method to fail.
type mockGrid struct {
	cellErr     error
	parentErr   error
	boundaryErr error
	coverErr    error
}

const mockFinestLevel = 9

func mockCell(level, idx int) CellID {
	return CellID(fmt.Sprintf("%d/%d", level, idx))
}

func parseMockCell(cell CellID) (level, idx int, err error) {
	_, err = fmt.Sscanf(string(cell), "%d/%d", &level, &idx)
	return level, idx, err
}

func mockCellWidth(level int) float64 {
	return float64(int(1) << (mockFinestLevel - level))
}

func (g *mockGrid) CellForPoint(_, lon float64, level int) (CellID, error) {
	if g.cellErr != nil {
		return "", g.cellErr
	}
	return mockCell(level, int(math.Floor(lon/mockCellWidth(level)))), nil
}

func (g *mockGrid) ParentCell(cell CellID, parentLevel int) (CellID, error) {
	if g.parentErr != nil {
		return "", g.parentErr
	}
	level, idx, err := parseMockCell(cell)
	if err != nil {
		return "", err
	}
	return mockCell(parentLevel, idx>>(level-parentLevel)), nil
}

func (g *mockGrid) BoundaryPolygon(cell CellID) (orb.Ring, error) {
	if g.boundaryErr != nil {
		return nil, g.boundaryErr
	}
	level, idx, err := parseMockCell(cell)
	if err != nil {
		return nil, err
	}
	w := mockCellWidth(level)
	minLon, maxLon := float64(idx)*w, float64(idx+1)*w
	return orb.Ring{
		{minLon, 0}, {maxLon, 0}, {maxLon, 1}, {minLon, 1}, {minLon, 0},
	}, nil
}

// CoverCells approximates centroid containment on the longitude axis only:
// a cell is covered when its center longitude falls inside the polygon's
// bound. That is enough to model both dense coverage and the
// too-coarse-to-hit-anything case.
func (g *mockGrid) CoverCells(polygon orb.Polygon, level int) ([]CellID, error) {
	if g.coverErr != nil {
		return nil, g.coverErr
	}
	bound := polygon.Bound()
	w := mockCellWidth(level)

	var cells []CellID
	first := int(math.Floor(bound.Min.Lon()/w)) - 1
	last := int(math.Floor(bound.Max.Lon()/w)) + 1
	for idx := first; idx <= last; idx++ {
		center := (float64(idx) + 0.5) * w
		if center >= bound.Min.Lon() && center <= bound.Max.Lon() {
			cells = append(cells, mockCell(level, idx))
		}
	}
	return cells, nil
}

// clusterAt builds n points sharing the same coordinates, ids prefixed for
// readability in failures.
func clusterAt(prefix string, n int, lat, lon float64) []Point {
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, Point{
			ID:  fmt.Sprintf("%s-%d", prefix, i),
			Lat: lat,
			Lon: lon,
		})
	}
	return points
}
