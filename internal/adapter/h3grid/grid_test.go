package h3grid_test

import (
	"testing"

	"github.com/paulmach/orb"
	h3 "github.com/uber/h3-go/v4"

	"github.com/morenobcn/hexbin-service/internal/adapter/h3grid"
	"github.com/morenobcn/hexbin-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Downtown San Francisco; its resolution 9 cell is a well-known H3 example.
const (
	sfLat = 37.775938728915946
	sfLon = -122.41795063018799
)

func resolutionOf(t *testing.T, id domain.CellID) int {
	t.Helper()
	cell := h3.Cell(h3.IndexFromString(string(id)))
	require.True(t, cell.IsValid(), "cell id %q is not valid", id)
	return cell.Resolution()
}

func TestCellForPoint(t *testing.T) {
	grid := h3grid.New()

	cell, err := grid.CellForPoint(sfLat, sfLon, 9)
	require.NoError(t, err)
	assert.Equal(t, domain.CellID("8928308280fffff"), cell)
	assert.Equal(t, 9, resolutionOf(t, cell))
}

func TestParentCell(t *testing.T) {
	grid := h3grid.New()

	child, err := grid.CellForPoint(sfLat, sfLon, 9)
	require.NoError(t, err)

	parent, err := grid.ParentCell(child, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, resolutionOf(t, parent))

	grandparent, err := grid.ParentCell(child, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, resolutionOf(t, grandparent))

	// Parent lookups compose: parent-of-parent equals the direct ancestor.
	viaParent, err := grid.ParentCell(parent, 5)
	require.NoError(t, err)
	assert.Equal(t, grandparent, viaParent)
}

func TestParentCell_InvalidID(t *testing.T) {
	_, err := h3grid.New().ParentCell("not-a-cell", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid h3 cell id")
}

func TestBoundaryPolygon(t *testing.T) {
	grid := h3grid.New()

	ring, err := grid.BoundaryPolygon("8928308280fffff")
	require.NoError(t, err)

	// Hexagon: six vertices plus the closing point.
	require.GreaterOrEqual(t, len(ring), 7)
	assert.Equal(t, ring[0], ring[len(ring)-1], "ring must be closed")

	for _, p := range ring {
		assert.InDelta(t, sfLon, p.Lon(), 0.01)
		assert.InDelta(t, sfLat, p.Lat(), 0.01)
	}
}

func TestBoundaryPolygon_InvalidID(t *testing.T) {
	_, err := h3grid.New().BoundaryPolygon("zzz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid h3 cell id")
}

func TestCoverCells(t *testing.T) {
	grid := h3grid.New()

	// Roughly one degree square around San Francisco.
	area := orb.Polygon{orb.Ring{
		{sfLon - 0.5, sfLat - 0.5},
		{sfLon + 0.5, sfLat - 0.5},
		{sfLon + 0.5, sfLat + 0.5},
		{sfLon - 0.5, sfLat + 0.5},
		{sfLon - 0.5, sfLat - 0.5},
	}}

	cells, err := grid.CoverCells(area, 5)
	require.NoError(t, err)
	require.NotEmpty(t, cells)

	seen := make(map[domain.CellID]struct{}, len(cells))
	for _, cell := range cells {
		assert.Equal(t, 5, resolutionOf(t, cell))
		seen[cell] = struct{}{}
	}
	assert.Len(t, seen, len(cells), "covering set must not contain duplicates")
}

func TestCoverCells_EmptyPolygon(t *testing.T) {
	cells, err := h3grid.New().CoverCells(orb.Polygon{}, 5)
	require.NoError(t, err)
	assert.Empty(t, cells)
}
