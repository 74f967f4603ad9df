package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatePointsToHexbins_DenseCellReportsAtFinestLevel(t *testing.T) {
	bins, err := AggregatePointsToHexbins(&mockGrid{}, clusterAt("p", 150, 10, 0.5), 8, 9, 100)
	require.NoError(t, err)

	require.Len(t, bins, 1)
	assert.Equal(t, 9, bins[0].Level)
	assert.Equal(t, 150, bins[0].Count)
}

func TestAggregatePointsToHexbins_SparseCellsReportAtParentLevel(t *testing.T) {
	// Two sibling cells of 50 and 60 points: only the parent clears, so the
	// output is a single parent-level hexagon and no finer record.
	points := append(clusterAt("west", 50, 10, 0.5), clusterAt("east", 60, 10, 1.5)...)

	bins, err := AggregatePointsToHexbins(&mockGrid{}, points, 8, 9, 100)
	require.NoError(t, err)

	require.Len(t, bins, 1)
	assert.Equal(t, mockCell(8, 0), bins[0].Cell)
	assert.Equal(t, 8, bins[0].Level)
	assert.Equal(t, 110, bins[0].Count)
}

func TestAggregatePointsToHexbins_ThresholdAboveTotalYieldsEmpty(t *testing.T) {
	bins, err := AggregatePointsToHexbins(&mockGrid{}, clusterAt("p", 99, 10, 0.5), 5, 9, 100)
	require.NoError(t, err)
	assert.Empty(t, bins)
}

func TestAggregatePointsToHexbins_InvalidLevelRange(t *testing.T) {
	_, err := AggregatePointsToHexbins(&mockGrid{}, clusterAt("p", 10, 10, 0.5), 9, 5, 100)
	assert.ErrorIs(t, err, ErrInvalidLevelRange)
}

func TestAggregatePointsToHexbins_SuppressionFloorAndConservation(t *testing.T) {
	const minCount = 100

	// Mixed density: a dense fine cell, a pair that only clears via its
	// parent, a mid-density cell, and stragglers that never clear.
	points := append(clusterAt("dense", 180, 10, 0.5), clusterAt("sib", 40, 10, 1.5)...)
	points = append(points, clusterAt("mid", 130, 10, 6.5)...)
	points = append(points, clusterAt("noise", 7, 10, 100.5)...)

	bins, err := AggregatePointsToHexbins(&mockGrid{}, points, 7, 9, minCount)
	require.NoError(t, err)
	require.NotEmpty(t, bins)

	total := 0
	for _, bin := range bins {
		assert.Greater(t, bin.Count, minCount, "cell %s violates the suppression floor", bin.Cell)
		total += bin.Count
	}

	// Every surviving point is counted exactly once; only the noise points
	// may be missing.
	assert.LessOrEqual(t, total, len(points))
	assert.Equal(t, 350, total)
}

func TestAggregatePointsToHexbins_NoAssignedCellIsAncestorOfAnother(t *testing.T) {
	points := append(clusterAt("a", 120, 10, 0.5), clusterAt("b", 30, 10, 1.5)...)
	points = append(points, clusterAt("c", 140, 10, 4.5)...)
	points = append(points, clusterAt("d", 105, 10, 12.5)...)

	bins, err := AggregatePointsToHexbins(&mockGrid{}, points, 7, 9, 100)
	require.NoError(t, err)
	require.NotEmpty(t, bins)

	for _, coarse := range bins {
		for _, fine := range bins {
			if coarse.Level >= fine.Level {
				continue
			}
			fineLevel, fineIdx, err := parseMockCell(fine.Cell)
			require.NoError(t, err)
			ancestor := mockCell(coarse.Level, fineIdx>>(fineLevel-coarse.Level))
			assert.NotEqual(t, coarse.Cell, ancestor,
				"cell %s is an ancestor of cell %s", coarse.Cell, fine.Cell)
		}
	}
}
