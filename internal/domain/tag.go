package domain

import "fmt"

// TagPointsWithCells annotates every point with its cell id at each level in
// [minLevel, maxLevel]. The finest cell is computed from the point's
// coordinates; every coarser cell is derived from the next finer one by a
// parent lookup, finest to coarsest. Deriving instead of recomputing is what
// guarantees the nesting invariant the later stages depend on:
//
//	ParentCell(CellByLevel[L+1], L) == CellByLevel[L]
//
// Grid failures (for example an out-of-range coordinate) propagate unchanged.
func TagPointsWithCells(grid GridIndex, points []Point, minLevel, maxLevel int) ([]AnnotatedPoint, error) {
	if minLevel >= maxLevel {
		return nil, fmt.Errorf("%w: got min %d, max %d", ErrInvalidLevelRange, minLevel, maxLevel)
	}

	annotated := make([]AnnotatedPoint, 0, len(points))
	for _, p := range points {
		cells := make(map[int]CellID, maxLevel-minLevel+1)

		finest, err := grid.CellForPoint(p.Lat, p.Lon, maxLevel)
		if err != nil {
			return nil, fmt.Errorf("cell for point %q: %w", p.ID, err)
		}
		cells[maxLevel] = finest

		for level := maxLevel - 1; level >= minLevel; level-- {
			parent, err := grid.ParentCell(cells[level+1], level)
			if err != nil {
				return nil, fmt.Errorf("parent of cell %s at level %d: %w", cells[level+1], level, err)
			}
			cells[level] = parent
		}

		annotated = append(annotated, AnnotatedPoint{Point: p, CellByLevel: cells})
	}

	return annotated, nil
}
