package domain

// SuppressBelowThreshold assigns each point the finest (cell, level) pair
// whose cell holds strictly more than minCount points, and drops every point
// whose cell never clears the floor at any configured level.
//
// Levels are visited coarsest to finest. At each level the points sharing a
// cell are counted, and members of clearing cells are assigned that cell,
// overwriting any assignment made at a coarser level. Later levels winning
// means a point ends up at the finest resolution that still clears the
// floor: dense areas get small hexagons, sparse areas roll up.
//
// The drop is the privacy suppression step: a point below the floor at every
// level must never surface in output. minCount at or above the total point
// count therefore yields an empty result, which is valid, not an error.
func SuppressBelowThreshold(points []AnnotatedPoint, minCount int) []AnnotatedPoint {
	for _, level := range levelRange(points) {
		counts := make(map[CellID]int, len(points))
		for i := range points {
			counts[points[i].CellByLevel[level]]++
		}

		for i := range points {
			cell := points[i].CellByLevel[level]
			if counts[cell] > minCount {
				points[i].Assignment = &Assignment{Cell: cell, Level: level}
			}
		}
	}

	assigned := make([]AnnotatedPoint, 0, len(points))
	for _, p := range points {
		if p.Assignment != nil {
			assigned = append(assigned, p)
		}
	}
	return assigned
}
