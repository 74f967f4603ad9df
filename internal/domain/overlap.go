package domain

// ResolveOverlaps promotes points to assigned ancestor cells so that no
// output hexagon is a strict ancestor of another. Without this step a fine
// cell that cleared the threshold could appear inside a coarser cell that
// also cleared it (populated by the fine cell's under-threshold siblings),
// double-counting the shared area.
//
// The set of assigned cell ids is snapshotted once at stage entry; all
// promotion checks run against that snapshot, not against the table as it
// mutates ("snapshot" semantics, pinned by a regression test). Levels are
// walked finest to second-coarsest: at each step, any point whose
// one-level-coarser ancestor appears in the snapshot is reassigned to that
// ancestor. Because coarser steps overwrite finer ones, each point ends at
// the coarsest of its ancestors present in the snapshot, so promotions
// cascade across multiple levels in a single pass.
func ResolveOverlaps(points []AnnotatedPoint) []AnnotatedPoint {
	levels := levelRange(points)
	if len(levels) < 2 {
		return points
	}

	assigned := make(map[CellID]struct{}, len(points))
	for _, p := range points {
		if p.Assignment != nil {
			assigned[p.Assignment.Cell] = struct{}{}
		}
	}

	for i := len(levels) - 1; i >= 1; i-- {
		parentLevel := levels[i-1]
		for j := range points {
			parent := points[j].CellByLevel[parentLevel]
			if _, ok := assigned[parent]; ok {
				points[j].Assignment = &Assignment{Cell: parent, Level: parentLevel}
			}
		}
	}

	return points
}
