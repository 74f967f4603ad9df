// Package domain implements multi-resolution hexbin aggregation of
// geographic point data with k-anonymity style suppression.
//
// # Aggregation Model
//
// Points are binned into Uber H3 hexagonal cells. H3 partitions the globe
// into a hierarchy of nested hexagons: resolution 0 cells are continental
// in scale, resolution 15 cells are about a square meter. Every cell at
// resolution R sits inside exactly one parent at resolution R-1. A run is
// configured with a level range [minLevel, maxLevel] and a minimum point
// count; the pipeline reports each point at the finest resolution whose
// cell still holds more than the minimum number of points.
//
// Cells below the minimum at every configured level are dropped entirely.
// This is the privacy guarantee: no output hexagon ever identifies fewer
// points than the configured floor, so sparse areas either roll up to a
// coarser hexagon or disappear from the output.
//
// # Pipeline Stages
//
// The pipeline is four pure transformations over a slice of point records:
//
//  1. [TagPointsWithCells] annotates every point with its cell id at each
//     level in the range. Only the finest cell is computed from raw
//     coordinates; coarser cells come from repeated parent lookups, which
//     guarantees the per-point cell ids nest consistently.
//  2. [SuppressBelowThreshold] walks levels coarsest to finest, assigning
//     points whose cell clears the count floor. Finer levels overwrite
//     coarser assignments, so a point lands at the finest level that still
//     clears. Points that never clear are dropped.
//  3. [ResolveOverlaps] promotes points whose assigned cell has an
//     ancestor that is itself assigned, so a hexagon and one of its
//     ancestors never both appear in the output.
//  4. [MaterializeHexbins] groups the surviving assignments into one
//     record per cell with a point count and a boundary polygon.
//
// [AggregatePointsToHexbins] composes the four stages.
//
// # Grid Capability
//
// The H3 library itself sits behind the [GridIndex] interface; this
// package never computes cell ids or boundaries on its own. The production
// implementation lives in internal/adapter/h3grid.
//
// # Area of Interest Tessellation
//
// [CoverAreaOfInterest] and [TessellateAreaOfInterest] cover an arbitrary
// polygonal area with hexagons at a fixed resolution, splitting multipart
// geometry first because H3 polygon fill only accepts single connected
// rings. A resolution too coarse to yield any cell is an explicit error
// ([ErrResolutionTooCoarse]), never a silent empty result.
package domain
