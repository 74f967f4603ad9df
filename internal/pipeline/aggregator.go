// Package pipeline orchestrates the four-stage hexbin aggregation with
// structured logging and Prometheus metrics around the pure domain
// transforms.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"

	"github.com/morenobcn/hexbin-service/internal/domain"
	"github.com/morenobcn/hexbin-service/internal/observability"
)

// readiness probes ask the grid for an arbitrary coarse cell.
const probeLevel = 0

// Options are the per-run aggregation parameters.
type Options struct {
	MinLevel int
	MaxLevel int
	MinCount int
}

// Result is one completed aggregation run.
type Result struct {
	Hexbins          []domain.Hexbin
	TotalPoints      int
	SuppressedPoints int
	PromotedPoints   int
	GeneratedAt      time.Time
}

// Aggregator runs the aggregation and tessellation pipelines. Each run
// operates on its own table; a single Aggregator is safe for concurrent use.
type Aggregator struct {
	grid    domain.GridIndex
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates an Aggregator with the given grid capability and observability.
func New(grid domain.GridIndex, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		grid:    grid,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once the grid index has answered a probe
// lookup, or an error describing why the service is not yet ready.
func (a *Aggregator) CheckReadiness(_ context.Context) error {
	if a.ready.Load() {
		return nil
	}
	if _, err := a.grid.CellForPoint(0, 0, probeLevel); err != nil {
		return fmt.Errorf("grid index probe: %w", err)
	}
	a.ready.Store(true)
	return nil
}

// Aggregate runs the four pipeline stages over the points. The stages are
// all-or-nothing: any grid failure aborts the run with no partial result.
func (a *Aggregator) Aggregate(ctx context.Context, points []domain.Point, opts Options) (*Result, error) {
	start := time.Now()
	a.metrics.PointsIngested.Add(float64(len(points)))
	a.metrics.RequestPoints.Observe(float64(len(points)))

	annotated, err := a.timedTag(points, opts)
	if err != nil {
		a.metrics.AggregationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		a.metrics.AggregationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	stage := time.Now()
	assigned := domain.SuppressBelowThreshold(annotated, opts.MinCount)
	a.metrics.StageDuration.WithLabelValues("suppress").Observe(time.Since(stage).Seconds())
	suppressed := len(points) - len(assigned)
	a.metrics.PointsSuppressed.Add(float64(suppressed))

	stage = time.Now()
	before := assignmentSnapshot(assigned)
	resolved := domain.ResolveOverlaps(assigned)
	a.metrics.StageDuration.WithLabelValues("resolve").Observe(time.Since(stage).Seconds())
	promoted := countPromotions(before, resolved)
	a.metrics.PointsPromoted.Add(float64(promoted))

	stage = time.Now()
	bins, err := domain.MaterializeHexbins(a.grid, resolved)
	if err != nil {
		a.metrics.AggregationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	a.metrics.StageDuration.WithLabelValues("materialize").Observe(time.Since(stage).Seconds())

	a.metrics.HexbinsProduced.Add(float64(len(bins)))
	a.metrics.AggregationsTotal.WithLabelValues("success").Inc()
	a.metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	a.ready.Store(true)

	a.logger.Info("aggregation complete",
		"points", len(points),
		"suppressed", suppressed,
		"promoted", promoted,
		"hexbins", len(bins),
		"min_level", opts.MinLevel,
		"max_level", opts.MaxLevel,
		"min_count", opts.MinCount,
		"duration", time.Since(start),
	)

	return &Result{
		Hexbins:          bins,
		TotalPoints:      len(points),
		SuppressedPoints: suppressed,
		PromotedPoints:   promoted,
		GeneratedAt:      clock.Now(),
	}, nil
}

// Tessellate covers an area of interest with hexagon cells at the given
// level and returns them with boundary geometry.
func (a *Aggregator) Tessellate(ctx context.Context, geometry orb.Geometry, level int) ([]domain.CellGeometry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cells, err := domain.TessellateAreaOfInterest(a.grid, geometry, level)
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrResolutionTooCoarse) {
			outcome = "empty"
		}
		a.metrics.TessellationsTotal.WithLabelValues(outcome).Inc()
		return nil, err
	}

	a.metrics.TessellationsTotal.WithLabelValues("success").Inc()
	a.logger.Info("tessellation complete", "level", level, "cells", len(cells))
	return cells, nil
}

func (a *Aggregator) timedTag(points []domain.Point, opts Options) ([]domain.AnnotatedPoint, error) {
	stage := time.Now()
	annotated, err := domain.TagPointsWithCells(a.grid, points, opts.MinLevel, opts.MaxLevel)
	if err != nil {
		return nil, err
	}
	a.metrics.StageDuration.WithLabelValues("tag").Observe(time.Since(stage).Seconds())
	return annotated, nil
}

// assignmentSnapshot records each point's assigned cell keyed by point id,
// taken before overlap resolution mutates the table.
func assignmentSnapshot(points []domain.AnnotatedPoint) map[string]domain.CellID {
	snap := make(map[string]domain.CellID, len(points))
	for _, p := range points {
		if p.Assignment != nil {
			snap[p.ID] = p.Assignment.Cell
		}
	}
	return snap
}

func countPromotions(before map[string]domain.CellID, after []domain.AnnotatedPoint) int {
	promoted := 0
	for _, p := range after {
		if p.Assignment == nil {
			continue
		}
		if cell, ok := before[p.ID]; ok && cell != p.Assignment.Cell {
			promoted++
		}
	}
	return promoted
}
