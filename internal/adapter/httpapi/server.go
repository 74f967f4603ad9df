// Package httpapi exposes the hexbin aggregation service over HTTP, along
// with health, readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/morenobcn/hexbin-service/internal/config"
	"github.com/morenobcn/hexbin-service/internal/domain"
	"github.com/morenobcn/hexbin-service/internal/pipeline"
)

const (
	// Request bodies above this size are rejected before parsing.
	maxBodyBytes = 64 << 20

	// H3 supports resolutions 0 through 15.
	maxH3Level = 15
)

// Service is the aggregation capability the server fronts.
type Service interface {
	Aggregate(ctx context.Context, points []domain.Point, opts pipeline.Options) (*pipeline.Result, error)
	Tessellate(ctx context.Context, geometry orb.Geometry, level int) ([]domain.CellGeometry, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the aggregation API plus /healthz, /readyz, and /metrics.
type Server struct {
	httpServer *http.Server
	svc        Service
	cfg        *config.Config
	logger     *slog.Logger
}

// NewServer creates the HTTP server and wires all routes.
func NewServer(cfg *config.Config, svc Service, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		cfg:    cfg,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/hexbins", s.handleHexbins)
	mux.HandleFunc("POST /v1/tessellate", s.handleTessellate)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleHexbins accepts a GeoJSON FeatureCollection of points and responds
// with a FeatureCollection of hexbin polygons. Level range and count floor
// default to the service configuration; min_level, max_level, and min_count
// query parameters override them per request.
func (s *Server) handleHexbins(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid GeoJSON: %v", err))
		return
	}
	if len(fc.Features) > s.cfg.MaxRequestPoints {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("too many features: %d exceeds limit %d", len(fc.Features), s.cfg.MaxRequestPoints))
		return
	}

	points, err := domain.PointsFromGeoJSON(fc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := pipeline.Options{
		MinLevel: s.cfg.MinLevel,
		MaxLevel: s.cfg.MaxLevel,
		MinCount: s.cfg.MinPointCount,
	}
	if err := overrideFromQuery(r, &opts); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.svc.Aggregate(r.Context(), points, opts)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidLevelRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("aggregation failed", "error", err, "points", len(points))
		writeError(w, http.StatusInternalServerError, "aggregation failed")
		return
	}

	out := domain.HexbinsToGeoJSON(result.Hexbins)
	out.ExtraMembers = geojson.Properties{
		"generated_at":      result.GeneratedAt.Format(time.RFC3339),
		"total_points":      result.TotalPoints,
		"suppressed_points": result.SuppressedPoints,
		"promoted_points":   result.PromotedPoints,
	}
	writeJSON(w, http.StatusOK, out)
}

// handleTessellate accepts a GeoJSON Feature or bare geometry describing an
// area of interest and responds with the covering hexagons at the requested
// level. A resolution too coarse to produce any cell yields 422 so callers
// can retry finer.
func (s *Server) handleTessellate(w http.ResponseWriter, r *http.Request) {
	level, err := requiredIntParam(r, "level")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	geometry, err := parseAreaGeometry(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cells, err := s.svc.Tessellate(r.Context(), geometry, level)
	if err != nil {
		if errors.Is(err, domain.ErrResolutionTooCoarse) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("tessellation failed", "error", err, "level", level)
		writeError(w, http.StatusInternalServerError, "tessellation failed")
		return
	}

	writeJSON(w, http.StatusOK, domain.CellGeometriesToGeoJSON(cells, level))
}

// readBody drains the request body under the size cap. On failure it writes
// the error response itself: 413 when the cap was hit, 400 for any other
// read failure such as a dropped connection.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "failed to read request body")
		}
		return nil, false
	}
	return body, true
}

// parseAreaGeometry accepts either a Feature or a bare geometry object and
// returns a polygonal orb geometry.
func parseAreaGeometry(body []byte) (orb.Geometry, error) {
	var geometry orb.Geometry
	if f, err := geojson.UnmarshalFeature(body); err == nil {
		geometry = f.Geometry
	} else {
		g, err := geojson.UnmarshalGeometry(body)
		if err != nil {
			return nil, fmt.Errorf("invalid GeoJSON area: %w", err)
		}
		geometry = g.Geometry()
	}

	// A Feature with "geometry": null decodes to a nil interface.
	if geometry == nil {
		return nil, errors.New("area must be a Polygon or MultiPolygon, got null")
	}

	switch geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return geometry, nil
	default:
		return nil, fmt.Errorf("area must be a Polygon or MultiPolygon, got %q", geometry.GeoJSONType())
	}
}

func overrideFromQuery(r *http.Request, opts *pipeline.Options) error {
	assign := []struct {
		name   string
		target *int
	}{
		{"min_level", &opts.MinLevel},
		{"max_level", &opts.MaxLevel},
		{"min_count", &opts.MinCount},
	}
	for _, p := range assign {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", p.name, raw)
		}
		*p.target = v
	}

	// Overrides obey the same bounds config.Load enforces at boot. The
	// min < max constraint is checked by the pipeline itself.
	if opts.MinLevel < 0 || opts.MaxLevel > maxH3Level {
		return fmt.Errorf("levels must be within [0, %d], got [%d, %d]", maxH3Level, opts.MinLevel, opts.MaxLevel)
	}
	if opts.MinCount < 0 {
		return errors.New("min_count must not be negative")
	}
	return nil
}

func requiredIntParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing required parameter %q", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
