package domain

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PointsFromGeoJSON converts a GeoJSON FeatureCollection of Point features
// into point records. Feature properties are carried through untouched. The
// point id is taken from the feature id when present, then from an "id"
// property, falling back to the feature's position in the collection. A
// non-Point geometry anywhere in the collection is an error; mixed inputs
// indicate a caller data problem, not something to silently skip.
func PointsFromGeoJSON(fc *geojson.FeatureCollection) ([]Point, error) {
	points := make([]Point, 0, len(fc.Features))
	for i, f := range fc.Features {
		// RFC 7946 permits "geometry": null; it decodes to a nil interface.
		if f.Geometry == nil {
			return nil, fmt.Errorf("feature %d: expected Point geometry, got null", i)
		}
		geom, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: expected Point geometry, got %q", i, f.Geometry.GeoJSONType())
		}
		points = append(points, Point{
			ID:         featureID(f, i),
			Lat:        geom.Lat(),
			Lon:        geom.Lon(),
			Properties: f.Properties,
		})
	}
	return points, nil
}

// HexbinsToGeoJSON converts hexbins into a FeatureCollection of Polygon
// features with h3_id, level, and count properties.
func HexbinsToGeoJSON(bins []Hexbin) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, bin := range bins {
		f := geojson.NewFeature(orb.Polygon{bin.Boundary})
		f.Properties = geojson.Properties{
			"h3_id": string(bin.Cell),
			"level": bin.Level,
			"count": bin.Count,
		}
		fc.Append(f)
	}
	return fc
}

// CellGeometriesToGeoJSON converts covering cells into a FeatureCollection
// of Polygon features with h3_id and level properties.
func CellGeometriesToGeoJSON(cells []CellGeometry, level int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, cell := range cells {
		f := geojson.NewFeature(orb.Polygon{cell.Boundary})
		f.Properties = geojson.Properties{
			"h3_id": string(cell.Cell),
			"level": level,
		}
		fc.Append(f)
	}
	return fc
}

func featureID(f *geojson.Feature, index int) string {
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	if id, ok := f.Properties["id"].(string); ok && id != "" {
		return id
	}
	return strconv.Itoa(index)
}
