package sjoin

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
)

// GeometryType represents the GeoJSON geometry type
type GeometryType string

const (
	GeometryPoint        GeometryType = "Point"
	GeometryPolygon      GeometryType = "Polygon"
	GeometryMultiPolygon GeometryType = "MultiPolygon"
)

// Geometry represents a GeoJSON geometry object
type Geometry struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a GeoJSON feature with geometry and properties
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
	ID         interface{}            `json:"id,omitempty"`
}

// FeatureCollection represents a GeoJSON FeatureCollection
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection creates a new empty FeatureCollection
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*Feature, 0),
	}
}

// AddFeature appends a feature to the collection
func (fc *FeatureCollection) AddFeature(f *Feature) {
	fc.Features = append(fc.Features, f)
}

// NewFeature creates a Feature with the given geometry and properties
func NewFeature(geom *Geometry, props map[string]interface{}) *Feature {
	if props == nil {
		props = make(map[string]interface{})
	}
	return &Feature{
		Type:       "Feature",
		Geometry:   geom,
		Properties: props,
	}
}

// LoadFeatureCollection reads a GeoJSON FeatureCollection from a file.
func LoadFeatureCollection(path string) (*FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GeoJSON file: %w", err)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing GeoJSON: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}

	return &fc, nil
}

// SaveFeatureCollection writes a FeatureCollection to a file as GeoJSON.
func SaveFeatureCollection(path string, fc *FeatureCollection) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing GeoJSON file: %w", err)
	}
	return nil
}

// orbPoint converts a Geometry of type Point to an orb.Point.
// The bool return reports whether the conversion succeeded.
func orbPoint(geom *Geometry) (orb.Point, bool) {
	if geom == nil || geom.Type != GeometryPoint {
		return orb.Point{}, false
	}
	var coords [2]float64
	if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
		return orb.Point{}, false
	}
	return orb.Point{coords[0], coords[1]}, true
}

// orbPolygon converts a Geometry of type Polygon to an orb.Polygon.
// Returns nil if the geometry is nil, not a Polygon, or has invalid coordinates.
func orbPolygon(geom *Geometry) orb.Polygon {
	if geom == nil || geom.Type != GeometryPolygon {
		return nil
	}
	var rings [][][2]float64
	if err := json.Unmarshal(geom.Coordinates, &rings); err != nil {
		return nil
	}
	poly := make(orb.Polygon, len(rings))
	for i, ring := range rings {
		r := make(orb.Ring, len(ring))
		for j, c := range ring {
			r[j] = orb.Point{c[0], c[1]}
		}
		poly[i] = r
	}
	return poly
}

// orbMultiPolygon converts a Geometry of type MultiPolygon to an
// orb.MultiPolygon. Returns nil on any conversion failure.
func orbMultiPolygon(geom *Geometry) orb.MultiPolygon {
	if geom == nil || geom.Type != GeometryMultiPolygon {
		return nil
	}
	var polys [][][][2]float64
	if err := json.Unmarshal(geom.Coordinates, &polys); err != nil {
		return nil
	}
	mp := make(orb.MultiPolygon, len(polys))
	for i, rings := range polys {
		poly := make(orb.Polygon, len(rings))
		for j, ring := range rings {
			r := make(orb.Ring, len(ring))
			for k, c := range ring {
				r[k] = orb.Point{c[0], c[1]}
			}
			poly[j] = r
		}
		mp[i] = poly
	}
	return mp
}

// orbGeometry converts a Geometry to its orb equivalent. Only the geometry
// types this package joins (Point, Polygon, MultiPolygon) are supported.
func orbGeometry(geom *Geometry) (orb.Geometry, bool) {
	if geom == nil {
		return nil, false
	}
	switch geom.Type {
	case GeometryPoint:
		p, ok := orbPoint(geom)
		return p, ok
	case GeometryPolygon:
		poly := orbPolygon(geom)
		if poly == nil {
			return nil, false
		}
		return poly, true
	case GeometryMultiPolygon:
		mp := orbMultiPolygon(geom)
		if mp == nil {
			return nil, false
		}
		return mp, true
	default:
		return nil, false
	}
}

// pointToGeometry converts an orb.Point to a GeoJSON Geometry.
func pointToGeometry(p orb.Point) *Geometry {
	coordsJSON, _ := json.Marshal([2]float64{p[0], p[1]})
	return &Geometry{
		Type:        GeometryPoint,
		Coordinates: coordsJSON,
	}
}

// polygonToGeometry converts an orb.Polygon to a GeoJSON Geometry.
func polygonToGeometry(poly orb.Polygon) *Geometry {
	rings := make([][][2]float64, len(poly))
	for i, ring := range poly {
		r := make([][2]float64, len(ring))
		for j, p := range ring {
			r[j] = [2]float64{p[0], p[1]}
		}
		rings[i] = r
	}
	coordsJSON, _ := json.Marshal(rings)
	return &Geometry{
		Type:        GeometryPolygon,
		Coordinates: coordsJSON,
	}
}

// geometryFromOrb converts an orb geometry back to a GeoJSON Geometry.
// Returns nil for unsupported types.
func geometryFromOrb(g orb.Geometry) *Geometry {
	switch v := g.(type) {
	case orb.Point:
		return pointToGeometry(v)
	case orb.Polygon:
		return polygonToGeometry(v)
	case orb.MultiPolygon:
		polys := make([][][][2]float64, len(v))
		for i, poly := range v {
			rings := make([][][2]float64, len(poly))
			for j, ring := range poly {
				r := make([][2]float64, len(ring))
				for k, p := range ring {
					r[k] = [2]float64{p[0], p[1]}
				}
				rings[j] = r
			}
			polys[i] = rings
		}
		coordsJSON, _ := json.Marshal(polys)
		return &Geometry{
			Type:        GeometryMultiPolygon,
			Coordinates: coordsJSON,
		}
	default:
		return nil
	}
}
