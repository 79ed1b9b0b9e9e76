package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/samirrijal/geostore/internal/core/domain"
)

// Marshal encodes g as a GeoJSON geometry object. GeoJSON positions carry at
// most x, y and z, so measures are dropped. maxDecimalDigits <= 0 keeps full
// precision.
func Marshal(g domain.Geometry, maxDecimalDigits int) ([]byte, error) {
	t, err := ToGeom(g, 0)
	if err != nil {
		return nil, err
	}
	var opts []geojson.EncodeGeometryOption
	if maxDecimalDigits > 0 {
		opts = append(opts, geojson.EncodeGeometryWithMaxDecimalDigits(maxDecimalDigits))
	}
	return geojson.Marshal(dropM(t), opts...)
}

// Unmarshal decodes a GeoJSON geometry object. Positions with three values
// are read as XYZ and four as XYZM.
func Unmarshal(data []byte) (domain.Geometry, error) {
	var t geom.T
	if err := geojson.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return FromGeom(t)
}

// Feature is a GeoJSON feature converted to the domain model.
type Feature struct {
	ID         string
	Properties map[string]any
	Geometry   domain.Geometry
}

// UnmarshalFeatureCollection decodes a GeoJSON FeatureCollection. Features
// without geometry are rejected.
func UnmarshalFeatureCollection(data []byte) ([]Feature, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	out := make([]Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			return nil, fmt.Errorf("feature %d: %w: missing geometry", i, ErrUnsupported)
		}
		g, err := FromGeom(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out = append(out, Feature{ID: f.ID, Properties: f.Properties, Geometry: g})
	}
	return out, nil
}

// dropM projects away the measure ordinate, leaving XY or XYZ.
func dropM(t geom.T) geom.T {
	layout := t.Layout()
	mi := layout.MIndex()
	if mi < 0 {
		return t
	}
	target := geom.XY
	if layout == geom.XYZM {
		target = geom.XYZ
	}

	if c, ok := t.(*geom.GeometryCollection); ok {
		out := geom.NewGeometryCollection()
		for _, child := range c.Geoms() {
			out.MustPush(dropM(child))
		}
		return out.SetSRID(c.SRID())
	}

	stride := layout.Stride()
	src := t.FlatCoords()
	flat := make([]float64, 0, len(src)/stride*target.Stride())
	for i := 0; i+stride <= len(src); i += stride {
		for j := 0; j < stride; j++ {
			if j != mi {
				flat = append(flat, src[i+j])
			}
		}
	}
	scale := func(ends []int) []int {
		out := make([]int, len(ends))
		for i, e := range ends {
			out[i] = e / stride * target.Stride()
		}
		return out
	}

	var out geom.T = t
	switch v := t.(type) {
	case *geom.Point:
		out = geom.NewPointFlat(target, flat).SetSRID(v.SRID())
	case *geom.LineString:
		out = geom.NewLineStringFlat(target, flat).SetSRID(v.SRID())
	case *geom.Polygon:
		out = geom.NewPolygonFlat(target, flat, scale(v.Ends())).SetSRID(v.SRID())
	case *geom.MultiPoint:
		out = geom.NewMultiPointFlat(target, flat).SetSRID(v.SRID())
	case *geom.MultiLineString:
		out = geom.NewMultiLineStringFlat(target, flat, scale(v.Ends())).SetSRID(v.SRID())
	case *geom.MultiPolygon:
		endss := make([][]int, 0, len(v.Endss()))
		for _, ends := range v.Endss() {
			endss = append(endss, scale(ends))
		}
		out = geom.NewMultiPolygonFlat(target, flat, endss).SetSRID(v.SRID())
	}
	return out
}
