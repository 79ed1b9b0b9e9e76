// Package geojson bridges domain geometries and go-geom, and through it
// GeoJSON (RFC 7946).
package geojson

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"

	"github.com/samirrijal/geostore/internal/core/domain"
)

// ErrUnsupported is returned for geometries the domain model cannot hold,
// such as empty points or collections mixing dimensions.
var ErrUnsupported = errors.New("geojson: unsupported geometry")

// ErrInvalid is returned for input that is not a GeoJSON geometry.
var ErrInvalid = errors.New("geojson: invalid document")

// layoutOf maps a dimension onto the go-geom layout with the same ordinates.
func layoutOf(d domain.Dimension) geom.Layout {
	switch d {
	case domain.DimensionZ:
		return geom.XYZ
	case domain.DimensionM:
		return geom.XYM
	case domain.DimensionZM:
		return geom.XYZM
	default:
		return geom.XY
	}
}

// ToGeom converts g into a go-geom geometry tagged with srid.
func ToGeom(g domain.Geometry, srid uint32) (geom.T, error) {
	var (
		t   geom.T
		err error
	)
	switch v := g.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil geometry", ErrUnsupported)
	case domain.GeometryContainer[domain.Point]:
		t, err = toGeom(v)
	case domain.GeometryContainer[domain.PointZ]:
		t, err = toGeom(v)
	case domain.GeometryContainer[domain.PointM]:
		t, err = toGeom(v)
	case domain.GeometryContainer[domain.PointZM]:
		t, err = toGeom(v)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, g)
	}
	if err != nil {
		return nil, err
	}
	return setSRID(t, int(srid)), nil
}

func appendCoord[P domain.PointT[P]](flat []float64, p P) []float64 {
	flat = append(flat, p.GetX(), p.GetY())
	if z, ok := p.GetZ(); ok {
		flat = append(flat, z)
	}
	if m, ok := p.GetM(); ok {
		flat = append(flat, m)
	}
	return flat
}

func flatPoints[P domain.PointT[P]](flat []float64, points []P) []float64 {
	for _, p := range points {
		flat = appendCoord(flat, p)
	}
	return flat
}

func flatRings[P domain.PointT[P]](flat []float64, ends []int, rings [][]P) ([]float64, []int) {
	for _, ring := range rings {
		flat = flatPoints(flat, ring)
		ends = append(ends, len(flat))
	}
	return flat, ends
}

func toGeom[P domain.PointT[P]](g domain.GeometryContainer[P]) (geom.T, error) {
	var zero P
	layout := layoutOf(zero.Dimension())

	switch v := g.(type) {
	case P:
		return geom.NewPointFlat(layout, appendCoord(nil, v)), nil
	case domain.LineString[P]:
		return geom.NewLineStringFlat(layout, flatPoints(nil, v.Points)), nil
	case *domain.LineString[P]:
		return toGeom[P](*v)
	case domain.Polygon[P]:
		flat, ends := flatRings(nil, nil, v.Rings)
		return geom.NewPolygonFlat(layout, flat, ends), nil
	case *domain.Polygon[P]:
		return toGeom[P](*v)
	case domain.MultiPoint[P]:
		return geom.NewMultiPointFlat(layout, flatPoints(nil, v.Points)), nil
	case *domain.MultiPoint[P]:
		return toGeom[P](*v)
	case domain.MultiLineString[P]:
		var (
			flat []float64
			ends []int
		)
		for _, l := range v.Lines {
			flat = flatPoints(flat, l.Points)
			ends = append(ends, len(flat))
		}
		return geom.NewMultiLineStringFlat(layout, flat, ends), nil
	case *domain.MultiLineString[P]:
		return toGeom[P](*v)
	case domain.MultiPolygon[P]:
		var (
			flat  []float64
			endss [][]int
		)
		for _, p := range v.Polygons {
			var ends []int
			flat, ends = flatRings(flat, ends, p.Rings)
			endss = append(endss, ends)
		}
		return geom.NewMultiPolygonFlat(layout, flat, endss), nil
	case *domain.MultiPolygon[P]:
		return toGeom[P](*v)
	case domain.GeometryCollection[P]:
		c := geom.NewGeometryCollection()
		for i, child := range v.Geometries {
			t, err := toGeom[P](child)
			if err != nil {
				return nil, fmt.Errorf("collection element %d: %w", i, err)
			}
			if err := c.Push(t); err != nil {
				return nil, fmt.Errorf("collection element %d: %w", i, err)
			}
		}
		return c, nil
	case *domain.GeometryCollection[P]:
		return toGeom[P](*v)
	case nil:
		return nil, fmt.Errorf("%w: nil geometry", ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, g)
	}
}

func setSRID(t geom.T, srid int) geom.T {
	switch v := t.(type) {
	case *geom.Point:
		return v.SetSRID(srid)
	case *geom.LineString:
		return v.SetSRID(srid)
	case *geom.Polygon:
		return v.SetSRID(srid)
	case *geom.MultiPoint:
		return v.SetSRID(srid)
	case *geom.MultiLineString:
		return v.SetSRID(srid)
	case *geom.MultiPolygon:
		return v.SetSRID(srid)
	case *geom.GeometryCollection:
		return v.SetSRID(srid)
	}
	return t
}

// FromGeom converts a go-geom geometry into the domain model. The point
// variant follows the layout: XY gives Point, XYZ PointZ, XYM PointM and
// XYZM PointZM.
func FromGeom(t geom.T) (domain.Geometry, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil geometry", ErrUnsupported)
	}
	switch t.Layout() {
	case geom.NoLayout, geom.XY:
		return fromGeom[domain.Point](t)
	case geom.XYZ:
		return fromGeom[domain.PointZ](t)
	case geom.XYM:
		return fromGeom[domain.PointM](t)
	case geom.XYZM:
		return fromGeom[domain.PointZM](t)
	default:
		return nil, fmt.Errorf("%w: layout %v", ErrUnsupported, t.Layout())
	}
}

func toPoint[P domain.PointT[P]](layout geom.Layout, c geom.Coord) (P, error) {
	var zero P
	if len(c) < layout.Stride() {
		return zero, fmt.Errorf("%w: coordinate has %d ordinates, want %d", ErrUnsupported, len(c), layout.Stride())
	}
	var z, m *float64
	if i := layout.ZIndex(); i >= 0 {
		z = &c[i]
	}
	if i := layout.MIndex(); i >= 0 {
		m = &c[i]
	}
	return zero.NewPoint(c[0], c[1], z, m)
}

func toPoints[P domain.PointT[P]](layout geom.Layout, coords []geom.Coord) ([]P, error) {
	points := make([]P, 0, len(coords))
	for _, c := range coords {
		p, err := toPoint[P](layout, c)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func toRings[P domain.PointT[P]](layout geom.Layout, coords [][]geom.Coord) ([][]P, error) {
	rings := make([][]P, 0, len(coords))
	for _, rc := range coords {
		ring, err := toPoints[P](layout, rc)
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

func fromGeom[P domain.PointT[P]](t geom.T) (domain.GeometryContainer[P], error) {
	var zero P
	want := layoutOf(zero.Dimension())
	if l := t.Layout(); l != want && l != geom.NoLayout {
		return nil, fmt.Errorf("%w: layout %v inside %v collection", ErrUnsupported, l, want)
	}

	switch v := t.(type) {
	case *geom.Point:
		if v.Empty() {
			return nil, fmt.Errorf("%w: empty point", ErrUnsupported)
		}
		p, err := toPoint[P](want, v.Coords())
		if err != nil {
			return nil, err
		}
		return p, nil
	case *geom.LineString:
		points, err := toPoints[P](want, v.Coords())
		if err != nil {
			return nil, err
		}
		return domain.LineString[P]{Points: points}, nil
	case *geom.Polygon:
		rings, err := toRings[P](want, v.Coords())
		if err != nil {
			return nil, err
		}
		return domain.Polygon[P]{Rings: rings}, nil
	case *geom.MultiPoint:
		points, err := toPoints[P](want, v.Coords())
		if err != nil {
			return nil, err
		}
		return domain.MultiPoint[P]{Points: points}, nil
	case *geom.MultiLineString:
		lines := make([]domain.LineString[P], 0, v.NumLineStrings())
		for _, lc := range v.Coords() {
			points, err := toPoints[P](want, lc)
			if err != nil {
				return nil, err
			}
			lines = append(lines, domain.LineString[P]{Points: points})
		}
		return domain.MultiLineString[P]{Lines: lines}, nil
	case *geom.MultiPolygon:
		polygons := make([]domain.Polygon[P], 0, v.NumPolygons())
		for _, pc := range v.Coords() {
			rings, err := toRings[P](want, pc)
			if err != nil {
				return nil, err
			}
			polygons = append(polygons, domain.Polygon[P]{Rings: rings})
		}
		return domain.MultiPolygon[P]{Polygons: polygons}, nil
	case *geom.GeometryCollection:
		geoms := make([]domain.GeometryContainer[P], 0, v.NumGeoms())
		for i, child := range v.Geoms() {
			g, err := fromGeom[P](child)
			if err != nil {
				return nil, fmt.Errorf("collection element %d: %w", i, err)
			}
			geoms = append(geoms, g)
		}
		return domain.GeometryCollection[P]{Geometries: geoms}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, t)
	}
}
