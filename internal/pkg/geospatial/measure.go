// Package geospatial measures decoded geometries: planar envelopes in the
// geometry's own units and great-circle lengths for WGS 84 coordinates.
package geospatial

import (
	"math"

	"github.com/samirrijal/geostore/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Envelope is an axis aligned XY bounding box.
type Envelope struct {
	MinX, MinY, MaxX, MaxY float64
}

// BBox returns the envelope in GeoJSON bbox order.
func (e Envelope) BBox() []float64 {
	return []float64{e.MinX, e.MinY, e.MaxX, e.MaxY}
}

// Bounds returns the envelope of every point in g. ok is false when g holds
// no points.
func Bounds(g domain.Geometry) (env Envelope, ok bool) {
	env = Envelope{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	walk(g, func(seq []xy) {
		for _, p := range seq {
			env.MinX = math.Min(env.MinX, p.x)
			env.MinY = math.Min(env.MinY, p.y)
			env.MaxX = math.Max(env.MaxX, p.x)
			env.MaxY = math.Max(env.MaxY, p.y)
			ok = true
		}
	})
	if !ok {
		return Envelope{}, false
	}
	return env, true
}

// Length sums the great-circle length in meters of every line string and
// ring in g, reading X as longitude and Y as latitude. Points and multi
// points contribute nothing.
func Length(g domain.Geometry) float64 {
	var total float64
	walk(g, func(seq []xy) {
		for i := 1; i < len(seq); i++ {
			total += Haversine(seq[i-1].y, seq[i-1].x, seq[i].y, seq[i].x)
		}
	})
	return total
}

type xy struct{ x, y float64 }

// walk calls fn once per coordinate sequence: each line string, each ring
// and each standalone point (as a one element sequence).
func walk(g domain.Geometry, fn func([]xy)) {
	switch c := g.(type) {
	case domain.GeometryContainer[domain.Point]:
		walkContainer(c, fn)
	case domain.GeometryContainer[domain.PointZ]:
		walkContainer(c, fn)
	case domain.GeometryContainer[domain.PointM]:
		walkContainer(c, fn)
	case domain.GeometryContainer[domain.PointZM]:
		walkContainer(c, fn)
	}
}

func walkContainer[P domain.PointT[P]](g domain.GeometryContainer[P], fn func([]xy)) {
	switch v := any(g).(type) {
	case P:
		fn([]xy{{v.GetX(), v.GetY()}})
	case domain.LineString[P]:
		fn(seq(v.Points))
	case domain.Polygon[P]:
		for _, ring := range v.Rings {
			fn(seq(ring))
		}
	case domain.MultiPoint[P]:
		for _, p := range v.Points {
			fn([]xy{{p.GetX(), p.GetY()}})
		}
	case domain.MultiLineString[P]:
		for _, l := range v.Lines {
			fn(seq(l.Points))
		}
	case domain.MultiPolygon[P]:
		for _, poly := range v.Polygons {
			for _, ring := range poly.Rings {
				fn(seq(ring))
			}
		}
	case domain.GeometryCollection[P]:
		for _, child := range v.Geometries {
			if child != nil {
				walkContainer(child, fn)
			}
		}
	}
}

func seq[P domain.PointT[P]](points []P) []xy {
	out := make([]xy, len(points))
	for i, p := range points {
		out[i] = xy{p.GetX(), p.GetY()}
	}
	return out
}
