package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PointConstructionError is returned when the supplied optional ordinates do
// not match what a point variant carries.
type PointConstructionError struct {
	Reason string
}

func (e *PointConstructionError) Error() string {
	return "can't construct point: " + e.Reason
}

// PointT is the capability set shared by the four point variants. NewPoint is
// called on the zero value and must not read its receiver.
type PointT[P any] interface {
	Geometry
	GetX() float64
	GetY() float64
	GetZ() (float64, bool)
	GetM() (float64, bool)
	NewPoint(x, y float64, z, m *float64) (P, error)
	geometryContainer(P)
}

// Point is a two dimensional position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointZ carries an elevation.
type PointZ struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PointM carries a measure.
type PointM struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	M float64 `json:"m"`
}

// PointZM carries both an elevation and a measure.
type PointZM struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	M float64 `json:"m"`
}

// NewPoint validates and builds a Point.
func NewPoint(x, y float64, z, m *float64) (Point, error) { return Point{}.NewPoint(x, y, z, m) }

// NewPointZ validates and builds a PointZ.
func NewPointZ(x, y float64, z, m *float64) (PointZ, error) { return PointZ{}.NewPoint(x, y, z, m) }

// NewPointM validates and builds a PointM.
func NewPointM(x, y float64, z, m *float64) (PointM, error) { return PointM{}.NewPoint(x, y, z, m) }

// NewPointZM validates and builds a PointZM.
func NewPointZM(x, y float64, z, m *float64) (PointZM, error) {
	return PointZM{}.NewPoint(x, y, z, m)
}

// NewGPSPoint builds a WGS84 position from longitude and latitude. Values
// built this way are meant to be stored with SRIDWGS84.
func NewGPSPoint(lon, lat float64) Point { return Point{X: lon, Y: lat} }

func (Point) Type() GeometryType      { return TypePoint }
func (Point) Dimension() Dimension    { return DimensionNone }
func (p Point) GetX() float64         { return p.X }
func (p Point) GetY() float64         { return p.Y }
func (Point) GetZ() (float64, bool)   { return 0, false }
func (Point) GetM() (float64, bool)   { return 0, false }
func (Point) geometryContainer(Point) {}

func (Point) NewPoint(x, y float64, z, m *float64) (Point, error) {
	if z != nil || m != nil {
		return Point{}, &PointConstructionError{
			Reason: fmt.Sprintf("unexpectedly defined Z %s or M %s for Point", formatOptional(z), formatOptional(m)),
		}
	}
	return Point{X: x, Y: y}, nil
}

func (PointZ) Type() GeometryType       { return TypePoint }
func (PointZ) Dimension() Dimension     { return DimensionZ }
func (p PointZ) GetX() float64          { return p.X }
func (p PointZ) GetY() float64          { return p.Y }
func (p PointZ) GetZ() (float64, bool)  { return p.Z, true }
func (PointZ) GetM() (float64, bool)    { return 0, false }
func (PointZ) geometryContainer(PointZ) {}

func (PointZ) NewPoint(x, y float64, z, m *float64) (PointZ, error) {
	if z == nil {
		return PointZ{}, &PointConstructionError{Reason: "Z is not defined, but mandatory for PointZ"}
	}
	if m != nil {
		return PointZ{}, &PointConstructionError{
			Reason: fmt.Sprintf("unexpectedly defined m %s for PointZ", formatOptional(m)),
		}
	}
	return PointZ{X: x, Y: y, Z: *z}, nil
}

func (PointM) Type() GeometryType       { return TypePoint }
func (PointM) Dimension() Dimension     { return DimensionM }
func (p PointM) GetX() float64          { return p.X }
func (p PointM) GetY() float64          { return p.Y }
func (PointM) GetZ() (float64, bool)    { return 0, false }
func (p PointM) GetM() (float64, bool)  { return p.M, true }
func (PointM) geometryContainer(PointM) {}

func (PointM) NewPoint(x, y float64, z, m *float64) (PointM, error) {
	if m == nil {
		return PointM{}, &PointConstructionError{Reason: "M is not defined, but mandatory for PointM"}
	}
	if z != nil {
		return PointM{}, &PointConstructionError{
			Reason: fmt.Sprintf("unexpectedly defined z %s for PointM", formatOptional(z)),
		}
	}
	return PointM{X: x, Y: y, M: *m}, nil
}

func (PointZM) Type() GeometryType        { return TypePoint }
func (PointZM) Dimension() Dimension      { return DimensionZM }
func (p PointZM) GetX() float64           { return p.X }
func (p PointZM) GetY() float64           { return p.Y }
func (p PointZM) GetZ() (float64, bool)   { return p.Z, true }
func (p PointZM) GetM() (float64, bool)   { return p.M, true }
func (PointZM) geometryContainer(PointZM) {}

func (PointZM) NewPoint(x, y float64, z, m *float64) (PointZM, error) {
	if z == nil {
		return PointZM{}, &PointConstructionError{Reason: "Z is not defined, but mandatory for PointZM"}
	}
	if m == nil {
		return PointZM{}, &PointConstructionError{Reason: "M is not defined, but mandatory for PointZM"}
	}
	return PointZM{X: x, Y: y, Z: *z, M: *m}, nil
}

// formatOptional renders an optional ordinate as Some(10.0) or None.
func formatOptional(v *float64) string {
	if v == nil {
		return "None"
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return "Some(" + s + ")"
}
