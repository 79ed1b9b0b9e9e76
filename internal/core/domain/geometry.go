package domain

import "strconv"

// Dimension describes which optional ordinates a geometry carries. The values
// are the high bits of an EWKB type word so they can be OR'ed in directly.
type Dimension uint32

const (
	DimensionNone Dimension = 0
	DimensionZ    Dimension = 0x80000000
	DimensionM    Dimension = 0x40000000
	DimensionZM             = DimensionZ | DimensionM
)

// HasZ reports whether the Z bit is set.
func (d Dimension) HasZ() bool { return d&DimensionZ != 0 }

// HasM reports whether the M bit is set.
func (d Dimension) HasM() bool { return d&DimensionM != 0 }

// Ordinates returns the number of doubles per coordinate (2 to 4).
func (d Dimension) Ordinates() int {
	n := 2
	if d.HasZ() {
		n++
	}
	if d.HasM() {
		n++
	}
	return n
}

func (d Dimension) String() string {
	switch d {
	case DimensionZ:
		return "Z"
	case DimensionM:
		return "M"
	case DimensionZM:
		return "ZM"
	default:
		return ""
	}
}

// GeometryType is the base EWKB geometry code.
type GeometryType uint32

const (
	TypePoint              GeometryType = 1
	TypeLineString         GeometryType = 2
	TypePolygon            GeometryType = 3
	TypeMultiPoint         GeometryType = 4
	TypeMultiLineString    GeometryType = 5
	TypeMultiPolygon       GeometryType = 6
	TypeGeometryCollection GeometryType = 7
)

var geometryTypeNames = map[GeometryType]string{
	TypePoint:              "Point",
	TypeLineString:         "LineString",
	TypePolygon:            "Polygon",
	TypeMultiPoint:         "MultiPoint",
	TypeMultiLineString:    "MultiLineString",
	TypeMultiPolygon:       "MultiPolygon",
	TypeGeometryCollection: "GeometryCollection",
}

// Valid reports whether t is one of the seven supported codes.
func (t GeometryType) Valid() bool {
	_, ok := geometryTypeNames[t]
	return ok
}

func (t GeometryType) String() string {
	if name, ok := geometryTypeNames[t]; ok {
		return name
	}
	return "GeometryType(" + strconv.FormatUint(uint64(t), 10) + ")"
}

// Geometry is implemented by every point variant and shape.
type Geometry interface {
	Type() GeometryType
	// Dimension looks at the first nested element only.
	Dimension() Dimension
}

// Well known spatial reference identifiers.
const (
	SRIDWGS84       uint32 = 4326
	SRIDWebMercator uint32 = 3857
)

// Len returns the number of direct children of g: the points of a line
// string, the rings of a polygon or the members of a multi geometry. A point
// counts as one.
func Len(g Geometry) int {
	if s, ok := g.(interface{ Len() int }); ok {
		return s.Len()
	}
	return 1
}
