package domain

// GeometryContainer holds any one geometry whose points are of variant P: the
// point itself or one of the six shapes built from it.
type GeometryContainer[P PointT[P]] interface {
	Geometry
	geometryContainer(P)
}

// LineString is an ordered sequence of points.
type LineString[P PointT[P]] struct {
	Points []P
}

// Polygon is a sequence of rings, the first being the exterior.
type Polygon[P PointT[P]] struct {
	Rings [][]P
}

// MultiPoint is an ordered set of points.
type MultiPoint[P PointT[P]] struct {
	Points []P
}

// MultiLineString is an ordered set of line strings.
type MultiLineString[P PointT[P]] struct {
	Lines []LineString[P]
}

// MultiPolygon is an ordered set of polygons.
type MultiPolygon[P PointT[P]] struct {
	Polygons []Polygon[P]
}

// GeometryCollection is a heterogeneous, possibly nested, list of geometries.
type GeometryCollection[P PointT[P]] struct {
	Geometries []GeometryContainer[P]
}

// NewLineString builds a line string from points.
func NewLineString[P PointT[P]](points ...P) LineString[P] {
	return LineString[P]{Points: points}
}

// NewPolygon builds a polygon from rings.
func NewPolygon[P PointT[P]](rings ...[]P) Polygon[P] {
	return Polygon[P]{Rings: rings}
}

// NewMultiPoint builds a multi point from points.
func NewMultiPoint[P PointT[P]](points ...P) MultiPoint[P] {
	return MultiPoint[P]{Points: points}
}

// NewMultiLineString builds a multi line string from lines.
func NewMultiLineString[P PointT[P]](lines ...LineString[P]) MultiLineString[P] {
	return MultiLineString[P]{Lines: lines}
}

// NewMultiPolygon builds a multi polygon from polygons.
func NewMultiPolygon[P PointT[P]](polygons ...Polygon[P]) MultiPolygon[P] {
	return MultiPolygon[P]{Polygons: polygons}
}

// NewGeometryCollection builds a collection from geometries.
func NewGeometryCollection[P PointT[P]](geometries ...GeometryContainer[P]) GeometryCollection[P] {
	return GeometryCollection[P]{Geometries: geometries}
}

func pointsDimension[P PointT[P]](points []P) Dimension {
	if len(points) == 0 {
		return DimensionNone
	}
	return points[0].Dimension()
}

func (LineString[P]) Type() GeometryType          { return TypeLineString }
func (l LineString[P]) Dimension() Dimension      { return pointsDimension(l.Points) }
func (LineString[P]) geometryContainer(P)         {}
func (Polygon[P]) Type() GeometryType             { return TypePolygon }
func (Polygon[P]) geometryContainer(P)            {}
func (MultiPoint[P]) Type() GeometryType          { return TypeMultiPoint }
func (m MultiPoint[P]) Dimension() Dimension      { return pointsDimension(m.Points) }
func (MultiPoint[P]) geometryContainer(P)         {}
func (MultiLineString[P]) Type() GeometryType     { return TypeMultiLineString }
func (MultiLineString[P]) geometryContainer(P)    {}
func (MultiPolygon[P]) Type() GeometryType        { return TypeMultiPolygon }
func (MultiPolygon[P]) geometryContainer(P)       {}
func (GeometryCollection[P]) Type() GeometryType  { return TypeGeometryCollection }
func (GeometryCollection[P]) geometryContainer(P) {}

func (l LineString[P]) Len() int         { return len(l.Points) }
func (p Polygon[P]) Len() int            { return len(p.Rings) }
func (m MultiPoint[P]) Len() int         { return len(m.Points) }
func (m MultiLineString[P]) Len() int    { return len(m.Lines) }
func (m MultiPolygon[P]) Len() int       { return len(m.Polygons) }
func (g GeometryCollection[P]) Len() int { return len(g.Geometries) }

func (p Polygon[P]) Dimension() Dimension {
	if len(p.Rings) == 0 {
		return DimensionNone
	}
	return pointsDimension(p.Rings[0])
}

func (m MultiLineString[P]) Dimension() Dimension {
	if len(m.Lines) == 0 {
		return DimensionNone
	}
	return m.Lines[0].Dimension()
}

func (m MultiPolygon[P]) Dimension() Dimension {
	if len(m.Polygons) == 0 {
		return DimensionNone
	}
	return m.Polygons[0].Dimension()
}

func (g GeometryCollection[P]) Dimension() Dimension {
	if len(g.Geometries) == 0 || g.Geometries[0] == nil {
		return DimensionNone
	}
	return g.Geometries[0].Dimension()
}

// AddPoint appends a point.
func (l *LineString[P]) AddPoint(p P) *LineString[P] {
	l.Points = append(l.Points, p)
	return l
}

// AddPoints appends points in order.
func (l *LineString[P]) AddPoints(points ...P) *LineString[P] {
	l.Points = append(l.Points, points...)
	return l
}

// AddRing opens a new empty ring.
func (p *Polygon[P]) AddRing() *Polygon[P] {
	p.Rings = append(p.Rings, []P{})
	return p
}

// AddPoint appends a point to the last ring, opening one if there is none.
func (p *Polygon[P]) AddPoint(pt P) *Polygon[P] {
	if len(p.Rings) == 0 {
		p.AddRing()
	}
	last := len(p.Rings) - 1
	p.Rings[last] = append(p.Rings[last], pt)
	return p
}

// AddPoints appends points to the last ring.
func (p *Polygon[P]) AddPoints(points ...P) *Polygon[P] {
	for _, pt := range points {
		p.AddPoint(pt)
	}
	return p
}

// AddPoint appends a point.
func (m *MultiPoint[P]) AddPoint(p P) *MultiPoint[P] {
	m.Points = append(m.Points, p)
	return m
}

// AddPoints appends points in order.
func (m *MultiPoint[P]) AddPoints(points ...P) *MultiPoint[P] {
	m.Points = append(m.Points, points...)
	return m
}

// AddLine opens a new empty line.
func (m *MultiLineString[P]) AddLine() *MultiLineString[P] {
	m.Lines = append(m.Lines, LineString[P]{})
	return m
}

// AddPoint appends a point to the last line, opening one if there is none.
func (m *MultiLineString[P]) AddPoint(p P) *MultiLineString[P] {
	if len(m.Lines) == 0 {
		m.AddLine()
	}
	m.Lines[len(m.Lines)-1].AddPoint(p)
	return m
}

// AddPoints appends points to the last line.
func (m *MultiLineString[P]) AddPoints(points ...P) *MultiLineString[P] {
	for _, p := range points {
		m.AddPoint(p)
	}
	return m
}

// AddEmptyPolygon opens a new polygon without rings.
func (m *MultiPolygon[P]) AddEmptyPolygon() *MultiPolygon[P] {
	m.Polygons = append(m.Polygons, Polygon[P]{})
	return m
}

// AddPolygon appends a complete polygon.
func (m *MultiPolygon[P]) AddPolygon(p Polygon[P]) *MultiPolygon[P] {
	m.Polygons = append(m.Polygons, p)
	return m
}

// AddRing opens a new ring in the last polygon, opening a polygon if needed.
func (m *MultiPolygon[P]) AddRing() *MultiPolygon[P] {
	if len(m.Polygons) == 0 {
		m.AddEmptyPolygon()
	}
	m.Polygons[len(m.Polygons)-1].AddRing()
	return m
}

// AddPoint appends a point to the last ring of the last polygon.
func (m *MultiPolygon[P]) AddPoint(p P) *MultiPolygon[P] {
	if len(m.Polygons) == 0 {
		m.AddEmptyPolygon()
	}
	m.Polygons[len(m.Polygons)-1].AddPoint(p)
	return m
}

// AddPoints appends points to the last ring of the last polygon.
func (m *MultiPolygon[P]) AddPoints(points ...P) *MultiPolygon[P] {
	for _, p := range points {
		m.AddPoint(p)
	}
	return m
}

// Add appends geometries to the collection.
func (g *GeometryCollection[P]) Add(geometries ...GeometryContainer[P]) *GeometryCollection[P] {
	g.Geometries = append(g.Geometries, geometries...)
	return g
}
