package ewkb

import (
	"github.com/samirrijal/geostore/internal/core/domain"
)

// Minimal encoded sizes used to bound declared counts.
const (
	countSize      = 4
	bareHeaderSize = 5
)

func writePoints[P domain.PointT[P]](w *writer, points []P) {
	w.writeCount(len(points))
	for _, p := range points {
		writeCoordinates(w, p)
	}
}

func readPoints[P domain.PointT[P]](r *reader, dim domain.Dimension) ([]P, error) {
	n, err := r.readCount(coordinateSize(dim))
	if err != nil {
		return nil, err
	}
	points := make([]P, 0, n)
	for i := 0; i < n; i++ {
		p, err := readCoordinates[P](r, dim)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func writeLineStringBody[P domain.PointT[P]](w *writer, l domain.LineString[P]) {
	writePoints(w, l.Points)
}

func readLineStringBody[P domain.PointT[P]](r *reader, dim domain.Dimension) (domain.LineString[P], error) {
	points, err := readPoints[P](r, dim)
	if err != nil {
		return domain.LineString[P]{}, err
	}
	return domain.LineString[P]{Points: points}, nil
}

func writePolygonBody[P domain.PointT[P]](w *writer, p domain.Polygon[P]) {
	w.writeCount(len(p.Rings))
	for _, ring := range p.Rings {
		writePoints(w, ring)
	}
}

func readPolygonBody[P domain.PointT[P]](r *reader, dim domain.Dimension) (domain.Polygon[P], error) {
	n, err := r.readCount(countSize)
	if err != nil {
		return domain.Polygon[P]{}, err
	}
	rings := make([][]P, 0, n)
	for i := 0; i < n; i++ {
		ring, err := readPoints[P](r, dim)
		if err != nil {
			return domain.Polygon[P]{}, err
		}
		rings = append(rings, ring)
	}
	return domain.Polygon[P]{Rings: rings}, nil
}

func writeMultiPointBody[P domain.PointT[P]](w *writer, m domain.MultiPoint[P]) {
	w.writeCount(len(m.Points))
	for _, p := range m.Points {
		writeHeader(w, p, nil)
		writeCoordinates(w, p)
	}
}

func readMultiPointBody[P domain.PointT[P]](r *reader) (domain.MultiPoint[P], error) {
	n, err := r.readCount(bareHeaderSize + 16)
	if err != nil {
		return domain.MultiPoint[P]{}, err
	}
	points := make([]P, 0, n)
	outer := r.order
	for i := 0; i < n; i++ {
		h, err := readNestedHeader(r, domain.TypePoint)
		if err != nil {
			return domain.MultiPoint[P]{}, err
		}
		p, err := readCoordinates[P](r, h.Dimension)
		if err != nil {
			return domain.MultiPoint[P]{}, err
		}
		points = append(points, p)
		r.order = outer
	}
	return domain.MultiPoint[P]{Points: points}, nil
}

func writeMultiLineStringBody[P domain.PointT[P]](w *writer, m domain.MultiLineString[P]) {
	w.writeCount(len(m.Lines))
	for _, l := range m.Lines {
		writeHeader(w, l, nil)
		writeLineStringBody(w, l)
	}
}

func readMultiLineStringBody[P domain.PointT[P]](r *reader) (domain.MultiLineString[P], error) {
	n, err := r.readCount(bareHeaderSize + countSize)
	if err != nil {
		return domain.MultiLineString[P]{}, err
	}
	lines := make([]domain.LineString[P], 0, n)
	outer := r.order
	for i := 0; i < n; i++ {
		h, err := readNestedHeader(r, domain.TypeLineString)
		if err != nil {
			return domain.MultiLineString[P]{}, err
		}
		l, err := readLineStringBody[P](r, h.Dimension)
		if err != nil {
			return domain.MultiLineString[P]{}, err
		}
		lines = append(lines, l)
		r.order = outer
	}
	return domain.MultiLineString[P]{Lines: lines}, nil
}

func writeMultiPolygonBody[P domain.PointT[P]](w *writer, m domain.MultiPolygon[P]) {
	w.writeCount(len(m.Polygons))
	for _, p := range m.Polygons {
		writeHeader(w, p, nil)
		writePolygonBody(w, p)
	}
}

func readMultiPolygonBody[P domain.PointT[P]](r *reader) (domain.MultiPolygon[P], error) {
	n, err := r.readCount(bareHeaderSize + countSize)
	if err != nil {
		return domain.MultiPolygon[P]{}, err
	}
	polygons := make([]domain.Polygon[P], 0, n)
	outer := r.order
	for i := 0; i < n; i++ {
		h, err := readNestedHeader(r, domain.TypePolygon)
		if err != nil {
			return domain.MultiPolygon[P]{}, err
		}
		p, err := readPolygonBody[P](r, h.Dimension)
		if err != nil {
			return domain.MultiPolygon[P]{}, err
		}
		polygons = append(polygons, p)
		r.order = outer
	}
	return domain.MultiPolygon[P]{Polygons: polygons}, nil
}

// EncodeLineString encodes l with an embedded SRID.
func EncodeLineString[P domain.PointT[P]](l domain.LineString[P], srid uint32) ([]byte, error) {
	w := &writer{}
	writeHeader(w, l, &srid)
	writeLineStringBody(w, l)
	return w.buf, nil
}

// DecodeLineString decodes a top-level line string.
func DecodeLineString[P domain.PointT[P]](data []byte, expectedSRID uint32) (domain.LineString[P], error) {
	r := newReader(data)
	h, err := readTopHeader(r, domain.TypeLineString, expectedSRID)
	if err != nil {
		return domain.LineString[P]{}, err
	}
	return readLineStringBody[P](r, h.Dimension)
}

// EncodePolygon encodes p with an embedded SRID.
func EncodePolygon[P domain.PointT[P]](p domain.Polygon[P], srid uint32) ([]byte, error) {
	w := &writer{}
	writeHeader(w, p, &srid)
	writePolygonBody(w, p)
	return w.buf, nil
}

// DecodePolygon decodes a top-level polygon.
func DecodePolygon[P domain.PointT[P]](data []byte, expectedSRID uint32) (domain.Polygon[P], error) {
	r := newReader(data)
	h, err := readTopHeader(r, domain.TypePolygon, expectedSRID)
	if err != nil {
		return domain.Polygon[P]{}, err
	}
	return readPolygonBody[P](r, h.Dimension)
}

// EncodeMultiPoint encodes m with an embedded SRID.
func EncodeMultiPoint[P domain.PointT[P]](m domain.MultiPoint[P], srid uint32) ([]byte, error) {
	w := &writer{}
	writeHeader(w, m, &srid)
	writeMultiPointBody(w, m)
	return w.buf, nil
}

// DecodeMultiPoint decodes a top-level multi point.
func DecodeMultiPoint[P domain.PointT[P]](data []byte, expectedSRID uint32) (domain.MultiPoint[P], error) {
	r := newReader(data)
	if _, err := readTopHeader(r, domain.TypeMultiPoint, expectedSRID); err != nil {
		return domain.MultiPoint[P]{}, err
	}
	return readMultiPointBody[P](r)
}

// EncodeMultiLineString encodes m with an embedded SRID.
func EncodeMultiLineString[P domain.PointT[P]](m domain.MultiLineString[P], srid uint32) ([]byte, error) {
	w := &writer{}
	writeHeader(w, m, &srid)
	writeMultiLineStringBody(w, m)
	return w.buf, nil
}

// DecodeMultiLineString decodes a top-level multi line string.
func DecodeMultiLineString[P domain.PointT[P]](data []byte, expectedSRID uint32) (domain.MultiLineString[P], error) {
	r := newReader(data)
	if _, err := readTopHeader(r, domain.TypeMultiLineString, expectedSRID); err != nil {
		return domain.MultiLineString[P]{}, err
	}
	return readMultiLineStringBody[P](r)
}

// EncodeMultiPolygon encodes m with an embedded SRID.
func EncodeMultiPolygon[P domain.PointT[P]](m domain.MultiPolygon[P], srid uint32) ([]byte, error) {
	w := &writer{}
	writeHeader(w, m, &srid)
	writeMultiPolygonBody(w, m)
	return w.buf, nil
}

// DecodeMultiPolygon decodes a top-level multi polygon.
func DecodeMultiPolygon[P domain.PointT[P]](data []byte, expectedSRID uint32) (domain.MultiPolygon[P], error) {
	r := newReader(data)
	if _, err := readTopHeader(r, domain.TypeMultiPolygon, expectedSRID); err != nil {
		return domain.MultiPolygon[P]{}, err
	}
	return readMultiPolygonBody[P](r)
}
