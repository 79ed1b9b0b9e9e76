package ewkb

import (
	"github.com/cockroachdb/errors"

	"github.com/samirrijal/geostore/internal/core/domain"
)

// MaxNestingDepth bounds how deeply geometry collections may nest.
const MaxNestingDepth = 32

// dereference unwraps pointer shapes so the dispatch below only deals with
// values. A nil pointer comes back as a nil container.
func dereference[P domain.PointT[P]](g domain.GeometryContainer[P]) domain.GeometryContainer[P] {
	switch v := g.(type) {
	case *domain.LineString[P]:
		if v != nil {
			return *v
		}
	case *domain.Polygon[P]:
		if v != nil {
			return *v
		}
	case *domain.MultiPoint[P]:
		if v != nil {
			return *v
		}
	case *domain.MultiLineString[P]:
		if v != nil {
			return *v
		}
	case *domain.MultiPolygon[P]:
		if v != nil {
			return *v
		}
	case *domain.GeometryCollection[P]:
		if v != nil {
			return *v
		}
	default:
		return g
	}
	return nil
}

// writeContainer writes the header of g, with srid when non-nil, followed by
// its body.
func writeContainer[P domain.PointT[P]](w *writer, g domain.GeometryContainer[P], srid *uint32) error {
	g = dereference(g)
	if g == nil {
		return ErrNilGeometry
	}
	writeHeader(w, g, srid)
	switch v := g.(type) {
	case P:
		writeCoordinates(w, v)
	case domain.LineString[P]:
		writeLineStringBody(w, v)
	case domain.Polygon[P]:
		writePolygonBody(w, v)
	case domain.MultiPoint[P]:
		writeMultiPointBody(w, v)
	case domain.MultiLineString[P]:
		writeMultiLineStringBody(w, v)
	case domain.MultiPolygon[P]:
		writeMultiPolygonBody(w, v)
	case domain.GeometryCollection[P]:
		return writeCollectionBody(w, v)
	default:
		return errors.Newf("ewkb: unsupported geometry %T", g)
	}
	return nil
}

func writeCollectionBody[P domain.PointT[P]](w *writer, c domain.GeometryCollection[P]) error {
	if w.depth >= MaxNestingDepth {
		return ErrNestingTooDeep
	}
	w.depth++
	defer func() { w.depth-- }()

	w.writeCount(len(c.Geometries))
	for i, g := range c.Geometries {
		if err := writeContainer(w, g, nil); err != nil {
			return errors.Wrapf(err, "collection element %d", i)
		}
	}
	return nil
}

// readContainerBody dispatches on the base type already read into h.
func readContainerBody[P domain.PointT[P]](r *reader, h Header) (domain.GeometryContainer[P], error) {
	switch h.Type {
	case domain.TypePoint:
		return readCoordinates[P](r, h.Dimension)
	case domain.TypeLineString:
		return readLineStringBody[P](r, h.Dimension)
	case domain.TypePolygon:
		return readPolygonBody[P](r, h.Dimension)
	case domain.TypeMultiPoint:
		return readMultiPointBody[P](r)
	case domain.TypeMultiLineString:
		return readMultiLineStringBody[P](r)
	case domain.TypeMultiPolygon:
		return readMultiPolygonBody[P](r)
	case domain.TypeGeometryCollection:
		return readCollectionBody[P](r)
	default:
		return nil, &UnknownGeometryTypeError{Code: uint32(h.Type)}
	}
}

func readCollectionBody[P domain.PointT[P]](r *reader) (domain.GeometryCollection[P], error) {
	if r.depth >= MaxNestingDepth {
		return domain.GeometryCollection[P]{}, ErrNestingTooDeep
	}
	r.depth++
	defer func() { r.depth-- }()

	n, err := r.readCount(bareHeaderSize)
	if err != nil {
		return domain.GeometryCollection[P]{}, err
	}
	geometries := make([]domain.GeometryContainer[P], 0, n)
	outer := r.order
	for i := 0; i < n; i++ {
		h, err := readNestedHeader(r, 0)
		if err != nil {
			return domain.GeometryCollection[P]{}, err
		}
		g, err := readContainerBody[P](r, h)
		if err != nil {
			return domain.GeometryCollection[P]{}, err
		}
		geometries = append(geometries, g)
		r.order = outer
	}
	return domain.GeometryCollection[P]{Geometries: geometries}, nil
}

// EncodeContainer encodes any geometry over P with an embedded SRID.
func EncodeContainer[P domain.PointT[P]](g domain.GeometryContainer[P], srid uint32) ([]byte, error) {
	w := &writer{}
	if err := writeContainer(w, g, &srid); err != nil {
		return nil, err
	}
	return w.buf, nil
}

// DecodeContainer decodes any top-level geometry over P.
func DecodeContainer[P domain.PointT[P]](data []byte, expectedSRID uint32) (domain.GeometryContainer[P], error) {
	r := newReader(data)
	h, err := readTopHeader(r, 0, expectedSRID)
	if err != nil {
		return nil, err
	}
	return readContainerBody[P](r, h)
}

// EncodeGeometryCollection encodes c with an embedded SRID.
func EncodeGeometryCollection[P domain.PointT[P]](c domain.GeometryCollection[P], srid uint32) ([]byte, error) {
	return EncodeContainer[P](c, srid)
}

// DecodeGeometryCollection decodes a top-level geometry collection.
func DecodeGeometryCollection[P domain.PointT[P]](data []byte, expectedSRID uint32) (domain.GeometryCollection[P], error) {
	r := newReader(data)
	if _, err := readTopHeader(r, domain.TypeGeometryCollection, expectedSRID); err != nil {
		return domain.GeometryCollection[P]{}, err
	}
	return readCollectionBody[P](r)
}
