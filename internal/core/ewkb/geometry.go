package ewkb

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/samirrijal/geostore/internal/core/domain"
)

// EncodeGeometry encodes any geometry from the domain package regardless of
// its point variant.
func EncodeGeometry(g domain.Geometry, srid uint32) ([]byte, error) {
	switch v := g.(type) {
	case nil:
		return nil, ErrNilGeometry
	case domain.GeometryContainer[domain.Point]:
		return EncodeContainer(v, srid)
	case domain.GeometryContainer[domain.PointZ]:
		return EncodeContainer(v, srid)
	case domain.GeometryContainer[domain.PointM]:
		return EncodeContainer(v, srid)
	case domain.GeometryContainer[domain.PointZM]:
		return EncodeContainer(v, srid)
	default:
		return nil, errors.Newf("ewkb: unsupported geometry %T", g)
	}
}

// DecodeGeometry decodes any top-level geometry, choosing the point variant
// from the dimension of its first point. The outermost type word only
// reflects the first element, which may be empty, so multi shapes and
// collections without Z/M flags are searched for their first point.
func DecodeGeometry(data []byte, expectedSRID uint32) (domain.Geometry, error) {
	h, err := PeekHeader(data)
	if err != nil {
		return nil, err
	}
	dim := h.Dimension
	if dim == domain.DimensionNone && h.Type >= domain.TypeMultiPoint {
		// Malformed input is reported by the decode below.
		if d, err := pointDimension(data); err == nil {
			dim = d
		}
	}
	switch dim {
	case domain.DimensionZ:
		return DecodeContainer[domain.PointZ](data, expectedSRID)
	case domain.DimensionM:
		return DecodeContainer[domain.PointM](data, expectedSRID)
	case domain.DimensionZM:
		return DecodeContainer[domain.PointZM](data, expectedSRID)
	default:
		return DecodeContainer[domain.Point](data, expectedSRID)
	}
}

// pointDimension returns the dimension of the first point in data, or
// DimensionNone when the geometry holds no points.
func pointDimension(data []byte) (domain.Dimension, error) {
	r := newReader(data)
	h, err := readHeader(r)
	if err != nil {
		return domain.DimensionNone, err
	}
	dim, _, err := firstPointDimension(r, h)
	return dim, err
}

// firstPointDimension walks the body that follows h. found is false when
// the element is empty; in that case the whole element has been consumed and
// the reader sits on the next sibling.
func firstPointDimension(r *reader, h Header) (dim domain.Dimension, found bool, err error) {
	switch h.Type {
	case domain.TypePoint:
		return h.Dimension, true, nil
	case domain.TypeLineString:
		n, err := r.readCount(0)
		if err != nil {
			return domain.DimensionNone, false, err
		}
		return h.Dimension, n > 0, nil
	case domain.TypePolygon:
		rings, err := r.readCount(countSize)
		if err != nil {
			return domain.DimensionNone, false, err
		}
		for i := 0; i < rings; i++ {
			n, err := r.readCount(0)
			if err != nil {
				return domain.DimensionNone, false, err
			}
			if n > 0 {
				return h.Dimension, true, nil
			}
		}
		return domain.DimensionNone, false, nil
	}

	if r.depth >= MaxNestingDepth {
		return domain.DimensionNone, false, ErrNestingTooDeep
	}
	r.depth++
	defer func() { r.depth-- }()

	n, err := r.readCount(bareHeaderSize)
	if err != nil {
		return domain.DimensionNone, false, err
	}
	outer := r.order
	for i := 0; i < n; i++ {
		nh, err := readNestedHeader(r, 0)
		if err != nil {
			return domain.DimensionNone, false, err
		}
		dim, found, err := firstPointDimension(r, nh)
		if err != nil || found {
			return dim, found, err
		}
		r.order = outer
	}
	return domain.DimensionNone, false, nil
}

// EncodeHex renders EWKB the way PostGIS prints it: upper-case hex.
func EncodeHex(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}

// DecodeHex parses hex EWKB, tolerating a bytea "\x" prefix and either case.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `\x`)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "ewkb: decode hex"), ErrInvalidHex)
	}
	return b, nil
}
