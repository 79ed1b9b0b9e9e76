package ewkb

import (
	"github.com/cockroachdb/errors"

	"github.com/samirrijal/geostore/internal/core/domain"
)

// writeCoordinates emits x, y and then z and m as the point's dimension says.
func writeCoordinates[P domain.PointT[P]](w *writer, p P) {
	w.writeFloat64(p.GetX())
	w.writeFloat64(p.GetY())
	dim := p.Dimension()
	if dim.HasZ() {
		z, _ := p.GetZ()
		w.writeFloat64(z)
	}
	if dim.HasM() {
		m, _ := p.GetM()
		w.writeFloat64(m)
	}
}

// readCoordinates reads the ordinates announced by dim and hands them to the
// validated constructor of P.
func readCoordinates[P domain.PointT[P]](r *reader, dim domain.Dimension) (P, error) {
	var zero P
	x, err := r.readFloat64()
	if err != nil {
		return zero, err
	}
	y, err := r.readFloat64()
	if err != nil {
		return zero, err
	}
	var z, m *float64
	if dim.HasZ() {
		v, err := r.readFloat64()
		if err != nil {
			return zero, err
		}
		z = &v
	}
	if dim.HasM() {
		v, err := r.readFloat64()
		if err != nil {
			return zero, err
		}
		m = &v
	}
	p, err := zero.NewPoint(x, y, z, m)
	if err != nil {
		return zero, errors.WithStack(err)
	}
	return p, nil
}

func coordinateSize(dim domain.Dimension) int { return 8 * dim.Ordinates() }

// EncodePoint encodes p with an embedded SRID.
func EncodePoint[P domain.PointT[P]](p P, srid uint32) ([]byte, error) {
	w := &writer{}
	writeHeader(w, p, &srid)
	writeCoordinates(w, p)
	return w.buf, nil
}

// DecodePoint decodes a top-level point whose SRID must equal expectedSRID.
func DecodePoint[P domain.PointT[P]](data []byte, expectedSRID uint32) (P, error) {
	r := newReader(data)
	h, err := readTopHeader(r, domain.TypePoint, expectedSRID)
	if err != nil {
		var zero P
		return zero, err
	}
	return readCoordinates[P](r, h.Dimension)
}
