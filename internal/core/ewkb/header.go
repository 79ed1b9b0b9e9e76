package ewkb

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/samirrijal/geostore/internal/core/domain"
)

// Type word flags.
const (
	flagZ    = uint32(domain.DimensionZ)
	flagM    = uint32(domain.DimensionM)
	flagSRID = uint32(0x20000000)
	flagMask = flagZ | flagM | flagSRID
)

// ByteOrder is the EWKB byte-order marker.
type ByteOrder byte

const (
	BigEndian    ByteOrder = 0
	LittleEndian ByteOrder = 1
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big"
	}
	return "little"
}

func (o ByteOrder) binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Header is the envelope in front of every encoded geometry.
type Header struct {
	ByteOrder ByteOrder
	Type      domain.GeometryType
	Dimension domain.Dimension
	// SRID is nil when the SRID flag is not set.
	SRID *uint32
}

// typeWord packs the header back into a 32-bit EWKB type word.
func (h Header) typeWord() uint32 {
	w := uint32(h.Type) | uint32(h.Dimension)
	if h.SRID != nil {
		w |= flagSRID
	}
	return w
}

// splitTypeWord separates the base code from the dimension flags. ISO WKB
// codes (1001 for PointZ and so on) are folded into the flag form.
func splitTypeWord(word uint32) (uint32, domain.Dimension, bool) {
	dim := domain.Dimension(word & (flagZ | flagM))
	code := word &^ flagMask
	switch code / 1000 {
	case 1:
		dim |= domain.DimensionZ
	case 2:
		dim |= domain.DimensionM
	case 3:
		dim |= domain.DimensionZM
	}
	if code >= 1000 && code < 4000 {
		code %= 1000
	}
	return code, dim, word&flagSRID != 0
}

// readHeader consumes the byte-order marker, the type word and, if flagged,
// the SRID word. The reader adopts the marker's byte order.
func readHeader(r *reader) (Header, error) {
	marker, err := r.readByte()
	if err != nil {
		return Header{}, err
	}
	if marker > 1 {
		return Header{}, errors.Wrapf(ErrInvalidByteOrder, "marker %d at offset %d", marker, r.pos-1)
	}
	order := ByteOrder(marker)
	r.order = order.binary()

	word, err := r.readUint32()
	if err != nil {
		return Header{}, err
	}
	code, dim, hasSRID := splitTypeWord(word)
	h := Header{ByteOrder: order, Type: domain.GeometryType(code), Dimension: dim}
	if hasSRID {
		srid, err := r.readUint32()
		if err != nil {
			return Header{}, err
		}
		h.SRID = &srid
	}
	if !h.Type.Valid() {
		return Header{}, &UnknownGeometryTypeError{Code: code}
	}
	return h, nil
}

// readTopHeader reads the outermost header, enforces the SRID and, unless
// want is zero, the base type.
func readTopHeader(r *reader, want domain.GeometryType, expectedSRID uint32) (Header, error) {
	h, err := readHeader(r)
	if err != nil {
		return Header{}, err
	}
	if err := CheckSRID(h.SRID, expectedSRID); err != nil {
		return Header{}, err
	}
	if want != 0 && h.Type != want {
		return Header{}, &GeometryTypeMismatchError{Expected: want, Found: h.Type}
	}
	return h, nil
}

// readNestedHeader reads the bare header of an element inside a multi shape
// or collection. A stray SRID word is consumed but not validated.
func readNestedHeader(r *reader, want domain.GeometryType) (Header, error) {
	h, err := readHeader(r)
	if err != nil {
		return Header{}, err
	}
	if want != 0 && h.Type != want {
		return Header{}, &GeometryTypeMismatchError{Expected: want, Found: h.Type}
	}
	return h, nil
}

// writeHeader emits the little-endian marker, the type word derived from g
// and, when srid is non-nil, the SRID word.
func writeHeader(w *writer, g domain.Geometry, srid *uint32) {
	h := Header{ByteOrder: LittleEndian, Type: g.Type(), Dimension: g.Dimension(), SRID: srid}
	w.writeByte(byte(LittleEndian))
	w.writeUint32(h.typeWord())
	if srid != nil {
		w.writeUint32(*srid)
	}
}

// PeekHeader decodes only the outermost header.
func PeekHeader(data []byte) (Header, error) {
	return readHeader(newReader(data))
}
