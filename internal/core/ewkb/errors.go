package ewkb

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/samirrijal/geostore/internal/core/domain"
)

var (
	// ErrTruncated is returned when a read runs past the end of the input.
	ErrTruncated = errors.New("ewkb: unexpected end of input")
	// ErrInvalidByteOrder is returned for a byte-order marker other than 0 or 1.
	ErrInvalidByteOrder = errors.New("ewkb: invalid byte order marker")
	// ErrNilGeometry is returned when asked to encode a nil geometry.
	ErrNilGeometry = errors.New("ewkb: nil geometry")
	// ErrTooManyElements is returned when a declared element count cannot fit
	// in the remaining input.
	ErrTooManyElements = errors.New("ewkb: element count exceeds input size")
	// ErrNestingTooDeep is returned when collections nest beyond MaxNestingDepth.
	ErrNestingTooDeep = errors.New("ewkb: geometry collections nested too deeply")
	// ErrInvalidHex marks failures of DecodeHex.
	ErrInvalidHex = errors.New("ewkb: invalid hex")
)

// SRIDError reports a decoded SRID that differs from the expected one.
type SRIDError struct {
	Found    *uint32
	Expected uint32
}

func (e *SRIDError) Error() string {
	found := "None"
	if e.Found != nil {
		found = "Some(" + strconv.FormatUint(uint64(*e.Found), 10) + ")"
	}
	return fmt.Sprintf("Wrong SRID in database: %s, Expected: %d", found, e.Expected)
}

// UnknownGeometryTypeError reports a base type code outside 1..7.
type UnknownGeometryTypeError struct {
	Code uint32
}

func (e *UnknownGeometryTypeError) Error() string {
	return fmt.Sprintf("ewkb: unknown geometry type %d", e.Code)
}

// GeometryTypeMismatchError is returned by the typed decoders when the
// payload holds a different shape than requested.
type GeometryTypeMismatchError struct {
	Expected domain.GeometryType
	Found    domain.GeometryType
}

func (e *GeometryTypeMismatchError) Error() string {
	return fmt.Sprintf("ewkb: expected %s, found %s", e.Expected, e.Found)
}

// IsCodecError reports whether err came from malformed or mismatched EWKB
// input rather than from the caller's environment.
func IsCodecError(err error) bool {
	if errors.IsAny(err, ErrTruncated, ErrInvalidByteOrder, ErrNilGeometry,
		ErrTooManyElements, ErrNestingTooDeep, ErrInvalidHex) {
		return true
	}
	var (
		unknown  *UnknownGeometryTypeError
		mismatch *GeometryTypeMismatchError
		srid     *SRIDError
	)
	return errors.As(err, &unknown) || errors.As(err, &mismatch) || errors.As(err, &srid)
}

// CheckSRID fails unless found holds exactly expected.
func CheckSRID(found *uint32, expected uint32) error {
	if found == nil || *found != expected {
		return &SRIDError{Found: found, Expected: expected}
	}
	return nil
}
