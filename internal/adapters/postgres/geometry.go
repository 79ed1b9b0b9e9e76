package postgres

import (
	"database/sql/driver"
	"fmt"

	"github.com/samirrijal/geostore/internal/core/ewkb"
)

// Geometry is EWKB as it travels to and from PostGIS. It scans both the
// binary result of ST_AsEWKB and the hex text a bare geometry column
// produces.
type Geometry []byte

// Scan implements sql.Scanner.
func (g *Geometry) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*g = nil
		return nil
	case []byte:
		if looksHex(v) {
			return g.scanHex(string(v))
		}
		*g = append((*g)[:0], v...)
		return nil
	case string:
		return g.scanHex(v)
	default:
		return fmt.Errorf("geometry: cannot scan %T", src)
	}
}

func (g *Geometry) scanHex(s string) error {
	b, err := ewkb.DecodeHex(s)
	if err != nil {
		return fmt.Errorf("geometry: %w", err)
	}
	*g = b
	return nil
}

// Value implements driver.Valuer.
func (g Geometry) Value() (driver.Value, error) {
	if g == nil {
		return nil, nil
	}
	return []byte(g), nil
}

// looksHex reports whether b is the text form of EWKB rather than raw
// bytes. Raw EWKB starts with the byte 0x00 or 0x01, hex text with the
// character '0' or a bytea "\x" prefix.
func looksHex(b []byte) bool {
	return len(b) > 0 && (b[0] == '0' || b[0] == '\\')
}
