package postgres_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samirrijal/geostore/internal/adapters/postgres"
	"github.com/samirrijal/geostore/internal/core/domain"
	"github.com/samirrijal/geostore/internal/core/ewkb"
)

const pointHex = "0101000020E6100000000000000000F03F0000000000000040"

func TestGeometry_Scan(t *testing.T) {
	raw := []byte{0x01, 0x01, 0x00, 0x00, 0x20, 0xE6, 0x10, 0x00, 0x00,
		0, 0, 0, 0, 0, 0, 0xF0, 0x3F, 0, 0, 0, 0, 0, 0, 0, 0x40}

	tests := []struct {
		name string
		src  any
	}{
		{"raw bytes", raw},
		{"hex string", pointHex},
		{"hex bytes", []byte(pointHex)},
		{"bytea text", `\x` + pointHex},
		{"lower case", "0101000020e6100000000000000000f03f0000000000000040"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g postgres.Geometry
			if err := g.Scan(tt.src); err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if diff := cmp.Diff([]byte(raw), []byte(g)); diff != "" {
				t.Errorf("bytes mismatch (-want +got):\n%s", diff)
			}
			decoded, err := ewkb.DecodeGeometry(g, domain.SRIDWGS84)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if decoded != (domain.Point{X: 1, Y: 2}) {
				t.Errorf("decoded %v", decoded)
			}
		})
	}
}

func TestGeometry_ScanCopiesInput(t *testing.T) {
	src := []byte{0x01, 0x02}
	var g postgres.Geometry
	if err := g.Scan(src); err != nil {
		t.Fatal(err)
	}
	src[1] = 0xFF
	if g[1] != 0x02 {
		t.Error("expected Scan to copy the driver buffer")
	}
}

func TestGeometry_ScanNilAndInvalid(t *testing.T) {
	g := postgres.Geometry{1}
	if err := g.Scan(nil); err != nil || g != nil {
		t.Errorf("expected nil geometry, got %v, %v", g, err)
	}
	if err := g.Scan(42); err == nil {
		t.Error("expected error for int source")
	}
	if err := g.Scan("0G"); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestGeometry_Value(t *testing.T) {
	v, err := postgres.Geometry(nil).Value()
	if err != nil || v != nil {
		t.Errorf("expected nil value, got %v, %v", v, err)
	}
	v, err = postgres.Geometry{0x01}.Value()
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := v.([]byte); !ok || len(b) != 1 {
		t.Errorf("expected []byte value, got %T", v)
	}
}
