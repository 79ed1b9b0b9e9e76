package geospatial

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samirrijal/geostore/internal/core/domain"
)

func TestHaversine(t *testing.T) {
	// Two points in central Bilbao, roughly 300 m apart.
	d := Haversine(43.2614, -2.9253, 43.2590, -2.9237)
	if d < 200 || d > 400 {
		t.Errorf("expected ~300m, got %.0f", d)
	}

	if d := Haversine(0, 0, 0, 0); d != 0 {
		t.Errorf("identical points should be 0, got %f", d)
	}
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name string
		g    domain.Geometry
		want []float64
		ok   bool
	}{
		{"point", domain.Point{X: 1, Y: 2}, []float64{1, 2, 1, 2}, true},
		{
			"line",
			domain.NewLineString(domain.Point{X: 3, Y: -1}, domain.Point{X: -2, Y: 4}),
			[]float64{-2, -1, 3, 4},
			true,
		},
		{
			"polygon z",
			domain.NewPolygon([]domain.PointZ{{X: 0, Y: 0, Z: 9}, {X: 5, Y: 0, Z: 9}, {X: 5, Y: 5, Z: 9}, {X: 0, Y: 0, Z: 9}}),
			[]float64{0, 0, 5, 5},
			true,
		},
		{
			"nested collection",
			domain.NewGeometryCollection[domain.Point](
				domain.Point{X: 10, Y: 10},
				domain.NewGeometryCollection[domain.Point](domain.NewMultiPoint(domain.Point{X: -10, Y: 0})),
			),
			[]float64{-10, 0, 10, 10},
			true,
		},
		{"empty line", domain.LineString[domain.Point]{}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, ok := Bounds(tt.g)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.want, env.BBox()); diff != "" {
				t.Errorf("bbox mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLength(t *testing.T) {
	// One degree of longitude on the equator.
	line := domain.NewLineString(domain.Point{X: 0, Y: 0}, domain.Point{X: 1, Y: 0})
	got := Length(line)
	want := 2 * math.Pi * earthRadiusKm * 1000 / 360
	if math.Abs(got-want) > 1 {
		t.Errorf("Length = %.1f, want %.1f", got, want)
	}

	multi := domain.NewMultiLineString(line, line)
	if got := Length(multi); math.Abs(got-2*want) > 1 {
		t.Errorf("multi length = %.1f, want %.1f", got, 2*want)
	}

	if got := Length(domain.NewMultiPoint(domain.Point{X: 0, Y: 0}, domain.Point{X: 1, Y: 1})); got != 0 {
		t.Errorf("points have no length, got %f", got)
	}
}
