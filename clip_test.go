package planetview

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestClipInsideUntouched(t *testing.T) {
	c := clipper{halfW: 100, halfH: 100}
	path := [][2]float64{{-50, -50}, {0, 20}, {50, 50}}
	out := c.clip(path)
	if len(out) != 1 || len(out[0]) != 3 {
		t.Fatalf("inside path altered: %v", out)
	}
	for i := range path {
		if out[0][i] != path[i] {
			t.Fatalf("point %d moved: %v", i, out[0][i])
		}
	}
}

func TestClipCrossing(t *testing.T) {
	c := clipper{halfW: 100, halfH: 100}
	// straight horizontal line exiting on the right
	out := c.clip([][2]float64{{0, 10}, {200, 10}})
	if len(out) != 1 {
		t.Fatalf("expected one clipped piece, got %d", len(out))
	}
	last := out[0][len(out[0])-1]
	if !floats.EqualWithinAbs(last[0], 100, 1e-12) || !floats.EqualWithinAbs(last[1], 10, 1e-12) {
		t.Fatalf("exit point %v, want (100, 10)", last)
	}
}

func TestClipReentry(t *testing.T) {
	c := clipper{halfW: 100, halfH: 100}
	// leaves through the top and comes back: two pieces
	path := [][2]float64{{-50, 50}, {-25, 150}, {25, 150}, {50, 50}}
	out := c.clip(path)
	if len(out) != 2 {
		t.Fatalf("expected two pieces, got %d", len(out))
	}
	for _, piece := range out {
		for _, p := range piece {
			if p[1] > 100+1e-12 {
				t.Fatalf("point %v above the boundary", p)
			}
		}
	}
}

func TestClipBoundaryInclusive(t *testing.T) {
	c := clipper{halfW: 100, halfH: 100}
	path := [][2]float64{{-100, 0}, {100, 0}}
	out := c.clip(path)
	if len(out) != 1 || len(out[0]) != 2 {
		t.Fatalf("boundary path clipped away: %v", out)
	}
}

func TestClipFullyOutside(t *testing.T) {
	c := clipper{halfW: 100, halfH: 100}
	if out := c.clip([][2]float64{{200, 0}, {300, 50}}); len(out) != 0 {
		t.Fatalf("outside path survived: %v", out)
	}
}

func TestDegenerateDrop(t *testing.T) {
	if !degenerate([][2]float64{{0, 0}, {0.4, 0.4}, {0, 0.4}}) {
		t.Fatal("sub-resolution path not flagged")
	}
	if degenerate([][2]float64{{0, 0}, {0.2, 200}}) {
		t.Fatal("long hairline flagged as degenerate")
	}
	c := clipper{halfW: 100, halfH: 100}
	tiny := [][][2]float64{{{0, 0}, {0.3, 0.3}}}
	if got := c.clipPolylines(tiny, LineStyle{Width: 1}); len(got) != 0 {
		t.Fatalf("degenerate polyline emitted: %v", got)
	}
}

func TestSampleArcClosesCircle(t *testing.T) {
	vt := testView(t)
	circle := Ellipse3{
		Center: []float64{0, 0, 1000},
		Major:  []float64{50, 0, 0},
		Minor:  []float64{0, 50, 0},
		Normal: []float64{0, 0, 1},
	}
	paths := sampleArc(circle, vt, AngularSegment{Start: 0, End: twoπ})
	if len(paths) != 1 {
		t.Fatalf("expected one path for a front-facing circle, got %d", len(paths))
	}
	pts := paths[0]
	first, last := pts[0], pts[len(pts)-1]
	if !floats.EqualWithinAbs(first[0], last[0], 1e-9) || !floats.EqualWithinAbs(first[1], last[1], 1e-9) {
		t.Fatalf("full revolution did not close: %v vs %v", first, last)
	}
	// page radius scale·50/1000 = 100
	for _, p := range pts {
		r := math.Hypot(p[0], p[1])
		if !floats.EqualWithinAbs(r, 100, 0.2) {
			t.Fatalf("sample at radius %f, want 100", r)
		}
	}
}

func TestSampleArcSagitta(t *testing.T) {
	vt := testView(t)
	circle := Ellipse3{
		Center: []float64{0, 0, 1000},
		Major:  []float64{100, 0, 0},
		Minor:  []float64{0, 100, 0},
		Normal: []float64{0, 0, 1},
	}
	paths := sampleArc(circle, vt, AngularSegment{Start: 0, End: twoπ})
	pts := paths[0]
	for i := 1; i < len(pts); i++ {
		mid := [2]float64{(pts[i-1][0] + pts[i][0]) / 2, (pts[i-1][1] + pts[i][1]) / 2}
		sag := math.Abs(math.Hypot(mid[0], mid[1]) - 200)
		if sag > sagittaε {
			t.Fatalf("chord %d sagitta %f exceeds %f", i, sag, sagittaε)
		}
	}
}

func TestSampleArcSplitsBehindCamera(t *testing.T) {
	vt := testView(t)
	// circle around the observer: half of it is behind the camera
	circle := Ellipse3{
		Center: []float64{0, 0, 0},
		Major:  []float64{0, 0, 100},
		Minor:  []float64{100, 0, 0},
		Normal: []float64{0, 1, 0},
	}
	paths := sampleArc(circle, vt, AngularSegment{Start: 0, End: twoπ})
	if len(paths) == 0 {
		t.Fatal("expected some in-front samples")
	}
	for _, path := range paths {
		if len(path) < 2 {
			t.Fatalf("split produced a stub of %d points", len(path))
		}
	}
}
