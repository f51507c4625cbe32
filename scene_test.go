package planetview

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestValidate(t *testing.T) {
	vt := testView(t)
	base := func() *Scene {
		return &Scene{
			View:   vt,
			Bodies: []Ellipsoid{NewSphere("planet", []float64{0, 0, 1000}, 100)},
		}
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("valid scene rejected: %s", err)
	}

	s := base()
	s.Bodies[0] = NewSphere("around us", []float64{10, 0, 0}, 100)
	if err := s.Validate(); !IsConfigurationError(err) {
		t.Fatalf("observer inside body: got %v", err)
	}

	s = base()
	s.Rings = []RingSpec{{Name: "bad", Body: 0, Center: []float64{0, 0, 1000}, Normal: []float64{0, 0, 1}, Inner: 300, Outer: 200}}
	if err := s.Validate(); !IsConfigurationError(err) {
		t.Fatalf("inverted ring radii: got %v", err)
	}

	s = base()
	s.Rings = []RingSpec{{Name: "bad", Body: 3, Center: []float64{0, 0, 1000}, Normal: []float64{0, 0, 1}, Inner: 100, Outer: 200}}
	if err := s.Validate(); !IsConfigurationError(err) {
		t.Fatalf("dangling ring body index: got %v", err)
	}

	s = base()
	s.Rings = []RingSpec{{Name: "bad", Body: 0, Center: []float64{0, 0, 1000}, Normal: []float64{0, 0, 0}, Inner: 100, Outer: 200}}
	if err := s.Validate(); !IsConfigurationError(err) {
		t.Fatalf("zero ring normal: got %v", err)
	}

	if err := (Scene{}).Validate(); !IsConfigurationError(err) {
		t.Fatalf("uninitialized view: got %v", err)
	}
}

func TestCameraMatrix(t *testing.T) {
	cam := CameraMatrix(0, 0)
	// boresight along +x
	bore := MxV33(cam, []float64{0, 0, 1})
	if !vectorsEqual(bore, []float64{1, 0, 0}) {
		t.Fatalf("boresight %v, want +x", bore)
	}
	// columns orthonormal for arbitrary pointing
	cam = CameraMatrix(1.1, -0.4)
	for i := 0; i < 3; i++ {
		ci := []float64{cam.At(0, i), cam.At(1, i), cam.At(2, i)}
		if !floats.EqualWithinAbs(norm(ci), 1, 1e-12) {
			t.Fatalf("column %d not unit", i)
		}
		for j := i + 1; j < 3; j++ {
			cj := []float64{cam.At(0, j), cam.At(1, j), cam.At(2, j)}
			if !floats.EqualWithinAbs(dot(ci, cj), 0, 1e-12) {
				t.Fatalf("columns %d and %d not orthogonal", i, j)
			}
		}
	}
	// polar singularity falls back to a fixed up reference
	cam = CameraMatrix(0, math.Pi/2)
	bore = MxV33(cam, []float64{0, 0, 1})
	if !vectorsEqual(bore, []float64{0, 0, 1}) {
		t.Fatalf("polar boresight %v, want +z", bore)
	}
}

func TestProjectPoint(t *testing.T) {
	vt := testView(t)
	pt, ok := vt.Project([]float64{0, 0, 100})
	if !ok || pt[0] != 0 || pt[1] != 0 {
		t.Fatalf("boresight point projected to %v (ok=%v)", pt, ok)
	}
	// x offsets map to -x on the page, scaled by scale/z
	pt, ok = vt.Project([]float64{10, 0, 100})
	if !ok || !floats.EqualWithinAbs(pt[0], -200, 1e-9) {
		t.Fatalf("offset point projected to %v (ok=%v)", pt, ok)
	}
	if _, ok = vt.Project([]float64{0, 0, -100}); ok {
		t.Fatal("point behind the camera reported in front")
	}
}

func TestDrawOrder(t *testing.T) {
	s := &Scene{
		View: testView(t),
		Bodies: []Ellipsoid{
			NewSphere("near", []float64{0, 0, 500}, 10),
			NewSphere("far", []float64{0, 0, 5000}, 10),
		},
		Rings:  []RingSpec{{Name: "r", Body: 0, Center: []float64{0, 0, 500}, Normal: []float64{0, 0, 1}, Inner: 20, Outer: 30}},
		Stars:  []Star{{Name: "s", Dir: []float64{0, 0, 1}, Mag: 3}},
		Labels: []Label{{Text: "caption", At: [2]float64{0, -350}}},
	}
	items := s.drawOrder()
	if items[0].kind != drawStars {
		t.Fatal("stars must come first")
	}
	if items[1].kind != drawBody || items[1].idx != 1 {
		t.Fatalf("farthest body must follow the stars, got %v", items[1])
	}
	if items[2].kind != drawBody || items[2].idx != 0 {
		t.Fatalf("near body must come after the far one, got %v", items[2])
	}
	if items[3].kind != drawRing || items[3].idx != 0 {
		t.Fatalf("ring must follow its owner, got %v", items[3])
	}
	if items[4].kind != drawLabel {
		t.Fatal("labels must come last")
	}
}

func TestEccentricRingBoundary(t *testing.T) {
	ring := RingSpec{
		Name: "f", Body: 0,
		Center:     []float64{0, 0, 1000},
		Normal:     []float64{0, 0, 1},
		Inner:      140200,
		Outer:      140270,
		Ecc:        0.0025,
		Pericenter: 0.3,
		ArcRate:    1e-5,
	}
	a := ring.Outer
	el := ring.boundary(a, 0)
	// the owning body sits at a focus: pericenter at a(1-e), apocenter at a(1+e)
	if d := norm(vsub(el.Point(0), ring.Center)); !floats.EqualWithinAbs(d, a*(1-ring.Ecc), 1e-6) {
		t.Fatalf("pericenter distance %f, want %f", d, a*(1-ring.Ecc))
	}
	if d := norm(vsub(el.Point(math.Pi), ring.Center)); !floats.EqualWithinAbs(d, a*(1+ring.Ecc), 1e-6) {
		t.Fatalf("apocenter distance %f, want %f", d, a*(1+ring.Ecc))
	}
	if b := norm(el.Minor); !floats.EqualWithinAbs(b, a*math.Sqrt(1-ring.Ecc*ring.Ecc), 1e-6) {
		t.Fatalf("semi-minor %f, want %f", b, a*math.Sqrt(1-ring.Ecc*ring.Ecc))
	}
	// the apse line precesses at ArcRate
	dt := 3600.0
	later := ring.boundary(a, dt)
	if sep := vsep(unit(el.Major), unit(later.Major)); !floats.EqualWithinAbs(sep, ring.ArcRate*dt, 1e-9) {
		t.Fatalf("apse moved %f rad over %fs, want %f", sep, dt, ring.ArcRate*dt)
	}
	// circular rings stay centered on the body
	ring.Ecc = 0
	if el := ring.boundary(a, 0); !vectorsEqual(el.Center, ring.Center) {
		t.Fatalf("circular boundary center %v, want %v", el.Center, ring.Center)
	}
}

func TestStarSymbolSize(t *testing.T) {
	bright := Star{Mag: -1}
	faint := Star{Mag: 9}
	if bright.SymbolSize() <= faint.SymbolSize() {
		t.Fatal("brighter stars must plot larger")
	}
	if faint.SymbolSize() < 1.5 {
		t.Fatal("symbol size must stay above the floor")
	}
}
