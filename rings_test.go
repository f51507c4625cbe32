package planetview

import (
	"testing"

	"github.com/gonum/floats"
)

func TestRingSystemFromString(t *testing.T) {
	for _, name := range []string{"Jupiter", "saturn", "URANUS", "Neptune"} {
		rs, err := RingSystemFromString(name)
		if err != nil {
			t.Fatalf("%s: %s", name, err)
		}
		if len(rs.Rings) == 0 {
			t.Fatalf("%s has no rings", name)
		}
	}
	if _, err := RingSystemFromString("Mercury"); !IsConfigurationError(err) {
		t.Fatalf("expected a ConfigurationError for Mercury, got %v", err)
	}
}

func TestCatalogRadiiAscending(t *testing.T) {
	for _, rs := range []RingSystem{JupiterRings, SaturnRings, UranusRings, NeptuneRings} {
		for i, re := range rs.Rings {
			if re.Inner > re.Outer {
				t.Fatalf("%s ring %d (%s): inner %f > outer %f", rs.Planet, i, re.Name, re.Inner, re.Outer)
			}
		}
		for _, arc := range rs.Arcs {
			if arc.Ring < 0 || arc.Ring >= len(rs.Rings) {
				t.Fatalf("%s arc %s references ring %d", rs.Planet, arc.Name, arc.Ring)
			}
			if arc.MinLon >= arc.MaxLon {
				t.Fatalf("%s arc %s has inverted longitudes", rs.Planet, arc.Name)
			}
		}
	}
}

func TestInstantiateSaturn(t *testing.T) {
	center := []float64{0, 0, 1.2e9}
	pole := []float64{0, 1, 0.3}
	specs := SaturnRings.Instantiate(0, center, pole, 0)
	if len(specs) != len(SaturnRings.Rings) {
		t.Fatalf("expected %d specs, got %d", len(SaturnRings.Rings), len(specs))
	}
	scene := Scene{
		View:   ViewTransform{Scale: 1, HalfW: 1, HalfH: 1},
		Bodies: []Ellipsoid{NewSphere("Saturn", center, SaturnRings.EquatorialRadius)},
		Rings:  specs,
	}
	if err := scene.Validate(); err != nil {
		t.Fatalf("instantiated rings fail validation: %s", err)
	}
	// shared boundaries must be emitted once: every annulus after the
	// first has a zeroed inner radius since the catalog is contiguous
	for i, spec := range specs[1:] {
		if spec.Inner != 0 {
			t.Fatalf("spec %d (%s) re-draws the shared boundary at %f", i+1, spec.Name, spec.Inner)
		}
	}
	// the F ring keeps its pericenter and precession
	var fRing *RingSpec
	for i := range specs {
		if specs[i].Name == "F" {
			fRing = &specs[i]
		}
	}
	if fRing == nil || !fRing.HasPericenter {
		t.Fatal("F ring lost its pericenter marker")
	}
	if !floats.EqualWithinAbs(fRing.ArcRate, fRingDPeriDt, 1e-18) {
		t.Fatalf("F ring precession %g, want %g", fRing.ArcRate, fRingDPeriDt)
	}
	if fRing.Ecc != 0.00254 {
		t.Fatalf("F ring eccentricity %g lost", fRing.Ecc)
	}
	if !fRing.Dashed {
		t.Fatal("F ring must be dashed")
	}
}

func TestInstantiateUranusInclination(t *testing.T) {
	center := []float64{0, 0, 2.6e9}
	pole := []float64{0, 0, 1}
	specs := UranusRings.Instantiate(0, center, pole, 0)
	// the inclined Six ring tilts off the pole by its catalog inclination;
	// the uninclined Eta ring stays on it
	six, eta := specs[0], specs[5]
	if got := vsep(six.Normal, pole); !floats.EqualWithinAbs(got, UranusRings.Rings[0].Inc, 1e-12) {
		t.Fatalf("Six ring tilted by %g, want %g", got, UranusRings.Rings[0].Inc)
	}
	if got := vsep(eta.Normal, pole); got > 1e-12 {
		t.Fatalf("Eta ring tilted by %g, want 0", got)
	}
	// node precession moves the tilt axis over time
	later := UranusRings.Instantiate(0, center, pole, 86400)
	if vsep(later[0].Normal, six.Normal) == 0 {
		t.Fatal("Six ring node did not precess")
	}
}

func TestInstantiateNeptuneArcs(t *testing.T) {
	center := []float64{0, 0, 4.3e9}
	pole := []float64{0, 1, 0}
	specs := NeptuneRings.Instantiate(0, center, pole, 0)
	want := len(NeptuneRings.Rings) + len(NeptuneRings.Arcs)
	if len(specs) != want {
		t.Fatalf("expected %d specs, got %d", want, len(specs))
	}
	arcs := specs[len(NeptuneRings.Rings):]
	for _, arc := range arcs {
		if !arc.HasArc {
			t.Fatalf("arc %s lost its longitude limits", arc.Name)
		}
		if arc.Outer != 62932.0 {
			t.Fatalf("arc %s at radius %f, want the Adams ring", arc.Name, arc.Outer)
		}
		if arc.ArcRate <= 0 {
			t.Fatalf("arc %s must corotate forward", arc.Name)
		}
	}
}

func TestInstantiateJupiterHalo(t *testing.T) {
	center := []float64{0, 0, 6e8}
	pole := []float64{0, 0, 1}
	specs := JupiterRings.Instantiate(0, center, pole, 0)
	// the elevated single circles must be offset along the pole and carry
	// no inner boundary
	var seen int
	for _, spec := range specs {
		if spec.Name != "Amalthea" && spec.Name != "Thebe" {
			continue
		}
		seen++
		if spec.Inner != 0 {
			t.Fatalf("%s halo bound has inner radius %f", spec.Name, spec.Inner)
		}
		if floats.EqualWithinAbs(spec.Center[2], center[2], 1) {
			t.Fatalf("%s halo bound not offset along the pole", spec.Name)
		}
	}
	if seen != 4 {
		t.Fatalf("expected 4 halo bounds, saw %d", seen)
	}
}
