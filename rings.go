package planetview

import (
	"math"
	"strings"
)

// RingElement is one catalog annulus in a planet's equatorial plane, radii
// in kilometers and angles in radians at the catalog epoch. Precession
// rates are radians per second.
type RingElement struct {
	Name         string
	Inner, Outer float64
	Elev         float64 // offset along the pole, for halo bounds
	Ecc          float64
	Inc          float64
	Peri, Node   float64
	DPeriDt      float64
	DNodeDt      float64
	Opaque       bool
	Dashed       bool
}

// RingArcElement is a longitude-limited piece of one catalog ring.
type RingArcElement struct {
	Ring           int // index into the ring table
	Name           string
	MinLon, MaxLon float64 // rad, at the catalog epoch
	Rate           float64 // rad/s, mean motion of the arc
}

// RingSystem bundles one planet's ring tables with its equatorial radius
// in kilometers.
type RingSystem struct {
	Planet           string
	EquatorialRadius float64
	Rings            []RingElement
	Arcs             []RingArcElement
}

// RingSystemFromString returns the ring system from the planet name.
func RingSystemFromString(name string) (RingSystem, error) {
	switch strings.ToLower(name) {
	case "jupiter":
		return JupiterRings, nil
	case "saturn":
		return SaturnRings, nil
	case "uranus":
		return UranusRings, nil
	case "neptune":
		return NeptuneRings, nil
	default:
		return RingSystem{}, configErrorf("no ring system defined for '%s'", name)
	}
}

// Instantiate converts the catalog into scene-frame ring specs for a
// planet whose center and north pole direction are given in the scene frame,
// owned by scene body index. Boundaries shared between adjacent annuli are
// emitted once: the inner radius is zeroed when the previous annulus
// already draws that circle, and zero radii are not drawn. Longitudes are
// measured from the node axis the caller encoded in the pole frame.
// elapsedSec, seconds since the catalog epoch, precesses the inclined
// ring nodes; apse precession is applied at render time.
func (rs RingSystem) Instantiate(body int, center, pole []float64, elapsedSec float64) []RingSpec {
	specs := make([]RingSpec, 0, len(rs.Rings)+len(rs.Arcs))
	ph, u, v := frame(pole)
	for i, re := range rs.Rings {
		inner := re.Inner
		if inner == re.Outer {
			// a single circle, catalog style for halo bounds
			inner = 0
		} else if i > 0 && inner == rs.Rings[i-1].Outer && re.Elev == rs.Rings[i-1].Elev {
			inner = 0
		}
		c := center
		if re.Elev != 0 {
			c = vadd(center, vscl(re.Elev, ph))
		}
		opacity := RingSemiTransparent
		if re.Opaque {
			opacity = RingOpaque
		}
		normal := ph
		if re.Inc != 0 {
			// tilt the ring plane about its precessed node line
			Ω := re.Node + re.DNodeDt*elapsedSec
			sΩ, cΩ := math.Sincos(Ω)
			node := vadd(vscl(cΩ, u), vscl(sΩ, v))
			normal = vrotv(ph, node, re.Inc)
		}
		spec := RingSpec{
			Name:    re.Name,
			Body:    body,
			Center:  c,
			Normal:  normal,
			Inner:   inner,
			Outer:   re.Outer,
			Opacity: opacity,
			Dashed:  re.Dashed,
		}
		if re.Ecc != 0 {
			spec.Ecc = re.Ecc
			spec.HasPericenter = true
			spec.Pericenter = re.Peri
			spec.ArcRate = re.DPeriDt
		}
		specs = append(specs, spec)
	}
	for _, arc := range rs.Arcs {
		ring := rs.Rings[arc.Ring]
		specs = append(specs, RingSpec{
			Name:     arc.Name,
			Body:     body,
			Center:   center,
			Normal:   ph,
			Inner:    0,
			Outer:    ring.Outer,
			HasArc:   true,
			ArcStart: arc.MinLon,
			ArcStop:  arc.MaxLon,
			ArcRate:  arc.Rate,
			Opacity:  RingOpaque,
		})
	}
	return specs
}

// F ring apse and node precession, rad/s.
const (
	fRingDPeriDt = 5.45435592e-7
	fRingDNodeDt = -5.42910521e-7
)

const (
	arcDegPerDay = deg2rad / 86400
)

/* Definitions */

// JupiterRings is faint and mostly dust.
var JupiterRings = RingSystem{
	Planet:           "Jupiter",
	EquatorialRadius: 71492.0,
	Rings: []RingElement{
		{Name: "Halo", Outer: 122000.0},
		{Name: "Main", Inner: 122000.0, Outer: 129000.0},
		{Name: "Amalthea", Inner: 181350.0, Outer: 181350.0, Elev: 1160.0, Dashed: true},
		{Name: "Amalthea", Inner: 181350.0, Outer: 181350.0, Elev: -1160.0, Dashed: true},
		{Name: "Thebe", Inner: 221900.0, Outer: 221900.0, Elev: 4310.0, Dashed: true},
		{Name: "Thebe", Inner: 221900.0, Outer: 221900.0, Elev: -4310.0, Dashed: true},
		{Name: "Thebe ext.", Inner: 221900.0, Outer: 422000.0, Dashed: true},
	},
}

// SaturnRings is the reason everyone wants the job.
var SaturnRings = RingSystem{
	Planet:           "Saturn",
	EquatorialRadius: 60268.0,
	Rings: []RingElement{
		{Name: "D", Outer: 74490.0},
		{Name: "C", Inner: 74490.0, Outer: 92050.0, Opaque: true},
		{Name: "B", Inner: 92050.0, Outer: 117540.0, Opaque: true},
		{Name: "Cassini", Inner: 117540.0, Outer: 122060.0, Opaque: true},
		{Name: "A", Inner: 122060.0, Outer: 136780.0, Opaque: true},
		{Name: "F", Inner: 136780.0, Outer: 140223.7, Ecc: 0.00254, Inc: 0.00011,
			Peri: 0.42062, Node: 0.28100, DPeriDt: fRingDPeriDt, DNodeDt: fRingDNodeDt, Dashed: true},
		{Name: "G", Inner: 140223.7, Outer: 166000.0, Dashed: true},
		{Name: "G ext.", Inner: 166000.0, Outer: 173000.0, Dashed: true},
		{Name: "E", Inner: 173000.0, Outer: 238040.0, Dashed: true},
	},
}

// UranusRings is narrow, dark and precesses fast.
var UranusRings = RingSystem{
	Planet:           "Uranus",
	EquatorialRadius: 25559.0,
	Rings: []RingElement{
		{Name: "Six", Outer: 41837.15, Ecc: 1.013e-3, Inc: 0.0616 * deg2rad,
			Peri: 242.80 * deg2rad, Node: 12.12 * deg2rad, DPeriDt: 2.76156 * arcDegPerDay, DNodeDt: -2.75629 * arcDegPerDay},
		{Name: "Five", Inner: 41837.15, Outer: 42234.82, Ecc: 1.899e-3, Inc: 0.0536 * deg2rad,
			Peri: 170.31 * deg2rad, Node: 286.57 * deg2rad, DPeriDt: 2.67151 * arcDegPerDay, DNodeDt: -2.66604 * arcDegPerDay},
		{Name: "Four", Inner: 42234.82, Outer: 42570.91, Ecc: 1.059e-3, Inc: 0.0323 * deg2rad,
			Peri: 127.28 * deg2rad, Node: 89.26 * deg2rad, DPeriDt: 2.59816 * arcDegPerDay, DNodeDt: -2.59271 * arcDegPerDay},
		{Name: "Alpha", Inner: 42570.91, Outer: 44718.45, Ecc: 0.761e-3, Inc: 0.0152 * deg2rad,
			Peri: 333.24 * deg2rad, Node: 63.08 * deg2rad, DPeriDt: 2.18574 * arcDegPerDay, DNodeDt: -2.18326 * arcDegPerDay},
		{Name: "Beta", Inner: 44718.45, Outer: 45661.03, Ecc: 0.442e-3, Inc: 0.0051 * deg2rad,
			Peri: 224.88 * deg2rad, Node: 310.05 * deg2rad, DPeriDt: 2.03083 * arcDegPerDay, DNodeDt: -2.02835 * arcDegPerDay},
		{Name: "Eta", Inner: 45661.03, Outer: 47175.91},
		{Name: "Gamma", Inner: 47175.91, Outer: 47626.87, Ecc: 0.109e-3,
			Peri: 132.10 * deg2rad, DPeriDt: 1.75075 * arcDegPerDay, DNodeDt: -1.74828 * arcDegPerDay},
		{Name: "Delta", Inner: 47626.87, Outer: 48300.12},
		{Name: "Lambda", Inner: 48300.12, Outer: 50023.94},
		{Name: "Epsilon", Inner: 50023.94, Outer: 51091.32, Ecc: 7.193e-3,
			Peri: 214.97 * deg2rad, DPeriDt: 1.36325 * arcDegPerDay, DNodeDt: -1.36118 * arcDegPerDay},
		{Name: "Epsilon", Inner: 51091.32, Outer: 51207.32, Ecc: 8.679e-3,
			Peri: 214.97 * deg2rad, DPeriDt: 1.36325 * arcDegPerDay, DNodeDt: -1.36118 * arcDegPerDay},
		{Name: "Nu", Inner: 51207.32, Outer: 66100.0, Dashed: true},
		{Name: "Nu", Inner: 66100.0, Outer: 67300.0},
		{Name: "Nu ext.", Inner: 67300.0, Outer: 69900.0, Dashed: true},
		{Name: "Mu", Inner: 69900.0, Outer: 86000.0, Dashed: true},
		{Name: "Mu", Inner: 86000.0, Outer: 97700.0},
		{Name: "Mu ext.", Inner: 97700.0, Outer: 103000.0, Dashed: true},
	},
}

// NeptuneRings carries the Adams arcs, the only ring arcs known to hold
// together.
var NeptuneRings = RingSystem{
	Planet:           "Neptune",
	EquatorialRadius: 24764.0,
	Rings: []RingElement{
		{Name: "Galle", Outer: 42000.0, Dashed: true},
		{Name: "Le Verrier", Inner: 42000.0, Outer: 53200.0, Opaque: true},
		{Name: "Lassell", Inner: 53200.0, Outer: 57500.0, Dashed: true},
		{Name: "Adams", Inner: 57500.0, Outer: 62932.0, Opaque: true},
	},
	Arcs: []RingArcElement{
		{Ring: 3, Name: "Fraternite", MinLon: 247.1 * deg2rad, MaxLon: 256.7 * deg2rad, Rate: 820.1194 * arcDegPerDay},
		{Ring: 3, Name: "Egalite B", MinLon: 261.1 * deg2rad, MaxLon: 264.1 * deg2rad, Rate: 820.1118 * arcDegPerDay},
		{Ring: 3, Name: "Egalite A", MinLon: 264.9 * deg2rad, MaxLon: 265.9 * deg2rad, Rate: 820.1121 * arcDegPerDay},
		{Ring: 3, Name: "Liberte", MinLon: 275.7 * deg2rad, MaxLon: 279.8 * deg2rad, Rate: 820.1121 * arcDegPerDay},
		{Ring: 3, Name: "Courage", MinLon: 284.5 * deg2rad, MaxLon: 285.5 * deg2rad, Rate: 820.1121 * arcDegPerDay},
	},
}
