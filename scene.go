package planetview

import (
	"errors"
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

// ConfigurationError reports an invalid scene: observer inside a body,
// malformed ring radii, or a bad view transform. It is fatal for the
// render, never recovered internally, and always surfaced to the caller.
type ConfigurationError struct {
	msg string
}

func (e ConfigurationError) Error() string { return e.msg }

func configErrorf(format string, args ...interface{}) error {
	return ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

// IsConfigurationError returns whether the error (or its cause chain)
// is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce ConfigurationError
	return errors.As(err, &ce)
}

// ViewTransform is the camera basis plus the page mapping for one diagram:
// page scale in page units per tangent unit and the rectangular
// field-of-view half extents in page units. Created once per diagram and
// immutable afterwards.
type ViewTransform struct {
	Camera *mat64.Dense // columns are the camera axes; third column is the boresight
	Scale  float64
	HalfW  float64
	HalfH  float64
}

// NewViewTransform validates and builds a ViewTransform.
func NewViewTransform(camera *mat64.Dense, scale, halfW, halfH float64) (ViewTransform, error) {
	if scale <= 0 {
		return ViewTransform{}, configErrorf("page scale must be positive, got %g", scale)
	}
	if halfW <= 0 || halfH <= 0 {
		return ViewTransform{}, configErrorf("field of view extents must be positive, got %g x %g", halfW, halfH)
	}
	if camera == nil {
		camera = mat64.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	}
	return ViewTransform{Camera: camera, Scale: scale, HalfW: halfW, HalfH: halfH}, nil
}

// CameraMatrix builds the camera orientation matrix for a boresight at the
// given right ascension and declination (radians), with declination up and
// RA increasing left, the usual sky-diagram convention.
func CameraMatrix(ra, dec float64) *mat64.Dense {
	sα, cα := math.Sincos(ra)
	sδ, cδ := math.Sincos(dec)
	col3 := []float64{cδ * cα, cδ * sα, sδ}
	k := []float64{0, 0, 1}
	perp := vsub(k, vscl(dot(k, col3), col3))
	col2 := unit(perp)
	if norm(col2) == 0 {
		col2 = []float64{1, 0, 0}
	}
	col1 := cross(col2, col3)
	return mat64.NewDense(3, 3, []float64{
		col1[0], col2[0], col3[0],
		col1[1], col2[1], col3[1],
		col1[2], col2[2], col3[2],
	})
}

// ToCamera rotates a scene-frame vector into the camera frame.
func (vt ViewTransform) ToCamera(v []float64) []float64 {
	return MtxV33(vt.Camera, v)
}

// Project maps a camera-frame point to page coordinates by gnomonic
// projection. Returns false when the point is on or behind the camera
// plane; the z component is epsilon-clamped so the division is always
// defined.
func (vt ViewTransform) Project(p []float64) ([2]float64, bool) {
	z := p[2]
	ok := z > vecε
	if math.Abs(z) < vecε {
		z = math.Copysign(vecε, z)
		if z == 0 {
			z = vecε
		}
	}
	return [2]float64{-p[0] / z * vt.Scale, -p[1] / z * vt.Scale}, ok
}

// LightSource is an illumination source in the scene frame with a finite
// radius so terminators and umbral cones are well-defined.
type LightSource struct {
	Name   string
	Pos    []float64
	Radius float64
}

// RingOpacity classifies how a ring hides what lies behind it.
type RingOpacity uint8

const (
	// RingOpaque rings hide what lies behind their sheet: the outermost
	// opaque full ring of a body acts as a flat occluder for body curves
	// and stars. Arc rings never occlude.
	RingOpaque RingOpacity = iota
	// RingSemiTransparent rings are drawn dashed-gray but hide nothing.
	RingSemiTransparent
	// RingTransparent rings are contour-only.
	RingTransparent
)

// RingSpec describes one ring annulus in the scene frame: its plane, inner
// and outer radii, optional longitude limits (an arc, with a corotation
// rate), opacity class, eccentricity, and an optional pericenter marker
// angle. Longitudes are measured in the ring plane from a deterministic
// reference axis derived from the normal (see ringBasis).
type RingSpec struct {
	Name   string
	Body   int // index of the owning body in Scene.Bodies
	Center []float64
	Normal []float64
	Inner  float64
	Outer  float64

	HasArc   bool
	ArcStart float64 // rad
	ArcStop  float64 // rad
	ArcRate  float64 // rad/s, corotation of the arc limits

	Opacity RingOpacity
	Dashed  bool

	// Ecc offsets the boundary ellipse so the owning body sits at a
	// focus; the apse line precesses at ArcRate with Pericenter its
	// epoch longitude.
	Ecc           float64
	HasPericenter bool
	Pericenter    float64 // rad
}

// ringBasis returns the in-plane unit axes from which ring longitudes are
// measured. Derived deterministically from the normal alone.
func (r RingSpec) ringBasis() (u, v []float64) {
	_, u, v = frame(r.Normal)
	return u, v
}

// boundary returns the ring boundary of the given semi-major radius as a
// 3D ellipse in the scene frame. An eccentric ring keeps the owning body
/// at a focus: the geometric center shifts toward apocenter along the
// corotated apse line, and Point(0) is the pericenter.
func (r RingSpec) boundary(radius, elapsedSec float64) Ellipse3 {
	u, v := r.ringBasis()
	el := Ellipse3{
		Center: r.Center,
		Major:  vscl(radius, u),
		Minor:  vscl(radius, v),
		Normal: unit(r.Normal),
	}
	if r.Ecc == 0 {
		return el
	}
	ω := mod2π(r.Pericenter + r.ArcRate*elapsedSec)
	sω, cω := math.Sincos(ω)
	apse := vadd(vscl(cω, u), vscl(sω, v))
	el.Center = vsub(r.Center, vscl(radius*r.Ecc, apse))
	el.Major = vscl(radius, apse)
	el.Minor = vscl(radius*math.Sqrt(1-r.Ecc*r.Ecc), cross(el.Normal, apse))
	return el
}

// arcLimits returns the effective arc longitude interval after applying
// the corotation rate for the scene's elapsed time.
func (r RingSpec) arcLimits(elapsedSec float64) (start, stop float64) {
	Δ := r.ArcRate * elapsedSec
	return mod2π(r.ArcStart + Δ), mod2π(r.ArcStop + Δ)
}

// Star is a background star: a scene-frame direction and a magnitude
// which sets the plotted symbol size.
type Star struct {
	Name string
	Dir  []float64
	Mag  float64
}

// SymbolSize returns the plus-glyph half-size in page units; brighter
// stars plot larger, floored so every star stays visible.
func (s Star) SymbolSize() float64 {
	return math.Max(1.5, 6-0.75*s.Mag)
}

// Label is free text anchored at a page coordinate.
type Label struct {
	Text string
	At   [2]float64
}

// Scene is the full description of one diagram: the view transform plus
// all bodies, rings, stars and labels already expressed in the observer-centered scene frame by
// the ephemeris collaborator. Bodies[0] is the planet by convention. A
// Scene is built once and never mutated by the pipeline.
type Scene struct {
	Title  string
	JD     float64 // observation epoch as a Julian date, header metadata only
	View   ViewTransform
	Bodies []Ellipsoid
	Rings  []RingSpec
	Stars  []Star
	Labels []Label
	Lights []LightSource

	// ElapsedSec is the time since the arc-limit epoch, used only to
	// corotate ring arc limits; all other time handling is out of scope.
	ElapsedSec float64

	// SuppressUnlit drops night-side limb arcs instead of drawing them in
	// the dark style.
	SuppressUnlit bool
}

// Validate checks the scene for configuration errors. Degenerate geometry
// (edge-on rings, grazing tangencies) is not an error and resolves inside
// the pipeline; this catches only the unrecoverable cases.
func (s Scene) Validate() error {
	if s.View.Scale <= 0 || s.View.HalfW <= 0 || s.View.HalfH <= 0 {
		return configErrorf("view transform not initialized")
	}
	origin := []float64{0, 0, 0}
	for i, b := range s.Bodies {
		for j := 0; j < 3; j++ {
			if norm(b.Axes[j]) < vecε {
				return configErrorf("body %d (%q) has a zero semi-axis", i, b.Name)
			}
		}
		if b.Contains(origin) {
			return configErrorf("observer is inside body %d (%q)", i, b.Name)
		}
	}
	for i, r := range s.Rings {
		if r.Inner >= r.Outer {
			return configErrorf("ring %d (%q): inner radius %g >= outer radius %g", i, r.Name, r.Inner, r.Outer)
		}
		if norm(r.Normal) < vecε {
			return configErrorf("ring %d (%q) has a zero plane normal", i, r.Name)
		}
		if r.Body < 0 || r.Body >= len(s.Bodies) {
			return configErrorf("ring %d (%q) references body %d of %d", i, r.Name, r.Body, len(s.Bodies))
		}
	}
	return nil
}

// drawItem identifies one block of the output document in draw order.
type drawItem struct {
	kind drawKind
	idx  int
}

type drawKind uint8

const (
	drawStars drawKind = iota
	drawBody
	drawRing
	drawLabel
)

// drawOrder enumerates the scene far-to-near: stars first (background),
// then bodies by decreasing camera distance with each body's rings
// immediately after it, labels last. The order only fixes the block layout
// of the output; occlusion is resolved analytically, not by draw order.
func (s Scene) drawOrder() []drawItem {
	items := make([]drawItem, 0, 1+len(s.Bodies)+len(s.Rings)+1)
	if len(s.Stars) > 0 {
		items = append(items, drawItem{drawStars, 0})
	}
	order := make([]int, len(s.Bodies))
	for i := range order {
		order[i] = i
	}
	// insertion sort by decreasing distance keeps equal-distance bodies in
	// scene order, so output is stable
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && norm(s.Bodies[order[j]].Center) > norm(s.Bodies[order[j-1]].Center); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	for _, bi := range order {
		items = append(items, drawItem{drawBody, bi})
		for ri, r := range s.Rings {
			if r.Body == bi {
				items = append(items, drawItem{drawRing, ri})
			}
		}
	}
	for li := range s.Labels {
		items = append(items, drawItem{drawLabel, li})
	}
	return items
}
