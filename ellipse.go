package planetview

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const (
	// tinyε replaces non-positive denominators in near-tangent ellipse
	// constructions so they classify gracefully instead of blowing up.
	tinyε = 1e-30
	// planeTangentε is the overshoot tolerated when a plane grazes an
	// ellipse; the grazing point counts as a single tangent root.
	planeTangentε = 1e-9
)

// Ellipsoid is a triaxial body expressed in the scene frame, observer at the origin: a center
// position and three mutually orthogonal semi-axis vectors which carry the
// body-fixed rotation (each vector's length is the semi-axis length).
// Merids and LatCircles request a surface grid; zero draws none.
type Ellipsoid struct {
	Name   string
	Center []float64
	Axes   [3][]float64

	Merids     int
	LatCircles int
}

// NewEllipsoid builds an Ellipsoid from scene-frame center, a body-fixed
// rotation matrix (columns are the body axes in the scene frame) and the three
// semi-axis lengths in the same units as the center.
func NewEllipsoid(name string, center []float64, rot *mat64.Dense, radii [3]float64) Ellipsoid {
	var axes [3][]float64
	for i := 0; i < 3; i++ {
		col := []float64{rot.At(0, i), rot.At(1, i), rot.At(2, i)}
		axes[i] = vscl(radii[i], col)
	}
	return Ellipsoid{Name: name, Center: center, Axes: axes}
}

// NewOrientedEllipsoid builds an Ellipsoid from its north pole direction:
// the polar semi-axis radii[2] lies along the pole, the two equatorial
// semi-axes in the plane normal to it, oriented deterministically.
func NewOrientedEllipsoid(name string, center, pole []float64, radii [3]float64) Ellipsoid {
	ph, u, v := frame(pole)
	return Ellipsoid{Name: name, Center: center, Axes: [3][]float64{
		vscl(radii[0], u), vscl(radii[1], v), vscl(radii[2], ph),
	}}
}

// NewSphere builds a spherical Ellipsoid with axis-aligned axes.
func NewSphere(name string, center []float64, radius float64) Ellipsoid {
	return Ellipsoid{Name: name, Center: center, Axes: [3][]float64{
		{radius, 0, 0}, {0, radius, 0}, {0, 0, radius},
	}}
}

// Meridians returns n full meridian ellipses, equally spaced in
// longitude about the polar axis Axes[2]. Each passes through both
// poles, so n ellipses cover 2n half-meridians.
func (e Ellipsoid) Meridians(n int) []Ellipse3 {
	out := make([]Ellipse3, 0, n)
	for i := 0; i < n; i++ {
		sλ, cλ := math.Sincos(float64(i) * math.Pi / float64(n))
		major := vadd(vscl(cλ, e.Axes[0]), vscl(sλ, e.Axes[1]))
		out = append(out, Ellipse3{
			Center: e.Center,
			Major:  major,
			Minor:  e.Axes[2],
			Normal: crossUnit(major, e.Axes[2]),
		})
	}
	return out
}

// LatitudeCircles returns n circles of latitude evenly spaced between
// the poles, excluding the poles themselves. Odd n includes the equator.
func (e Ellipsoid) LatitudeCircles(n int) []Ellipse3 {
	out := make([]Ellipse3, 0, n)
	normal := crossUnit(e.Axes[0], e.Axes[1])
	for k := 1; k <= n; k++ {
		sφ, cφ := math.Sincos(-math.Pi/2 + math.Pi*float64(k)/float64(n+1))
		out = append(out, Ellipse3{
			Center: vadd(e.Center, vscl(sφ, e.Axes[2])),
			Major:  vscl(cφ, e.Axes[0]),
			Minor:  vscl(cφ, e.Axes[1]),
			Normal: normal,
		})
	}
	return out
}

// MaxRadius returns the largest semi-axis length.
func (e Ellipsoid) MaxRadius() float64 {
	return math.Max(norm(e.Axes[0]), math.Max(norm(e.Axes[1]), norm(e.Axes[2])))
}

// MinRadius returns the smallest semi-axis length.
func (e Ellipsoid) MinRadius() float64 {
	return math.Min(norm(e.Axes[0]), math.Min(norm(e.Axes[1]), norm(e.Axes[2])))
}

// quadric returns the symmetric matrix Q such that points x on the
// ellipsoid surface satisfy (x-center)ᵀ Q (x-center) = 1.
func (e Ellipsoid) quadric() *mat64.Dense {
	m := mat64.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		r2 := dot(e.Axes[i], e.Axes[i])
		if r2 < tinyε {
			r2 = tinyε
		}
		m.SetRow(i, vscl(1/r2, e.Axes[i]))
	}
	var q mat64.Dense
	q.Mul(m.T(), m)
	return &q
}

// qform evaluates the quadratic form uᵀ Q v.
func qform(q *mat64.Dense, u, v []float64) float64 {
	return dot(u, MxV33(q, v))
}

// Contains reports whether a scene-frame point is inside or on the body.
func (e Ellipsoid) Contains(p []float64) bool {
	d := vsub(p, e.Center)
	return qform(e.quadric(), d, d) <= 1
}

// Ellipse3 is a 3D ellipse in parametric form Center + cosθ·Major +
// sinθ·Minor, with the unit plane normal retained. It is the closed-form
// silhouette (limb), terminator, or ring boundary of a scene object, and is
// never mutated after construction.
type Ellipse3 struct {
	Center []float64
	Major  []float64
	Minor  []float64
	Normal []float64
}

// Point evaluates the parametric form at angle θ.
func (el Ellipse3) Point(θ float64) []float64 {
	sθ, cθ := math.Sincos(θ)
	return vadd(el.Center, vlcom(cθ, el.Major, sθ, el.Minor))
}

// PlaneConst returns the plane constant c with the ellipse plane written
// as Normal·x = c.
func (el Ellipse3) PlaneConst() float64 {
	return dot(el.Normal, el.Center)
}

// limbFrom computes the silhouette ellipse of the body as seen from the
// given viewpoint: the intersection of the polar (tangent) cone with the
// ellipsoid. Returns false when the viewpoint is inside or on the body.
func (e Ellipsoid) limbFrom(viewpoint []float64) (Ellipse3, bool) {
	q := e.quadric()
	sight := vsub(viewpoint, e.Center)
	w := qform(q, sight, sight)
	if w <= 1 {
		return Ellipse3{}, false
	}
	normal := unit(MxV33(q, sight))
	λ := 1 / w
	center := vadd(e.Center, vscl(λ, sight))
	_, u, v := frame(normal)
	α := qform(q, u, u)
	β := qform(q, v, u)
	γ := qform(q, v, v)
	middle := (α + γ) / 2
	radius := math.Hypot((α-γ)/2, β)
	denomA := middle - radius
	denomB := middle + radius
	if denomA <= 0 {
		denomA = tinyε
	}
	if denomB <= 0 {
		denomB = tinyε
	}
	a := math.Sqrt((1 - λ) / denomA)
	b := math.Sqrt((1 - λ) / denomB)
	var cθ, sθ float64
	if radius == 0 {
		cθ, sθ = 1, 0
	} else {
		c2θ := (α - γ) / 2 / radius
		cθ = math.Sqrt((1 + c2θ) / 2)
		sθ = math.Copysign(math.Sqrt((1-c2θ)/2), β)
	}
	return Ellipse3{
		Center: center,
		Major:  vscl(a, vlcom(-sθ, u, cθ, v)),
		Minor:  vscl(b, vlcom(cθ, u, sθ, v)),
		Normal: normal,
	}, true
}

// Limb computes the apparent silhouette of the body for the observer at
// the scene origin. An observer inside the body is a configuration
// error: it must never happen when rendering external bodies.
func (e Ellipsoid) Limb() (Ellipse3, error) {
	el, ok := e.limbFrom([]float64{0, 0, 0})
	if !ok {
		return Ellipse3{}, configErrorf("observer is inside body %q", e.Name)
	}
	return el, nil
}

// ShadowCone is the umbral cone a body casts for one light source. Points
// inside the cone, on the far side of the terminator plane from the light,
// are in shadow.
type ShadowCone struct {
	Vertex  []float64
	Axis    []float64
	Ellipse Ellipse3
}

// Terminator computes the day/night boundary ellipse on the body for a
// finite-radius light source, along with the shadow cone it casts. Returns
// false when the source is inside the body or too close to cast a
// well-defined terminator.
func (e Ellipsoid) Terminator(light LightSource) (Ellipse3, ShadowCone, bool) {
	sight := vsub(e.Center, light.Pos)
	big := e.MaxRadius()
	q := e.quadric()
	if qform(q, sight, sight) <= 1 || norm(sight) <= big+light.Radius {
		return Ellipse3{}, ShadowCone{}, false
	}
	denom := light.Radius - big
	var t float64
	if math.Abs(denom) <= 1e-4 {
		t = big * 1e4
	} else {
		t = big / denom
	}
	vertex := vlcom(1, e.Center, t, sight)
	axis := unit(sight)
	el, ok := e.limbFrom(vertex)
	if !ok {
		return Ellipse3{}, ShadowCone{}, false
	}
	// orient the normal away from the light so the positive side is night
	if dot(axis, el.Normal) < 0 {
		el.Normal = vscl(-1, el.Normal)
	}
	return el, ShadowCone{Vertex: vertex, Axis: axis, Ellipse: el}, true
}

// InShadow reports whether a scene-frame point lies in the umbra: inside
// the cone and on the night side of the terminator plane.
func (s ShadowCone) InShadow(p []float64, light LightSource) bool {
	el := s.Ellipse
	nightSide := dot(vsub(p, el.Center), el.Normal)
	litRef := dot(vsub(light.Pos, el.Center), el.Normal)
	if !opsgnd(nightSide, litRef) {
		return false
	}
	// project p from the cone vertex onto the terminator plane
	den := dot(el.Normal, vsub(p, s.Vertex))
	if math.Abs(den) < vecε {
		den = math.Copysign(vecε, den)
	}
	t := dot(el.Normal, vsub(el.Center, s.Vertex)) / den
	if t <= 0 {
		return false
	}
	x := vadd(s.Vertex, vscl(t, vsub(p, s.Vertex)))
	return pointInEllipse(el, x)
}

// pointInEllipse reports whether a point known to lie in the ellipse plane
// falls inside the ellipse boundary.
func pointInEllipse(el Ellipse3, p []float64) bool {
	d := vsub(p, el.Center)
	a2 := dot(el.Major, el.Major)
	b2 := dot(el.Minor, el.Minor)
	if a2 < tinyε || b2 < tinyε {
		return false
	}
	ma := dot(el.Major, d)
	mi := dot(el.Minor, d)
	return ma*ma/(a2*a2)+mi*mi/(b2*b2) <= 1
}

// planeEllipseAngles returns the parameter angles, ascending in [0, 2π),
// where the ellipse crosses the plane n·x = c. Zero, one (tangent) or two
// angles are returned. A plane parallel to the ellipse plane yields no
// crossing; the caller's midpoint classification decides the side.
func planeEllipseAngles(el Ellipse3, n []float64, c float64) []float64 {
	a := dot(n, el.Major)
	b := dot(n, el.Minor)
	k := c - dot(n, el.Center)
	r2 := a*a + b*b
	if r2 < tinyε {
		return nil
	}
	x := k / math.Sqrt(r2)
	if x > 1 || x < -1 {
		if math.Abs(x)-1 > planeTangentε {
			return nil
		}
		x = sign(x)
	}
	φ := math.Atan2(b, a)
	δ := math.Acos(x)
	// Materialize both roots in independent locals before any write-back.
	// Swapping in place through an already-overwritten variable is the
	// historical off-by-one failure mode here.
	root1 := mod2π(φ - δ)
	root2 := mod2π(φ + δ)
	if floats.EqualWithinAbs(root1, root2, 1e-15) {
		return []float64{root1}
	}
	if root1 > root2 {
		lo, hi := root2, root1
		root1, root2 = lo, hi
	}
	return []float64{root1, root2}
}

// ProjectedEllipse is the page-plane image of an Ellipse3: 2D center, the
// two principal semi-axis lengths and the tilt of the major axis, all in
// page units. Derived once and read-only afterwards.
type ProjectedEllipse struct {
	Center    [2]float64
	SemiMajor float64
	SemiMinor float64
	Tilt      float64
}

// Project maps the 3D ellipse onto the page plane using the gnomonic
// projection's Jacobian at the ellipse center. The second return value is
// false when the center is behind the camera plane.
func (el Ellipse3) Project(vt ViewTransform) (ProjectedEllipse, bool) {
	center := vt.ToCamera(el.Center)
	major := vt.ToCamera(el.Major)
	minor := vt.ToCamera(el.Minor)
	z := center[2]
	if math.Abs(z) < vecε {
		z = math.Copysign(vecε, z)
	}
	cx := -center[0] / z * vt.Scale
	cy := -center[1] / z * vt.Scale
	jac := func(u []float64) (float64, float64) {
		px := (-u[0]/z + center[0]*u[2]/(z*z)) * vt.Scale
		py := (-u[1]/z + center[1]*u[2]/(z*z)) * vt.Scale
		return px, py
	}
	ux, uy := jac(major)
	vx, vy := jac(minor)
	sxx := ux*ux + vx*vx
	sxy := ux*uy + vx*vy
	syy := uy*uy + vy*vy
	half := (sxx + syy) / 2
	disc := math.Sqrt(math.Max(0, half*half-(sxx*syy-sxy*sxy)))
	return ProjectedEllipse{
		Center:    [2]float64{cx, cy},
		SemiMajor: math.Sqrt(math.Max(0, half+disc)),
		SemiMinor: math.Sqrt(math.Max(0, half-disc)),
		Tilt:      0.5 * math.Atan2(2*sxy, sxx-syy),
	}, center[2] > 0
}
