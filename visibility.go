package planetview

import (
	"fmt"
	"sort"

	"github.com/gonum/matrix/mat64"
)

const (
	// scanSteps is the resolution of the boolean state scan used to find
	// tangent-cone crossings that the plane roots do not produce.
	scanSteps = 256
	// cutTolε is the bisection tolerance on cut angles, in radians.
	cutTolε = 1e-12
	// ringFlatten is the relative thickness of the flat ellipsoid an
	// opaque ring system is re-modeled as for occlusion.
	ringFlatten = 1e-6
)

// SegState classifies one angular segment of a drawn curve.
type SegState uint8

const (
	SegVisible SegState = iota
	SegHiddenBehindBody
	SegHiddenInShadow
	SegOutsideArc
)

func (s SegState) String() string {
	switch s {
	case SegVisible:
		return "visible"
	case SegHiddenBehindBody:
		return "hidden"
	case SegHiddenInShadow:
		return "shadow"
	case SegOutsideArc:
		return "off-arc"
	}
	return fmt.Sprintf("SegState(%d)", uint8(s))
}

// AngularSegment is one piece of the [0, 2π) parameter interval of a curve,
// with Start <= End. A resolved curve is a contiguous ordered slice of
// these whose lengths sum to 2π exactly.
type AngularSegment struct {
	Start, End float64
	State      SegState
}

// Mid returns the midpoint angle of the segment.
func (a AngularSegment) Mid() float64 { return 0.5 * (a.Start + a.End) }

// Len returns the angular length of the segment.
func (a AngularSegment) Len() float64 { return a.End - a.Start }

// PartitionSpan sums segment lengths. A valid partition spans 2π.
func PartitionSpan(segs []AngularSegment) float64 {
	var total float64
	for _, s := range segs {
		total += s.Len()
	}
	return total
}

// occluder caches the quadric data needed to test whether a point is
// hidden behind one body: with the observer at the origin and S the
// quadric polynomial of the body, a point x is hidden when it lies on the
// far side of the limb plane h(x) = m - xᵀQc = 0 and inside the tangent
// cone h(x)² - m·g(x) >= 0, where g is the surface polynomial and
// m = cᵀQc - 1 > 0 for an observer outside the body.
type occluder struct {
	idx    int
	center []float64
	q      *mat64.Dense
	qc     []float64
	m      float64
}

func newOccluder(idx int, body Ellipsoid) occluder {
	q := body.quadric()
	qc := MxV33(q, body.Center)
	return occluder{
		idx:    idx,
		center: body.Center,
		q:      q,
		qc:     qc,
		m:      dot(body.Center, qc) - 1,
	}
}

func (o occluder) hides(x []float64) bool {
	h := o.m - dot(x, o.qc)
	if h > 0 {
		// observer side of the limb plane
		return false
	}
	d := vsub(x, o.center)
	g := qform(o.q, d, d) - 1
	return h*h-o.m*g >= 0
}

// hidesDirection is the t -> infinity limit of hides along the ray t*d:
// a star in direction d is hidden when the ray points into the far half
// space and stays inside the tangent cone.
func (o occluder) hidesDirection(d []float64) bool {
	a := dot(d, o.qc)
	if a <= 0 {
		return false
	}
	return a*a >= o.m*qform(o.q, d, d)
}

// umbra caches one (light, body) umbral cone.
type umbra struct {
	body  int
	light int
	term  Ellipse3
	cone  ShadowCone
}

// Resolver holds the per-scene occlusion and shadow precomputation: one
// limb and tangent-cone test per body, one umbral cone per (light, body)
// pair that casts one, and one flat-ellipsoid occluder per opaque ring
// system. Built once per scene, then queried per curve.
type Resolver struct {
	scene   *Scene
	occ     []occluder
	ringOcc []occluder
	limbs   []Ellipse3
	limbOK  []bool
	umbras  []umbra
}

// NewResolver precomputes limbs, tangent cones and umbral cones for the
// scene. The scene must already have passed Validate.
func NewResolver(s *Scene) (*Resolver, error) {
	r := &Resolver{
		scene:  s,
		occ:    make([]occluder, len(s.Bodies)),
		limbs:  make([]Ellipse3, len(s.Bodies)),
		limbOK: make([]bool, len(s.Bodies)),
	}
	for i, b := range s.Bodies {
		if _, err := b.Limb(); err != nil {
			return nil, err
		}
		r.occ[i] = newOccluder(i, b)
		r.limbs[i], r.limbOK[i] = b.limbFrom([]float64{0, 0, 0})
	}
	for li, light := range s.Lights {
		for bi, b := range s.Bodies {
			term, cone, ok := b.Terminator(light)
			if !ok {
				continue
			}
			r.umbras = append(r.umbras, umbra{body: bi, light: li, term: term, cone: cone})
		}
	}
	// the outermost opaque ring of each body, re-modeled as a flat
	// ellipsoid spanning the whole ring system, hides bodies and stars
	// behind it; ring arcs are too sparse to block anything
	outermost := make(map[int]int)
	for ri, ring := range s.Rings {
		if ring.Opacity != RingOpaque || ring.HasArc {
			continue
		}
		if cur, ok := outermost[ring.Body]; !ok || ring.Outer > s.Rings[cur].Outer {
			outermost[ring.Body] = ri
		}
	}
	for bi := range s.Bodies {
		ri, ok := outermost[bi]
		if !ok {
			continue
		}
		ring := s.Rings[ri]
		disk := NewOrientedEllipsoid(ring.Name, ring.Center, ring.Normal,
			[3]float64{ring.Outer, ring.Outer, ring.Outer * ringFlatten})
		if disk.Contains([]float64{0, 0, 0}) {
			// observer in the ring material, nothing sensible to occlude
			continue
		}
		r.ringOcc = append(r.ringOcc, newOccluder(ri, disk))
	}
	return r, nil
}

// Limb returns body bi's precomputed limb ellipse.
func (r *Resolver) Limb(bi int) (Ellipse3, bool) {
	return r.limbs[bi], r.limbOK[bi]
}

// Lit reports whether the surface of body bi faces at least one light at
// the surface point x. The outward normal is the quadric gradient Q(x-c).
func (r *Resolver) Lit(bi int, x []float64) bool {
	o := r.occ[bi]
	n := MxV33(o.q, vsub(x, o.center))
	for _, light := range r.scene.Lights {
		if dot(n, vsub(light.Pos, x)) > 0 {
			return true
		}
	}
	return len(r.scene.Lights) == 0
}

// DirectionHidden reports whether a body or an opaque ring blocks the
// line of sight toward the given direction, the at-infinity occlusion
// test used for stars.
func (r *Resolver) DirectionHidden(d []float64) bool {
	for i := range r.occ {
		if r.occ[i].hidesDirection(d) {
			return true
		}
	}
	for i := range r.ringOcc {
		if r.ringOcc[i].hidesDirection(d) {
			return true
		}
	}
	return false
}

// hiddenBy reports whether any body other than skip hides the point.
func (r *Resolver) hiddenBy(x []float64, skip int) bool {
	for i := range r.occ {
		if i == skip {
			continue
		}
		if r.occ[i].hides(x) {
			return true
		}
	}
	return false
}

// ringHidden reports whether an opaque ring disk hides the point.
func (r *Resolver) ringHidden(x []float64) bool {
	for i := range r.ringOcc {
		if r.ringOcc[i].hides(x) {
			return true
		}
	}
	return false
}

// shadowed reports whether the point is inside any umbral cone cast by a
// body other than skip.
func (r *Resolver) shadowed(x []float64, skip int) bool {
	for _, u := range r.umbras {
		if u.body == skip {
			continue
		}
		if u.cone.InShadow(x, r.scene.Lights[u.light]) {
			return true
		}
	}
	return false
}

// arcInterval is an effective ring arc longitude window, already
// corotated to the scene epoch.
type arcInterval struct {
	start, span float64
}

func (a arcInterval) contains(θ float64) bool {
	return mod2π(θ-a.start) <= a.span
}

// resolveSpec says which tests apply to one curve: skipOcc excludes a
// body from the occlusion test (a limb never hides itself), skipShadow
// excludes a body's own umbra (surface curves are classified lit or unlit
// by the terminator, not by the body's own shadow cone), and rings says
// whether opaque ring disks occlude the curve (they never occlude ring
// boundary curves, which lie in the disk themselves).
type resolveSpec struct {
	skipOcc    int
	skipShadow int
	rings      bool
	arc        *arcInterval
}

// classify returns the segment state of a single curve point.
func (r *Resolver) classify(el Ellipse3, θ float64, spec resolveSpec) SegState {
	if spec.arc != nil && !spec.arc.contains(θ) {
		return SegOutsideArc
	}
	x := el.Point(θ)
	if r.hiddenBy(x, spec.skipOcc) {
		return SegHiddenBehindBody
	}
	if spec.rings && r.ringHidden(x) {
		return SegHiddenBehindBody
	}
	if r.shadowed(x, spec.skipShadow) {
		return SegHiddenInShadow
	}
	return SegVisible
}

// planeCuts collects the exact angles where the curve crosses every limb
// plane and terminator plane that participates in classification. These
// are the dominant state boundaries; lateral tangent-cone crossings are
// caught by the scan in resolve.
func (r *Resolver) planeCuts(el Ellipse3, spec resolveSpec) []float64 {
	var cuts []float64
	for i, o := range r.occ {
		if i == spec.skipOcc {
			continue
		}
		// limb plane: m - xᵀQc = 0
		cuts = append(cuts, planeEllipseAngles(el, o.qc, o.m)...)
	}
	if spec.rings {
		for _, o := range r.ringOcc {
			cuts = append(cuts, planeEllipseAngles(el, o.qc, o.m)...)
		}
	}
	for _, u := range r.umbras {
		if u.body == spec.skipShadow {
			continue
		}
		cuts = append(cuts, planeEllipseAngles(el, u.term.Normal, u.term.PlaneConst())...)
	}
	return cuts
}

// refineCut bisects a state change bracketed by [lo, hi] down to cutTolε.
// The left state is sampled once and the boundary tracked against it.
func (r *Resolver) refineCut(el Ellipse3, lo, hi float64, spec resolveSpec) float64 {
	left := r.classify(el, lo, spec)
	for hi-lo > cutTolε {
		mid := 0.5 * (lo + hi)
		if r.classify(el, mid, spec) == left {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// resolve partitions [0, 2π) for one curve. Cut angles come from three
// sources: arc limits, exact plane-crossing roots, and a fixed-step scan
// of the classification with bisection refinement. The returned segments
// are contiguous, start at 0 and end at 2π, and adjacent equal-state
// segments are merged.
func (r *Resolver) resolve(el Ellipse3, spec resolveSpec) []AngularSegment {
	cuts := r.planeCuts(el, spec)
	if spec.arc != nil {
		cuts = append(cuts, spec.arc.start, mod2π(spec.arc.start+spec.arc.span))
	}
	step := twoπ / scanSteps
	prev := r.classify(el, 0, spec)
	for i := 1; i <= scanSteps; i++ {
		θ := float64(i) * step
		cur := r.classify(el, θ, spec)
		if cur != prev {
			cuts = append(cuts, r.refineCut(el, θ-step, θ, spec))
			prev = cur
		}
	}

	for i, c := range cuts {
		cuts[i] = mod2π(c)
	}
	cuts = append(cuts, 0)
	sort.Float64s(cuts)
	// dedupe near-equal cuts, then close the partition at 2π
	uniq := cuts[:1]
	for _, c := range cuts[1:] {
		if c-uniq[len(uniq)-1] > cutTolε {
			uniq = append(uniq, c)
		}
	}
	if twoπ-uniq[len(uniq)-1] <= cutTolε {
		uniq = uniq[:len(uniq)-1]
	}
	uniq = append(uniq, twoπ)

	segs := make([]AngularSegment, 0, len(uniq)-1)
	for i := 0; i+1 < len(uniq); i++ {
		seg := AngularSegment{Start: uniq[i], End: uniq[i+1]}
		seg.State = r.classify(el, seg.Mid(), spec)
		if n := len(segs); n > 0 && segs[n-1].State == seg.State {
			segs[n-1].End = seg.End
			continue
		}
		segs = append(segs, seg)
	}
	return segs
}

// ResolveLimb partitions body bi's limb. The body's own tangent cone and
// umbra are excluded; every other scene body can hide or shadow it. The
// second return is false when the limb is degenerate (observer on the
// surface), in which case no segments are produced.
func (r *Resolver) ResolveLimb(bi int) (Ellipse3, []AngularSegment, bool) {
	if !r.limbOK[bi] {
		return Ellipse3{}, nil, false
	}
	el := r.limbs[bi]
	return el, r.resolve(el, resolveSpec{skipOcc: bi, skipShadow: bi, rings: true}), true
}

// ResolveTerminator partitions body bi's terminator for light li. Unlike
// the limb, the body's own tangent cone applies: the far half of the
// terminator hides behind the body itself. Returns false when the light
// does not cast a terminator on the body.
func (r *Resolver) ResolveTerminator(bi, li int) (Ellipse3, []AngularSegment, bool) {
	term, _, ok := r.scene.Bodies[bi].Terminator(r.scene.Lights[li])
	if !ok {
		return Ellipse3{}, nil, false
	}
	return term, r.resolve(term, resolveSpec{skipOcc: -1, skipShadow: bi, rings: true}), true
}

// ResolveSurfaceCurve partitions a curve lying on body bi's surface, a
// meridian or a circle of latitude. The same rules as a terminator
// apply: the body's own tangent cone hides the far half, its own umbra
// is skipped.
func (r *Resolver) ResolveSurfaceCurve(bi int, el Ellipse3) []AngularSegment {
	return r.resolve(el, resolveSpec{skipOcc: -1, skipShadow: bi, rings: true})
}

// ResolveRingBoundary partitions one boundary circle of ring ri at the
// given radius. All bodies occlude and all umbras shadow a ring; arc
// limits, corotated to the scene epoch, mark the off-arc longitudes.
func (r *Resolver) ResolveRingBoundary(ri int, radius float64) (Ellipse3, []AngularSegment) {
	ring := r.scene.Rings[ri]
	el := ring.boundary(radius, r.scene.ElapsedSec)
	spec := resolveSpec{skipOcc: -1, skipShadow: -1}
	if ring.HasArc {
		start, stop := ring.arcLimits(r.scene.ElapsedSec)
		span := mod2π(stop - start)
		if span == 0 {
			span = twoπ
		}
		spec.arc = &arcInterval{start: start, span: span}
	}
	return el, r.resolve(el, spec)
}

// SplitAt subdivides segments at the given extra angles without changing
// any state, so callers can restyle pieces of a visible segment (lit
// versus unlit limb arcs). The partition invariant is preserved.
func SplitAt(segs []AngularSegment, angles []float64) []AngularSegment {
	if len(angles) == 0 {
		return segs
	}
	θs := make([]float64, 0, len(angles))
	for _, a := range angles {
		θs = append(θs, mod2π(a))
	}
	sort.Float64s(θs)
	out := make([]AngularSegment, 0, len(segs)+len(θs))
	for _, seg := range segs {
		for _, θ := range θs {
			if θ > seg.Start+cutTolε && θ < seg.End-cutTolε {
				out = append(out, AngularSegment{Start: seg.Start, End: θ, State: seg.State})
				seg.Start = θ
			}
		}
		out = append(out, seg)
	}
	return out
}
