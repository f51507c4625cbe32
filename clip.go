package planetview

import "math"

const (
	// sagittaε bounds the chord-to-arc deviation of sampled curves, in
	// page units.
	sagittaε = 0.5
	// minArcSteps and maxArcSteps clamp the adaptive sample count for a
	// full revolution.
	minArcSteps = 8
	maxArcSteps = 2048
	// degenerateExtent is the bounding-box size, in page units, at or
	// below which a clipped path is dropped as invisible at plot scale.
	// Applies on both axes at once, so hairline-but-long paths survive.
	degenerateExtent = 1.0
)

// LineStyle selects the pen for one polyline.
type LineStyle struct {
	Width  float64 // linewidth in printer points
	Gray   float64 // 0 is black, 1 is white
	Dashed bool
	Dash   [2]float64 // on and off lengths in printer points
}

// Polyline is an open path in page coordinates, ready for clipping and
// emission. Closed curves carry an explicit repeated endpoint.
type Polyline struct {
	Points [][2]float64
	Style  LineStyle
}

// sampleSteps picks the sample count for a curve arc from the projected
// radius, so the chord sagitta stays under sagittaε at plot scale. The
// radius estimate is the page-space distance from the projected center to
// the projected major-axis endpoint.
func sampleSteps(el Ellipse3, vt ViewTransform, span float64) int {
	c, _ := vt.Project(vt.ToCamera(el.Center))
	tip, _ := vt.Project(vt.ToCamera(vadd(el.Center, el.Major)))
	ρ := math.Hypot(tip[0]-c[0], tip[1]-c[1])
	if ρ <= sagittaε {
		return minArcSteps
	}
	Δθ := 2 * math.Sqrt(2*sagittaε/ρ)
	n := int(math.Ceil(span / Δθ))
	if n < minArcSteps {
		return minArcSteps
	}
	if n > maxArcSteps {
		return maxArcSteps
	}
	return n
}

// sampleArc projects the curve over [seg.Start, seg.End] into page space.
// Points behind the camera plane split the path, so a single segment can
// yield several page paths but never a spurious chord across the view.
func sampleArc(el Ellipse3, vt ViewTransform, seg AngularSegment) [][][2]float64 {
	n := sampleSteps(el, vt, seg.Len())
	var paths [][][2]float64
	var cur [][2]float64
	for i := 0; i <= n; i++ {
		θ := seg.Start + seg.Len()*float64(i)/float64(n)
		pt, ok := vt.Project(vt.ToCamera(el.Point(θ)))
		if !ok {
			if len(cur) > 1 {
				paths = append(paths, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, pt)
	}
	if len(cur) > 1 {
		paths = append(paths, cur)
	}
	return paths
}

// clipper clips page paths against the rectangular field of view
// [-halfW, halfW] x [-halfH, halfH]. The boundary is inclusive.
type clipper struct {
	halfW, halfH float64
}

func newClipper(vt ViewTransform) clipper {
	return clipper{halfW: vt.HalfW, halfH: vt.HalfH}
}

// clipEdge clips open paths against one half-plane. Paths are split where
// they leave the kept side and resumed where they re-enter, with the exact
// boundary crossing appended to each piece.
func clipEdge(paths [][][2]float64, inside func([2]float64) bool, crossAt func(a, b [2]float64) [2]float64) [][][2]float64 {
	var out [][][2]float64
	for _, path := range paths {
		var cur [][2]float64
		for i, p := range path {
			if inside(p) {
				if i > 0 && !inside(path[i-1]) {
					cur = append(cur, crossAt(path[i-1], p))
				}
				cur = append(cur, p)
				continue
			}
			if i > 0 && inside(path[i-1]) {
				cur = append(cur, crossAt(path[i-1], p))
			}
			if len(cur) > 1 {
				out = append(out, cur)
			}
			cur = nil
		}
		if len(cur) > 1 {
			out = append(out, cur)
		}
	}
	return out
}

// lerpAt returns the point on segment ab where coordinate axis reaches
// bound.
func lerpAt(a, b [2]float64, axis int, bound float64) [2]float64 {
	t := (bound - a[axis]) / (b[axis] - a[axis])
	var p [2]float64
	p[axis] = bound
	other := 1 - axis
	p[other] = a[other] + t*(b[other]-a[other])
	return p
}

// clip returns the pieces of one page path inside the field of view.
func (c clipper) clip(path [][2]float64) [][][2]float64 {
	paths := [][][2]float64{path}
	paths = clipEdge(paths,
		func(p [2]float64) bool { return p[0] >= -c.halfW },
		func(a, b [2]float64) [2]float64 { return lerpAt(a, b, 0, -c.halfW) })
	paths = clipEdge(paths,
		func(p [2]float64) bool { return p[0] <= c.halfW },
		func(a, b [2]float64) [2]float64 { return lerpAt(a, b, 0, c.halfW) })
	paths = clipEdge(paths,
		func(p [2]float64) bool { return p[1] >= -c.halfH },
		func(a, b [2]float64) [2]float64 { return lerpAt(a, b, 1, -c.halfH) })
	paths = clipEdge(paths,
		func(p [2]float64) bool { return p[1] <= c.halfH },
		func(a, b [2]float64) [2]float64 { return lerpAt(a, b, 1, c.halfH) })
	return paths
}

// degenerate reports whether a clipped path collapses below plot
// resolution on both axes.
func degenerate(path [][2]float64) bool {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range path {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	return maxX-minX <= degenerateExtent && maxY-minY <= degenerateExtent
}

// clipPolylines clips each input path and rebuilds styled polylines,
// dropping pieces that are out of view or degenerate.
func (c clipper) clipPolylines(paths [][][2]float64, style LineStyle) []Polyline {
	var out []Polyline
	for _, path := range paths {
		for _, piece := range c.clip(path) {
			if len(piece) < 2 || degenerate(piece) {
				continue
			}
			out = append(out, Polyline{Points: piece, Style: style})
		}
	}
	return out
}
