package planetview

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const (
	deg2rad = math.Pi / 180
	twoπ    = 2 * math.Pi
	// vecε is the magnitude below which a vector is treated as the zero
	// vector. Downstream code never divides by a norm smaller than this.
	vecε = 1e-12
)

// norm returns the norm of a given vector which is supposed to be 3x1.
func norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// unit returns the unit vector of a given vector, or the zero vector when
// the input's magnitude is below vecε.
func unit(a []float64) (b []float64) {
	n := norm(a)
	if floats.EqualWithinAbs(n, 0, vecε) {
		return []float64{0, 0, 0}
	}
	b = make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if floats.EqualWithinAbs(v, 0, vecε) {
		return 1
	}
	return v / math.Abs(v)
}

// opsgnd returns whether a and b have strictly opposite signs.
func opsgnd(a, b float64) bool {
	return (a > 0 && b < 0) || (a < 0 && b > 0)
}

// dot performs the inner product.
func dot(a, b []float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// cross performs the cross product.
func cross(a, b []float64) []float64 {
	return []float64{a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]}
}

// crossUnit returns the normalized cross product, or the zero vector when
// the inputs are near parallel (the cross product's magnitude is below vecε).
func crossUnit(a, b []float64) []float64 {
	return unit(cross(a, b))
}

// vsub returns a-b.
func vsub(a, b []float64) []float64 {
	return []float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// vadd returns a+b.
func vadd(a, b []float64) []float64 {
	return []float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// vscl returns s*v.
func vscl(s float64, v []float64) []float64 {
	return []float64{s * v[0], s * v[1], s * v[2]}
}

// vlcom returns the linear combination a*v1 + b*v2.
func vlcom(a float64, v1 []float64, b float64, v2 []float64) []float64 {
	return []float64{a*v1[0] + b*v2[0], a*v1[1] + b*v2[1], a*v1[2] + b*v2[2]}
}

// vsep returns the angular separation between two vectors in radians.
// The cosine is clamped to [-1, 1] so floating-point overshoot near
// parallel or antiparallel vectors cannot produce a NaN. Zero-magnitude
// inputs yield a zero separation.
func vsep(a, b []float64) float64 {
	ha := unit(a)
	hb := unit(b)
	d := dot(ha, hb)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d)
}

// vrotv rotates vector v about axis by the given angle in radians
// (Rodrigues rotation). A near-zero axis returns v unchanged.
func vrotv(v, axis []float64, angle float64) []float64 {
	ax := unit(axis)
	if norm(ax) == 0 {
		return []float64{v[0], v[1], v[2]}
	}
	sa, ca := math.Sincos(angle)
	d := dot(v, ax)
	cr := cross(ax, v)
	out := make([]float64, 3)
	for i := 0; i < 3; i++ {
		out[i] = v[i]*ca + cr[i]*sa + ax[i]*d*(1-ca)
	}
	return out
}

// frame builds a right-handed orthonormal frame whose first axis is along x.
// The remaining two axes are picked deterministically from the smallest
// component of x, so repeated calls with the same input give the same frame.
func frame(x []float64) (xh, y, z []float64) {
	xh = unit(x)
	ax, ay, az := math.Abs(xh[0]), math.Abs(xh[1]), math.Abs(xh[2])
	var ref []float64
	switch {
	case ax <= ay && ax <= az:
		ref = []float64{1, 0, 0}
	case ay <= ax && ay <= az:
		ref = []float64{0, 1, 0}
	default:
		ref = []float64{0, 0, 1}
	}
	y = unit(cross(xh, ref))
	z = cross(xh, y)
	return
}

// R1 rotation about the 1st axis.
func R1(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m *mat64.Dense, v []float64) []float64 {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m, vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}

// MtxV33 multiplies the transpose of a matrix with a vector.
func MtxV33(m *mat64.Dense, v []float64) []float64 {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m.T(), vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, twoπ)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += twoπ
	}
	return math.Mod(a/deg2rad, 360)
}

// mod2π maps an angle to [0, 2π).
func mod2π(θ float64) float64 {
	θ = math.Mod(θ, twoπ)
	if θ < 0 {
		θ += twoπ
	}
	return θ
}
