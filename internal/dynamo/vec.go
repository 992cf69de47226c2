package dynamo

import "math"

// Epsilon is the threshold below which a scalar is treated as zero.
const Epsilon = 1e-6

// IsZero reports whether |x| <= Epsilon.
func IsZero(x float64) bool {
	return math.Abs(x) <= Epsilon
}

// Vec3 is a 3D vector in world space. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

var (
	Zero3 = Vec3{}
	Up    = Vec3{Y: 1}
)

func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}
func (v Vec3) Neg() Vec3          { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len2() float64      { return v.Dot(v) }
func (v Vec3) Len() float64       { return math.Sqrt(v.Len2()) }

// Dist returns the Euclidean distance between v and o.
func (v Vec3) Dist(o Vec3) float64 { return o.Sub(v).Len() }

// Normalize returns the unit vector along v, or the zero vector when v is
// (numerically) zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if IsZero(l) {
		return Zero3
	}
	return v.Scale(1 / l)
}

// ClampLen returns v scaled down so that |v| <= max. A non-positive max
// returns v unchanged.
func (v Vec3) ClampLen(max float64) Vec3 {
	if max <= 0 {
		return v
	}
	l := v.Len()
	if l <= max {
		return v
	}
	return v.Scale(max / l)
}

// IsFinite reports whether no component is NaN or Inf.
func (v Vec3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual compares componentwise within tol.
func (v Vec3) ApproxEqual(o Vec3, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol && math.Abs(v.Y-o.Y) <= tol && math.Abs(v.Z-o.Z) <= tol
}
