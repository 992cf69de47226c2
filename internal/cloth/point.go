package cloth

import "github.com/san-kum/clothsim/internal/dynamo"

// Point is one mass node. Springs lists the indices of incident springs in
// the owning body's spring arena.
type Point struct {
	Index   int
	Mass    float64
	Pinned  bool
	Springs []int
}

// Acceleration sums gravity, wind, quadratic drag and every incident spring
// force, divides by mass and applies the ground contact clamp. Pinned points
// return zero.
func (p *Point) Acceleration(pos, vel []dynamo.Vec3, springs []Spring, prm *Params) dynamo.Vec3 {
	if p.Pinned {
		return dynamo.Zero3
	}

	force := prm.Gravity.Scale(p.Mass).Add(prm.Wind)
	force = force.Add(Drag(vel[p.Index], prm.AirResistance))
	for _, si := range p.Springs {
		force = force.Add(springs[si].Force(p.Index, pos, vel, prm.ForceModel))
	}

	acc := force.Scale(1 / p.Mass)
	if OnGround(pos[p.Index]) && acc.Y < 0 {
		acc.Y = 0
	}
	return acc
}

// Drag returns -c*|v|*v. A zero velocity gives zero drag.
func Drag(v dynamo.Vec3, c float64) dynamo.Vec3 {
	speed := v.Len()
	if speed == 0 || c == 0 {
		return dynamo.Zero3
	}
	return v.Scale(-c * speed)
}

// OnGround reports whether p rests on or below the ground plane.
func OnGround(p dynamo.Vec3) bool {
	return p.Y <= GroundEpsilon
}
