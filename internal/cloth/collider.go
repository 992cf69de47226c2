package cloth

import "github.com/san-kum/clothsim/internal/dynamo"

// Collider pushes a point out of a solid. Resolve returns the corrected
// position, the outward surface normal at it, and whether contact occurred.
type Collider interface {
	Resolve(p dynamo.Vec3) (dynamo.Vec3, dynamo.Vec3, bool)
}

// Ground is the y=0 plane. Every body resolves against it.
type Ground struct{}

func (Ground) Resolve(p dynamo.Vec3) (dynamo.Vec3, dynamo.Vec3, bool) {
	if p.Y > 0 {
		return p, dynamo.Zero3, false
	}
	p.Y = GroundEpsilon
	return p, dynamo.Up, true
}

type Sphere struct {
	Center dynamo.Vec3
	Radius float64
}

func (s Sphere) Resolve(p dynamo.Vec3) (dynamo.Vec3, dynamo.Vec3, bool) {
	d := p.Sub(s.Center)
	if d.Len() >= s.Radius {
		return p, dynamo.Zero3, false
	}
	n := d.Normalize()
	if n == dynamo.Zero3 {
		n = dynamo.Up
	}
	return s.Center.Add(n.Scale(s.Radius + GroundEpsilon)), n, true
}
