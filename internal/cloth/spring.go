package cloth

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/topology"
)

// Spring connects two points by index. It never holds a reference to the
// body; positions and velocities are passed into every query.
type Spring struct {
	A, B int
	Kind topology.Kind
	Rest float64
	Ks   float64
	Kd   float64
}

// NewSpring measures the rest length from positions. Endpoints must differ,
// be in range and not coincide.
func NewSpring(a, b int, kind topology.Kind, positions []dynamo.Vec3, ks, kd float64) (Spring, error) {
	n := len(positions)
	if a == b || a < 0 || b < 0 || a >= n || b >= n {
		return Spring{}, fmt.Errorf("%w: spring (%d,%d) over %d points", dynamo.ErrInvalidTopology, a, b, n)
	}
	rest := positions[a].Dist(positions[b])
	if !(rest > 0) {
		return Spring{}, fmt.Errorf("%w: spring (%d,%d) has zero rest length", dynamo.ErrInvalidTopology, a, b)
	}
	return Spring{A: a, B: b, Kind: kind, Rest: rest, Ks: ks, Kd: kd}, nil
}

func (s Spring) Length(pos []dynamo.Vec3) float64 {
	return pos[s.A].Dist(pos[s.B])
}

// Other returns the opposite endpoint of idx, or -1 when idx is not an endpoint.
func (s Spring) Other(idx int) int {
	switch idx {
	case s.A:
		return s.B
	case s.B:
		return s.A
	}
	return -1
}

// Force returns the force the spring exerts on endpoint idx. vel may be nil
// for the Linear model. Coincident endpoints yield the zero vector.
func (s Spring) Force(idx int, pos, vel []dynamo.Vec3, model ForceModel) dynamo.Vec3 {
	other := s.Other(idx)
	if other < 0 {
		return dynamo.Zero3
	}

	d := pos[idx].Sub(pos[other])
	length := d.Len()
	if length <= dynamo.Epsilon {
		return dynamo.Zero3
	}
	u := d.Scale(1 / length)
	stretch := length - s.Rest

	switch model {
	case Linear:
		return u.Scale(-s.Ks * stretch)
	case SpringDamper:
		if length <= s.Rest {
			return dynamo.Zero3
		}
		var along float64
		if vel != nil {
			along = vel[idx].Sub(vel[other]).Dot(u)
		}
		return u.Scale(-(s.Ks*stretch + s.Kd*along))
	}
	return dynamo.Zero3
}

// Energy is the elastic energy stored in the spring under model.
func (s Spring) Energy(pos []dynamo.Vec3, model ForceModel) float64 {
	stretch := s.Length(pos) - s.Rest
	if model == SpringDamper && stretch <= 0 {
		return 0
	}
	return 0.5 * s.Ks * stretch * stretch
}
