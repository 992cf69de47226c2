package cloth

import "github.com/san-kum/clothsim/internal/dynamo"

// KineticEnergy is sum(0.5*m*|v|^2) over free points.
func (b *Body) KineticEnergy() float64 {
	var e float64
	for i, v := range b.Velocities() {
		e += 0.5 * b.points[i].Mass * v.Len2()
	}
	return e
}

// ElasticEnergy sums the energy stored in every spring under the body's
// force model.
func (b *Body) ElasticEnergy() float64 {
	var e float64
	for _, s := range b.springs {
		e += s.Energy(b.pos, b.params.ForceModel)
	}
	return e
}

// PotentialEnergy is the gravitational energy relative to the origin.
func (b *Body) PotentialEnergy() float64 {
	var e float64
	for i, p := range b.pos {
		e -= b.points[i].Mass * b.params.Gravity.Dot(p)
	}
	return e
}

func (b *Body) Energy() float64 {
	return b.KineticEnergy() + b.ElasticEnergy() + b.PotentialEnergy()
}

// Centroid returns the mean position of all points.
func (b *Body) Centroid() dynamo.Vec3 {
	var c dynamo.Vec3
	for _, p := range b.pos {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(b.pos)))
}
