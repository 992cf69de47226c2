package integrators

import "github.com/san-kum/clothsim/internal/dynamo"

// Verlet is a position-only scheme. Velocity is implicit in the difference
// between the current and the previous position, and the previous step
// length is tracked so variable dt stays consistent.
type Verlet struct {
	last   []dynamo.Vec3
	lastDt float64
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Reset(rest []dynamo.Vec3) {
	v.last = append(v.last[:0], rest...)
	v.lastDt = 0
}

// Velocity is zero until the first step has been committed.
func (v *Verlet) Velocity(i int, pos dynamo.Vec3) dynamo.Vec3 {
	if v.lastDt == 0 {
		return dynamo.Zero3
	}
	return pos.Sub(v.last[i]).Scale(1 / v.lastDt)
}

func (v *Verlet) Advance(i int, pos, acc dynamo.Vec3, dt float64) dynamo.Vec3 {
	ratio := 1.0
	if v.lastDt != 0 {
		ratio = dt / v.lastDt
	}
	next := pos.Add(pos.Sub(v.last[i]).Scale(ratio)).Add(acc.Scale(dt * dt))
	v.last[i] = pos
	return next
}

// Constrain moves the trailing position so the implied velocity no longer
// points against n.
func (v *Verlet) Constrain(i int, pos, n dynamo.Vec3) {
	d := pos.Sub(v.last[i])
	if dn := d.Dot(n); dn < 0 {
		v.last[i] = pos.Sub(d.Sub(n.Scale(dn)))
	}
}

func (v *Verlet) Hold(i int, pos dynamo.Vec3) {
	v.last[i] = pos
}

// Limit is a no-op: the trailing position is already from, so the next
// step infers its velocity from the shortened move.
func (v *Verlet) Limit(int, dynamo.Vec3, dynamo.Vec3, float64) {}

func (v *Verlet) Commit(dt float64) {
	v.lastDt = dt
}
