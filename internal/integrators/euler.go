package integrators

import "github.com/san-kum/clothsim/internal/dynamo"

// Euler keeps an explicit velocity per point and advances positions with
// the trapezoidal average of the old and new velocity.
type Euler struct {
	vel []dynamo.Vec3
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Reset(rest []dynamo.Vec3) {
	if cap(e.vel) >= len(rest) {
		e.vel = e.vel[:len(rest)]
		clear(e.vel)
		return
	}
	e.vel = make([]dynamo.Vec3, len(rest))
}

func (e *Euler) Velocity(i int, _ dynamo.Vec3) dynamo.Vec3 {
	return e.vel[i]
}

func (e *Euler) Advance(i int, pos, acc dynamo.Vec3, dt float64) dynamo.Vec3 {
	old := e.vel[i]
	next := old.Add(acc.Scale(dt))
	e.vel[i] = next
	return pos.Add(old.Add(next).Scale(dt / 2))
}

func (e *Euler) Constrain(i int, _ dynamo.Vec3, n dynamo.Vec3) {
	if vn := e.vel[i].Dot(n); vn < 0 {
		e.vel[i] = e.vel[i].Sub(n.Scale(vn))
	}
}

func (e *Euler) Hold(i int, _ dynamo.Vec3) {
	e.vel[i] = dynamo.Zero3
}

// Limit sets the velocity to the displacement actually taken, so a clamped
// point cannot keep accelerating.
func (e *Euler) Limit(i int, from, to dynamo.Vec3, dt float64) {
	e.vel[i] = to.Sub(from).Scale(1 / dt)
}

func (e *Euler) Commit(float64) {}
