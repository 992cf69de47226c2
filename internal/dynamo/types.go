package dynamo

import "fmt"

// Frame is a consistent snapshot of every point after a completed step.
type Frame struct {
	Step       int
	Time       float64
	Positions  []Vec3
	Velocities []Vec3
}

func (f Frame) Clone() Frame {
	c := Frame{Step: f.Step, Time: f.Time}
	c.Positions = append([]Vec3(nil), f.Positions...)
	c.Velocities = append([]Vec3(nil), f.Velocities...)
	return c
}

// IsValid reports whether every coordinate in the frame is finite.
func (f Frame) IsValid() bool {
	for _, p := range f.Positions {
		if !p.IsFinite() {
			return false
		}
	}
	for _, v := range f.Velocities {
		if !v.IsFinite() {
			return false
		}
	}
	return true
}

// Integrator advances point state from acceleration to position. The
// integrator owns whatever history it needs (velocities for Euler, the
// trailing position snapshot for Verlet); the body owns current positions.
type Integrator interface {
	Name() string

	// Reset sizes the integrator for len(rest) points starting at rest.
	Reset(rest []Vec3)

	// Velocity returns the velocity of point i whose current position is pos.
	Velocity(i int, pos Vec3) Vec3

	// Advance returns the next position of point i and records whatever
	// history the scheme needs.
	Advance(i int, pos, acc Vec3, dt float64) Vec3

	// Constrain removes the velocity component of point i (now at pos)
	// that points against the unit normal n.
	Constrain(i int, pos, n Vec3)

	// Hold zeroes the velocity of point i, which now sits at pos.
	Hold(i int, pos Vec3)

	// Limit replaces the last Advance of point i with a move from one
	// position to another over dt, after the body shortened it.
	Limit(i int, from, to Vec3, dt float64)

	// Commit closes a step of length dt once every point has advanced.
	Commit(dt float64)
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Wrapped }
