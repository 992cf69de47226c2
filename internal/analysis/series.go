package analysis

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/dynamo"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x":
		return AxisX, nil
	case "", "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("%w: axis %q", dynamo.ErrUnknownName, s)
}

func (a Axis) Of(v dynamo.Vec3) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisZ:
		return v.Z
	}
	return v.Y
}

// Trace is one coordinate of one point over a run.
type Trace struct {
	Times    []float64
	Position []float64
	Velocity []float64 // nil when the frames carry no velocities
}

// PointTrace extracts the axis component of point idx from every frame.
func PointTrace(frames []dynamo.Frame, idx int, axis Axis) (Trace, error) {
	tr := Trace{
		Times:    make([]float64, 0, len(frames)),
		Position: make([]float64, 0, len(frames)),
	}
	withVel := len(frames) > 0
	for _, f := range frames {
		if idx < 0 || idx >= len(f.Positions) {
			return Trace{}, fmt.Errorf("%w: point %d outside frame of %d", dynamo.ErrInvalidState, idx, len(f.Positions))
		}
		withVel = withVel && idx < len(f.Velocities)
	}
	if withVel {
		tr.Velocity = make([]float64, 0, len(frames))
	}
	for _, f := range frames {
		tr.Times = append(tr.Times, f.Time)
		tr.Position = append(tr.Position, axis.Of(f.Positions[idx]))
		if withVel {
			tr.Velocity = append(tr.Velocity, axis.Of(f.Velocities[idx]))
		}
	}
	return tr, nil
}

// WithVelocity fills in velocities by finite differences when the trace has
// none: central inside, one-sided at the ends.
func (tr Trace) WithVelocity() Trace {
	n := len(tr.Position)
	if tr.Velocity != nil || n < 2 {
		return tr
	}
	v := make([]float64, n)
	for i := range v {
		lo, hi := max(i-1, 0), min(i+1, n-1)
		if dt := tr.Times[hi] - tr.Times[lo]; dt > 0 {
			v[i] = (tr.Position[hi] - tr.Position[lo]) / dt
		}
	}
	tr.Velocity = v
	return tr
}
