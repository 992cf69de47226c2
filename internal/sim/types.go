package sim

import "github.com/san-kum/clothsim/internal/dynamo"

// Body is anything the driver can step. *cloth.Body satisfies it.
type Body interface {
	Step(dt float64) error
	Frame() dynamo.Frame
}

// EnergyComputer is implemented by bodies that report their total energy.
type EnergyComputer interface {
	Energy() float64
}

type Config struct {
	Dt       float64
	Duration float64

	// RecordEvery keeps every n-th frame in the result; 0 or 1 keeps all.
	// The initial and final frames are always kept.
	RecordEvery int

	ValidateState bool
}

type Result struct {
	Frames      []dynamo.Frame
	Times       []float64
	StepsTaken  int
	Metrics     map[string]float64
	Errors      []error
	EnergyDrift float64
}

// Final returns the last recorded frame.
func (r *Result) Final() dynamo.Frame {
	if len(r.Frames) == 0 {
		return dynamo.Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}
