package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// KineticEnergy reports the kinetic energy of the last observed frame,
// assuming a uniform point mass.
type KineticEnergy struct {
	name    string
	mass    float64
	last    float64
	peak    float64
	samples int
}

func NewKineticEnergy(mass float64) *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy", mass: mass}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(f dynamo.Frame) {
	var e float64
	for _, v := range f.Velocities {
		e += 0.5 * k.mass * v.Len2()
	}
	k.last = e
	k.peak = math.Max(k.peak, e)
	k.samples++
}

func (k *KineticEnergy) Value() float64 { return k.last }

// Peak is the largest kinetic energy seen since the last reset.
func (k *KineticEnergy) Peak() float64 { return k.peak }

func (k *KineticEnergy) Reset() {
	k.last = 0
	k.peak = 0
	k.samples = 0
}

// EnergySource is implemented by bodies that can report total energy.
type EnergySource interface {
	Energy() float64
}

type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
	src           EnergySource
}

func NewEnergyDrift(src EnergySource) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		src:  src,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(dynamo.Frame) {
	energy := e.src.Energy()

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
