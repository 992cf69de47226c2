package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/clothsim/internal/dynamo"
)

func frameWith(pos, vel []dynamo.Vec3) dynamo.Frame {
	return dynamo.Frame{Positions: pos, Velocities: vel}
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy(0.5)

	m.Observe(frameWith(nil, []dynamo.Vec3{dynamo.V3(2, 0, 0), dynamo.V3(0, 0, 0)}))
	if got := m.Value(); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("expected energy 1.0, got %f", got)
	}

	m.Observe(frameWith(nil, []dynamo.Vec3{dynamo.V3(0, 1, 0)}))
	if got := m.Value(); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("expected energy 0.25, got %f", got)
	}
	if m.Peak() != 1.0 {
		t.Errorf("expected peak 1.0, got %f", m.Peak())
	}

	m.Reset()
	if m.Value() != 0 || m.Peak() != 0 {
		t.Error("expected zero energy after reset")
	}
}

type fixedEnergy struct{ e []float64 }

func (f *fixedEnergy) Energy() float64 {
	e := f.e[0]
	if len(f.e) > 1 {
		f.e = f.e[1:]
	}
	return e
}

func TestEnergyDrift(t *testing.T) {
	src := &fixedEnergy{e: []float64{10, 11, 9.5, 10}}
	m := NewEnergyDrift(src)

	for i := 0; i < 4; i++ {
		m.Observe(dynamo.Frame{})
	}
	if got := m.Value(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected max drift 0.1, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestStability(t *testing.T) {
	m := NewStability(5)
	if m.Value() != 1 {
		t.Errorf("empty stability = %f", m.Value())
	}

	m.Observe(frameWith([]dynamo.Vec3{dynamo.V3(1, 2, 3)}, nil))
	m.Observe(frameWith([]dynamo.Vec3{dynamo.V3(1, 9, 3)}, nil))
	m.Observe(frameWith([]dynamo.Vec3{dynamo.V3(math.NaN(), 0, 0)}, nil))
	m.Observe(frameWith([]dynamo.Vec3{dynamo.V3(0, 0, 0)}, nil))

	if got := m.Value(); got != 0.5 {
		t.Errorf("expected stability 0.5, got %f", got)
	}
}

func TestSag(t *testing.T) {
	m := NewSag([]int{1})

	m.Observe(frameWith([]dynamo.Vec3{dynamo.V3(0, 5, 0), dynamo.V3(0, 4, 0)}, nil))
	m.Observe(frameWith([]dynamo.Vec3{dynamo.V3(0, 0, 0), dynamo.V3(0, 3, 0)}, nil))
	m.Observe(frameWith([]dynamo.Vec3{dynamo.V3(0, 0, 0), dynamo.V3(0, 3.5, 0)}, nil))

	if got := m.Value(); got != 1 {
		t.Errorf("expected max sag 1, got %f", got)
	}
	if got := m.Current(); got != 0.5 {
		t.Errorf("expected current sag 0.5, got %f", got)
	}

	all := NewSag(nil)
	all.Observe(frameWith([]dynamo.Vec3{dynamo.V3(0, 5, 0), dynamo.V3(0, 4, 0)}, nil))
	all.Observe(frameWith([]dynamo.Vec3{dynamo.V3(0, 2, 0), dynamo.V3(0, 4, 0)}, nil))
	if got := all.Value(); got != 3 {
		t.Errorf("expected sag 3 over all points, got %f", got)
	}
}

func TestPeakSpeed(t *testing.T) {
	m := NewPeakSpeed()
	m.Observe(frameWith(nil, []dynamo.Vec3{dynamo.V3(3, 4, 0), dynamo.V3(1, 0, 0)}))
	m.Observe(frameWith(nil, []dynamo.Vec3{dynamo.V3(0, 1, 0)}))
	if m.Value() != 5 {
		t.Errorf("expected peak 5, got %f", m.Value())
	}
}
