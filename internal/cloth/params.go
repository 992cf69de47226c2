package cloth

import (
	"fmt"
	"math"

	"github.com/san-kum/clothsim/internal/dynamo"
)

const (
	DefaultMass          = 0.1
	DefaultStiffness     = 15.0
	DefaultDamping       = 0.96
	DefaultBendStiffness = 0.036
	DefaultBendDamping   = 0.96
	DefaultAirResistance = 0.0125
	DefaultGravity       = -9.8

	// DefaultMaxDisplacement caps how far a point may travel in one step.
	DefaultMaxDisplacement = 1.0

	// GroundEpsilon is the height points are lifted to when they reach the
	// ground plane, so an exact zero does not re-trigger contact each frame.
	GroundEpsilon = 1e-4
)

// ForceModel selects the spring force formulation. The zero value is
// invalid: every body must name its model.
type ForceModel int

const (
	ForceModelUnset ForceModel = iota
	// SpringDamper pulls only when stretched, with stiffness and damping terms.
	SpringDamper
	// Linear applies k*(length-rest) unconditionally and has no damping.
	Linear
)

func (m ForceModel) String() string {
	switch m {
	case SpringDamper:
		return "damped"
	case Linear:
		return "linear"
	default:
		return "unset"
	}
}

func ParseForceModel(s string) (ForceModel, error) {
	switch s {
	case "damped", "spring-damper":
		return SpringDamper, nil
	case "linear", "position":
		return Linear, nil
	}
	return ForceModelUnset, fmt.Errorf("%w: force model %q", dynamo.ErrUnknownName, s)
}

// Params holds every physical constant of one cloth instance.
type Params struct {
	Gravity       dynamo.Vec3 // acceleration, scaled by point mass
	Wind          dynamo.Vec3 // constant force on every point
	AirResistance float64     // quadratic drag coefficient, >= 0
	Mass          float64     // default per-point mass

	Stiffness     float64 // structural and shear ks
	Damping       float64 // structural and shear kd
	BendStiffness float64
	BendDamping   float64

	ForceModel ForceModel
	Colliders  []Collider

	Substeps        int     // passes per Step, 0 means 1
	MaxDisplacement float64 // per-pass displacement cap, 0 disables
	Workers         int     // > 1 runs the passes in parallel
}

func DefaultParams() Params {
	return Params{
		Gravity:         dynamo.V3(0, DefaultGravity, 0),
		AirResistance:   DefaultAirResistance,
		Mass:            DefaultMass,
		Stiffness:       DefaultStiffness,
		Damping:         DefaultDamping,
		BendStiffness:   DefaultBendStiffness,
		BendDamping:     DefaultBendDamping,
		ForceModel:      SpringDamper,
		Substeps:        1,
		MaxDisplacement: DefaultMaxDisplacement,
	}
}

func (p Params) Validate() error {
	if !p.Gravity.IsFinite() || !p.Wind.IsFinite() {
		return fmt.Errorf("%w: gravity and wind must be finite", dynamo.ErrInvalidParams)
	}
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrInvalidParams, p.Mass)
	}
	for name, v := range map[string]float64{
		"air resistance":   p.AirResistance,
		"stiffness":        p.Stiffness,
		"damping":          p.Damping,
		"bend stiffness":   p.BendStiffness,
		"bend damping":     p.BendDamping,
		"max displacement": p.MaxDisplacement,
	} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number, got %g", dynamo.ErrInvalidParams, name, v)
		}
	}
	if p.ForceModel != SpringDamper && p.ForceModel != Linear {
		return fmt.Errorf("%w: force model must be chosen explicitly", dynamo.ErrInvalidParams)
	}
	if p.Substeps < 0 || p.Workers < 0 {
		return fmt.Errorf("%w: substeps and workers must be non-negative", dynamo.ErrInvalidParams)
	}
	return nil
}

func (p Params) substeps() int {
	if p.Substeps < 1 {
		return 1
	}
	return p.Substeps
}
