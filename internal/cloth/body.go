package cloth

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/topology"
)

// minParallelChunk keeps tiny grids on the calling goroutine.
const minParallelChunk = 64

// Body is one cloth instance. Step must not be called concurrently; the
// render-facing accessors (Vertices) may be read from other goroutines.
type Body struct {
	grid    *topology.Grid
	params  Params
	integ   dynamo.Integrator
	points  []Point
	springs []Spring

	pos  []dynamo.Vec3
	prev []dynamo.Vec3
	vel  []dynamo.Vec3
	acc  []dynamo.Vec3

	mu    sync.RWMutex
	front []float32
	back  []float32

	step        int
	time        float64
	saturations atomic.Int64
	warned      atomic.Bool
}

// New builds a body over grid. pinned may be nil (nothing pinned) or must
// have one entry per grid point. The integrator is reset to the rest pose.
func New(grid *topology.Grid, pinned []bool, params Params, integ dynamo.Integrator) (*Body, error) {
	if grid == nil || grid.Rows < 2 || grid.Cols < 2 || len(grid.Positions) != grid.Len() {
		return nil, fmt.Errorf("%w: grid is missing or inconsistent", dynamo.ErrInvalidTopology)
	}
	if pinned != nil && len(pinned) != grid.Len() {
		return nil, fmt.Errorf("%w: %d pin flags for %d points", dynamo.ErrInvalidTopology, len(pinned), grid.Len())
	}
	if integ == nil {
		return nil, fmt.Errorf("%w: integrator is nil", dynamo.ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n := grid.Len()
	b := &Body{
		grid:   grid,
		params: params,
		integ:  integ,
		points: make([]Point, n),
		pos:    append([]dynamo.Vec3(nil), grid.Positions...),
		prev:   make([]dynamo.Vec3, n),
		vel:    make([]dynamo.Vec3, n),
		acc:    make([]dynamo.Vec3, n),
		front:  make([]float32, 3*n),
		back:   make([]float32, 3*n),
	}
	for i := range b.points {
		b.points[i] = Point{Index: i, Mass: params.Mass, Pinned: pinned != nil && pinned[i]}
	}

	b.springs = make([]Spring, 0, len(grid.Links))
	for _, l := range grid.Links {
		ks, kd := params.coefficients(l.Kind)
		s, err := NewSpring(l.A, l.B, l.Kind, b.pos, ks, kd)
		if err != nil {
			return nil, err
		}
		si := len(b.springs)
		b.springs = append(b.springs, s)
		b.points[l.A].Springs = append(b.points[l.A].Springs, si)
		b.points[l.B].Springs = append(b.points[l.B].Springs, si)
	}

	integ.Reset(b.pos)
	b.publish()

	counts := topology.CountLinks(grid.Links)
	dynamo.Logger().Debug("cloth body created",
		"rows", grid.Rows,
		"cols", grid.Cols,
		"structural", counts[topology.Structural],
		"shear", counts[topology.Shear],
		"bend", counts[topology.Bend],
		"integrator", integ.Name(),
		"model", params.ForceModel.String(),
	)
	return b, nil
}

func (p Params) coefficients(k topology.Kind) (ks, kd float64) {
	if k == topology.Bend {
		return p.BendStiffness, p.BendDamping
	}
	return p.Stiffness, p.Damping
}

// Step advances the body by dt seconds. A dt within dynamo.Epsilon of zero
// leaves every buffer untouched.
func (b *Body) Step(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return fmt.Errorf("%w: dt=%g", dynamo.ErrInvalidStep, dt)
	}
	if dynamo.IsZero(dt) {
		return nil
	}

	n := b.params.substeps()
	h := dt / float64(n)
	for s := 0; s < n; s++ {
		b.substep(h)
	}

	b.step++
	b.time += dt
	b.publish()
	return nil
}

func (b *Body) substep(h float64) {
	copy(b.prev, b.pos)
	workers := b.params.Workers
	n := len(b.points)

	dynamo.ParallelFor(n, workers, minParallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			if b.points[i].Pinned {
				b.vel[i] = dynamo.Zero3
				continue
			}
			b.vel[i] = b.integ.Velocity(i, b.prev[i])
		}
	})

	dynamo.ParallelFor(n, workers, minParallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			b.acc[i] = b.points[i].Acceleration(b.prev, b.vel, b.springs, &b.params)
		}
	})

	dynamo.ParallelFor(n, workers, minParallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			if !b.points[i].Pinned {
				b.pos[i] = b.advance(i, h)
			}
		}
	})

	b.integ.Commit(h)
}

func (b *Body) advance(i int, h float64) dynamo.Vec3 {
	p := b.prev[i]
	if OnGround(p) {
		b.integ.Constrain(i, p, dynamo.Up)
	}

	next := b.integ.Advance(i, p, b.acc[i], h)

	if limit := b.params.MaxDisplacement; limit > 0 {
		d := next.Sub(p)
		if d.Len() > limit {
			next = p.Add(d.ClampLen(limit))
			b.integ.Limit(i, p, next, h)
			b.saturated(i)
		}
	}

	if q, n, hit := (Ground{}).Resolve(next); hit {
		next = q
		b.integ.Constrain(i, next, n)
	}
	for _, c := range b.params.Colliders {
		if q, n, hit := c.Resolve(next); hit {
			next = q
			b.integ.Constrain(i, next, n)
		}
	}

	if !next.IsFinite() {
		b.integ.Hold(i, p)
		return p
	}
	return next
}

func (b *Body) saturated(i int) {
	b.saturations.Add(1)
	if b.warned.CompareAndSwap(false, true) {
		dynamo.Logger().Warn("displacement clamp engaged",
			"point", i,
			"max", b.params.MaxDisplacement,
			"step", b.step,
		)
	}
}

// publish copies positions into the back buffer and swaps it to the front.
func (b *Body) publish() {
	for i, p := range b.pos {
		b.back[3*i] = float32(p.X)
		b.back[3*i+1] = float32(p.Y)
		b.back[3*i+2] = float32(p.Z)
	}
	b.mu.Lock()
	b.front, b.back = b.back, b.front
	b.mu.Unlock()
}

// Vertices returns a copy of the last published positions as packed xyz
// float32 triples in row-major grid order.
func (b *Body) Vertices() []float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]float32(nil), b.front...)
}

// Positions returns a copy of the current positions.
func (b *Body) Positions() []dynamo.Vec3 {
	return append([]dynamo.Vec3(nil), b.pos...)
}

// Velocities reports the integrator's current velocity for every point.
// Pinned points report zero.
func (b *Body) Velocities() []dynamo.Vec3 {
	out := make([]dynamo.Vec3, len(b.pos))
	for i := range out {
		if !b.points[i].Pinned {
			out[i] = b.integ.Velocity(i, b.pos[i])
		}
	}
	return out
}

func (b *Body) Frame() dynamo.Frame {
	return dynamo.Frame{
		Step:       b.step,
		Time:       b.time,
		Positions:  b.Positions(),
		Velocities: b.Velocities(),
	}
}

func (b *Body) Points() []Point      { return b.points }
func (b *Body) Springs() []Spring    { return b.springs }
func (b *Body) Grid() *topology.Grid { return b.grid }
func (b *Body) Params() Params       { return b.params }
func (b *Body) Integrator() string   { return b.integ.Name() }
func (b *Body) Time() float64        { return b.time }
func (b *Body) Saturations() int64   { return b.saturations.Load() }
func (b *Body) Len() int             { return len(b.points) }

func (b *Body) checkIndex(i int) error {
	if i < 0 || i >= len(b.points) {
		return fmt.Errorf("%w: point %d out of range [0,%d)", dynamo.ErrInvalidTopology, i, len(b.points))
	}
	return nil
}

func (b *Body) SetMass(i int, m float64) error {
	if err := b.checkIndex(i); err != nil {
		return err
	}
	if !(m > 0) || math.IsInf(m, 0) {
		return fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrInvalidParams, m)
	}
	b.points[i].Mass = m
	return nil
}

// Pin toggles the pinned flag of point i and zeroes its velocity.
func (b *Body) Pin(i int, pinned bool) error {
	if err := b.checkIndex(i); err != nil {
		return err
	}
	b.points[i].Pinned = pinned
	b.integ.Hold(i, b.pos[i])
	return nil
}

// SetPosition moves point i to p at rest and republishes the buffer.
func (b *Body) SetPosition(i int, p dynamo.Vec3) error {
	if err := b.checkIndex(i); err != nil {
		return err
	}
	if !p.IsFinite() {
		return fmt.Errorf("%w: position %+v", dynamo.ErrInvalidState, p)
	}
	b.pos[i] = p
	b.integ.Hold(i, p)
	b.publish()
	return nil
}

var paramNames = []string{
	"ks", "kd", "ks_bend", "kd_bend", "air", "mass",
	"gravity_y", "wind_x", "wind_y", "wind_z", "max_displacement",
}

// GetParams exposes the tunable physical constants by name.
func (b *Body) GetParams() map[string]float64 {
	p := b.params
	return map[string]float64{
		"ks":               p.Stiffness,
		"kd":               p.Damping,
		"ks_bend":          p.BendStiffness,
		"kd_bend":          p.BendDamping,
		"air":              p.AirResistance,
		"mass":             p.Mass,
		"gravity_y":        p.Gravity.Y,
		"wind_x":           p.Wind.X,
		"wind_y":           p.Wind.Y,
		"wind_z":           p.Wind.Z,
		"max_displacement": p.MaxDisplacement,
	}
}

// SetParam updates one constant between steps. Spring coefficients are
// pushed to every spring of the matching kind; mass applies to all points.
func (b *Body) SetParam(name string, value float64) error {
	p := b.params
	switch name {
	case "ks":
		p.Stiffness = value
	case "kd":
		p.Damping = value
	case "ks_bend":
		p.BendStiffness = value
	case "kd_bend":
		p.BendDamping = value
	case "air":
		p.AirResistance = value
	case "mass":
		p.Mass = value
	case "gravity_y":
		p.Gravity.Y = value
	case "wind_x":
		p.Wind.X = value
	case "wind_y":
		p.Wind.Y = value
	case "wind_z":
		p.Wind.Z = value
	case "max_displacement":
		p.MaxDisplacement = value
	default:
		return fmt.Errorf("%w: parameter %q (have %v)", dynamo.ErrUnknownName, name, paramNames)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	b.params = p
	for i := range b.springs {
		b.springs[i].Ks, b.springs[i].Kd = p.coefficients(b.springs[i].Kind)
	}
	if name == "mass" {
		for i := range b.points {
			b.points[i].Mass = value
		}
	}
	return nil
}
