package cloth

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/topology"
)

const frameDt = 1.0 / 60.0

func newIntegrator(t testing.TB, name string) dynamo.Integrator {
	t.Helper()
	integ, err := integrators.New(name)
	if err != nil {
		t.Fatal(err)
	}
	return integ
}

func newGrid(t testing.TB, rows, cols int, spacing, height float64) *topology.Grid {
	t.Helper()
	g, err := topology.Generate(topology.Options{
		Rows: rows, Cols: cols, Spacing: spacing, Height: height, Shear: true, Bend: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func newBody(t testing.TB, g *topology.Grid, pin topology.PinPolicy, prm Params, integ string) *Body {
	t.Helper()
	b, err := New(g, g.Pinned(pin), prm, newIntegrator(t, integ))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func stillParams() Params {
	p := DefaultParams()
	p.Gravity = dynamo.Zero3
	p.AirResistance = 0
	return p
}

func TestNewRejectsBadInput(t *testing.T) {
	g := newGrid(t, 3, 3, 1, 5)

	if _, err := New(nil, nil, DefaultParams(), integrators.NewEuler()); !errors.Is(err, dynamo.ErrInvalidTopology) {
		t.Errorf("nil grid: %v", err)
	}
	if _, err := New(g, make([]bool, 4), DefaultParams(), integrators.NewEuler()); !errors.Is(err, dynamo.ErrInvalidTopology) {
		t.Errorf("short pin mask: %v", err)
	}
	if _, err := New(g, nil, DefaultParams(), nil); !errors.Is(err, dynamo.ErrInvalidParams) {
		t.Errorf("nil integrator: %v", err)
	}

	prm := DefaultParams()
	prm.ForceModel = ForceModelUnset
	if _, err := New(g, nil, prm, integrators.NewEuler()); !errors.Is(err, dynamo.ErrInvalidParams) {
		t.Errorf("unset force model: %v", err)
	}
}

func TestNewBuildsArena(t *testing.T) {
	g := newGrid(t, 3, 3, 1, 5)
	b := newBody(t, g, topology.PinTopRow, DefaultParams(), "euler")

	if b.Len() != 9 || len(b.Positions()) != 9 {
		t.Fatalf("len = %d, want 9", b.Len())
	}
	if len(b.Springs()) != len(g.Links) {
		t.Errorf("springs = %d, links = %d", len(b.Springs()), len(g.Links))
	}
	if got := len(b.Vertices()); got != 27 {
		t.Errorf("vertex buffer = %d floats, want 27", got)
	}

	// every spring is listed on both endpoints
	seen := make([]int, len(b.Springs()))
	for _, p := range b.Points() {
		for _, si := range p.Springs {
			s := b.Springs()[si]
			if s.A != p.Index && s.B != p.Index {
				t.Errorf("point %d lists foreign spring %d", p.Index, si)
			}
			seen[si]++
		}
	}
	for si, n := range seen {
		if n != 2 {
			t.Errorf("spring %d referenced %d times", si, n)
		}
	}

	for _, s := range b.Springs() {
		wantKs := DefaultStiffness
		if s.Kind == topology.Bend {
			wantKs = DefaultBendStiffness
		}
		if s.Ks != wantKs {
			t.Errorf("%s spring ks = %g, want %g", s.Kind, s.Ks, wantKs)
		}
	}
}

func TestStepRejectsInvalidDt(t *testing.T) {
	b := newBody(t, newGrid(t, 2, 2, 1, 1), topology.PinNone, DefaultParams(), "euler")
	for _, dt := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		if err := b.Step(dt); !errors.Is(err, dynamo.ErrInvalidStep) {
			t.Errorf("Step(%g) = %v, want ErrInvalidStep", dt, err)
		}
	}
}

func TestPinnedPointsNeverMove(t *testing.T) {
	for _, name := range integrators.Names() {
		for _, policy := range []topology.PinPolicy{topology.PinTopRow, topology.PinEdgeColumns, topology.PinCorners} {
			t.Run(name+"/"+policy.String(), func(t *testing.T) {
				prm := DefaultParams()
				prm.Wind = dynamo.V3(0.5, 0.1, -0.3)
				g := newGrid(t, 5, 6, 0.5, 4)
				b := newBody(t, g, policy, prm, name)
				start := b.Positions()

				for i := 0; i < 300; i++ {
					if err := b.Step(frameDt); err != nil {
						t.Fatal(err)
					}
					pos := b.Positions()
					for _, p := range b.Points() {
						if p.Pinned && pos[p.Index] != start[p.Index] {
							t.Fatalf("step %d: pinned point %d moved from %+v to %+v",
								i, p.Index, start[p.Index], pos[p.Index])
						}
					}
				}
			})
		}
	}
}

func TestZeroDtIsIdempotent(t *testing.T) {
	for _, name := range integrators.Names() {
		t.Run(name, func(t *testing.T) {
			g := newGrid(t, 4, 4, 0.5, 3)
			a := newBody(t, g, topology.PinTopRow, DefaultParams(), name)
			b := newBody(t, g, topology.PinTopRow, DefaultParams(), name)

			for i := 0; i < 20; i++ {
				a.Step(frameDt)
				b.Step(frameDt)
			}

			before := a.Frame()
			verts := a.Vertices()
			for _, dt := range []float64{0, 1e-9, -1e-9} {
				if err := a.Step(dt); err != nil {
					t.Fatalf("Step(%g): %v", dt, err)
				}
			}
			after := a.Frame()

			if after.Step != before.Step || after.Time != before.Time {
				t.Errorf("clock advanced: %d/%g -> %d/%g", before.Step, before.Time, after.Step, after.Time)
			}
			for i := range before.Positions {
				if after.Positions[i] != before.Positions[i] || after.Velocities[i] != before.Velocities[i] {
					t.Fatalf("point %d changed on zero dt", i)
				}
			}
			for i, v := range a.Vertices() {
				if v != verts[i] {
					t.Fatalf("vertex buffer changed at %d", i)
				}
			}

			// history buffers untouched: the next real step matches a twin
			a.Step(frameDt)
			b.Step(frameDt)
			pa, pb := a.Positions(), b.Positions()
			for i := range pa {
				if pa[i] != pb[i] {
					t.Fatalf("point %d diverged from twin after zero-dt step", i)
				}
			}
		})
	}
}

func TestGroundClamp(t *testing.T) {
	for _, name := range integrators.Names() {
		t.Run(name, func(t *testing.T) {
			prm := DefaultParams()
			prm.AirResistance = 0
			g := newGrid(t, 2, 2, 1, 1)
			b := newBody(t, g, topology.PinNone, prm, name)

			landed := false
			for i := 0; i < 240; i++ {
				if err := b.Step(frameDt); err != nil {
					t.Fatal(err)
				}
				f := b.Frame()
				for j, p := range f.Positions {
					if p.Y < 0 {
						t.Fatalf("step %d: point %d below ground, y=%g", i, j, p.Y)
					}
					if OnGround(p) {
						landed = true
						if vy := f.Velocities[j].Y; vy < 0 {
							t.Fatalf("step %d: point %d on ground with vy=%g", i, j, vy)
						}
					}
				}
			}
			if !landed {
				t.Fatal("cloth never reached the ground")
			}
			for _, p := range b.Positions() {
				if !OnGround(p) {
					t.Errorf("resting y = %g, want at most %g", p.Y, GroundEpsilon)
				}
			}
		})
	}
}

func TestRestEquilibrium(t *testing.T) {
	for _, name := range integrators.Names() {
		for _, model := range []ForceModel{SpringDamper, Linear} {
			t.Run(name+"/"+model.String(), func(t *testing.T) {
				g := newGrid(t, 4, 4, 0.5, 3)
				prm := stillParams()
				prm.ForceModel = model
				b := newBody(t, g, topology.PinNone, prm, name)
				for i := 0; i < 4; i++ {
					for j := 0; j < 4; j++ {
						if i == 0 || i == 3 || j == 0 || j == 3 {
							b.Pin(g.Index(i, j), true)
						}
					}
				}

				for i := 0; i < 500; i++ {
					b.Step(frameDt)
				}
				for i, p := range b.Positions() {
					if !p.ApproxEqual(g.Positions[i], 1e-12) {
						t.Errorf("point %d drifted to %+v", i, p)
					}
				}
			})
		}
	}
}

func TestDampedClothReturnsToRest(t *testing.T) {
	for _, name := range integrators.Names() {
		t.Run(name, func(t *testing.T) {
			g := newGrid(t, 4, 4, 0.5, 3)
			prm := stillParams()
			prm.AirResistance = DefaultAirResistance
			b := newBody(t, g, topology.PinNone, prm, name)
			for i := 0; i < 16; i++ {
				if r, c := g.RowCol(i); r == 0 || r == 3 || c == 0 || c == 3 {
					b.Pin(i, true)
				}
			}
			if err := b.SetPosition(5, g.Positions[5].Add(dynamo.V3(0.05, 0.05, 0))); err != nil {
				t.Fatal(err)
			}

			for i := 0; i < 3000; i++ {
				b.Step(frameDt)
			}
			pos := b.Positions()
			for _, s := range b.Springs() {
				if dev := math.Abs(s.Length(pos) - s.Rest); dev > 1e-2 {
					t.Errorf("spring %d-%d off rest by %g", s.A, s.B, dev)
				}
			}
		})
	}
}

// A 3x3 sheet hanging from its top row swings down and settles: the peak
// per-step motion of the bottom row never exceeds that of the first second.
// Successive seconds are not compared with each other: without air drag the
// sheet swings about the pinned row and the per-second peaks rise and fall.
func TestHangingSheetSettles(t *testing.T) {
	for _, name := range integrators.Names() {
		t.Run(name, func(t *testing.T) {
			prm := DefaultParams()
			prm.AirResistance = 0
			g := newGrid(t, 3, 3, 1.0, 10)
			b := newBody(t, g, topology.PinTopRow, prm, name)
			bottom := []int{g.Index(2, 0), g.Index(2, 1), g.Index(2, 2)}

			peaks := make([]float64, 10)
			for run := range peaks {
				for i := 0; i < 60; i++ {
					before := b.Positions()
					if err := b.Step(frameDt); err != nil {
						t.Fatal(err)
					}
					after := b.Positions()
					for _, idx := range bottom {
						peaks[run] = math.Max(peaks[run], after[idx].Dist(before[idx]))
					}
				}

				if run == 0 {
					for _, idx := range bottom {
						if y := b.Positions()[idx].Y; y >= 10 {
							t.Errorf("bottom point %d did not fall: y=%g", idx, y)
						}
					}
				}
				if !b.Frame().IsValid() {
					t.Fatalf("run %d: non-finite state", run)
				}
			}

			for run := 1; run < len(peaks); run++ {
				if peaks[run] > peaks[0] {
					t.Errorf("run %d peak %.4f exceeds first run %.4f", run, peaks[run], peaks[0])
				}
			}
			if last := peaks[len(peaks)-1]; last >= peaks[0] {
				t.Errorf("motion did not decrease: first %.4f last %.4f", peaks[0], last)
			}
			for _, idx := range bottom {
				if sag := 10 - b.Positions()[idx].Y; sag <= 0 || sag > 3 {
					t.Errorf("bottom point %d sag = %g", idx, sag)
				}
			}
		})
	}
}

func TestNoNaN(t *testing.T) {
	steps := 10000
	if testing.Short() {
		steps = 1000
	}

	for _, name := range integrators.Names() {
		for _, model := range []ForceModel{SpringDamper, Linear} {
			for _, seed := range []int64{1, 2} {
				t.Run(name+"/"+model.String(), func(t *testing.T) {
					rng := rand.New(rand.NewSource(seed))
					prm := DefaultParams()
					prm.ForceModel = model
					prm.Wind = dynamo.V3(0.5, 0, 0.2)

					g := newGrid(t, 4, 4, 0.5, 3)
					b := newBody(t, g, topology.PinTopRow, prm, name)

					for i, p := range b.Points() {
						if p.Pinned {
							continue
						}
						jitter := dynamo.V3(rng.Float64()*0.6-0.3, rng.Float64()*0.6-0.3, rng.Float64()*0.6-0.3)
						b.SetPosition(i, g.Positions[i].Add(jitter))
					}
					// coincident endpoints on a structural spring
					b.SetPosition(g.Index(1, 1), b.Positions()[g.Index(1, 0)])

					for i := 0; i < steps; i++ {
						if err := b.Step(frameDt); err != nil {
							t.Fatal(err)
						}
					}
					if f := b.Frame(); !f.IsValid() {
						t.Fatalf("non-finite state after %d steps", steps)
					}
					for _, v := range b.Vertices() {
						if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
							t.Fatal("non-finite value in vertex buffer")
						}
					}
				})
			}
		}
	}
}

// Springs far too stiff for the step size keep the displacement clamp engaged.
// The integrator's velocity must follow the clamped move or it diverges.
func TestStiffSheetStaysValid(t *testing.T) {
	steps := 10000
	if testing.Short() {
		steps = 600
	}

	for _, name := range integrators.Names() {
		t.Run(name, func(t *testing.T) {
			prm := DefaultParams()
			prm.Stiffness = 5000
			prm.BendStiffness = 5000
			g := newGrid(t, 4, 4, 1, 10)
			b := newBody(t, g, topology.PinTopRow, prm, name)

			for i := 0; i < steps; i++ {
				if err := b.Step(frameDt); err != nil {
					t.Fatal(err)
				}
				if f := b.Frame(); !f.IsValid() {
					t.Fatalf("non-finite state at step %d", i)
				}
			}
			if name == "euler" && b.Saturations() == 0 {
				t.Error("expected the displacement clamp to engage")
			}
		})
	}
}

func TestSphereCollider(t *testing.T) {
	prm := DefaultParams()
	sphere := Sphere{Center: dynamo.V3(0, 1.5, 0), Radius: 1}
	prm.Colliders = []Collider{sphere}
	prm.Substeps = 4

	g := newGrid(t, 7, 7, 0.4, 3)
	b := newBody(t, g, topology.PinNone, prm, "verlet")

	for i := 0; i < 240; i++ {
		if err := b.Step(frameDt); err != nil {
			t.Fatal(err)
		}
		for j, p := range b.Positions() {
			if d := p.Dist(sphere.Center); d < sphere.Radius-1e-9 {
				t.Fatalf("step %d: point %d inside sphere (dist %g)", i, j, d)
			}
		}
	}

	// the centre of the sheet rests on top of the sphere
	mid := b.Positions()[g.Index(3, 3)]
	if mid.Y < sphere.Center.Y+sphere.Radius-0.05 {
		t.Errorf("centre point at y=%g, expected draped over the sphere", mid.Y)
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	g := newGrid(t, 21, 31, 1.0/3.0, 10)
	serial := DefaultParams()
	parallel := DefaultParams()
	parallel.Workers = 4

	a := newBody(t, g, topology.PinTopRow, serial, "verlet")
	b := newBody(t, g, topology.PinTopRow, parallel, "verlet")
	for i := 0; i < 50; i++ {
		a.Step(frameDt)
		b.Step(frameDt)
	}

	pa, pb := a.Positions(), b.Positions()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("point %d: serial %+v parallel %+v", i, pa[i], pb[i])
		}
	}
}

func TestVerticesMatchPositions(t *testing.T) {
	b := newBody(t, newGrid(t, 3, 4, 0.5, 2), topology.PinTopRow, DefaultParams(), "euler")
	for i := 0; i < 10; i++ {
		b.Step(frameDt)
	}
	v := b.Vertices()
	for i, p := range b.Positions() {
		got := dynamo.V3(float64(v[3*i]), float64(v[3*i+1]), float64(v[3*i+2]))
		if !got.ApproxEqual(p, 1e-5) {
			t.Errorf("vertex %d = %+v, position %+v", i, got, p)
		}
	}
}

func TestSetMassAndPin(t *testing.T) {
	b := newBody(t, newGrid(t, 3, 3, 1, 5), topology.PinNone, DefaultParams(), "euler")

	if err := b.SetMass(0, 0); !errors.Is(err, dynamo.ErrInvalidParams) {
		t.Errorf("zero mass: %v", err)
	}
	if err := b.SetMass(99, 1); !errors.Is(err, dynamo.ErrInvalidTopology) {
		t.Errorf("bad index: %v", err)
	}
	if err := b.SetMass(4, 2.5); err != nil || b.Points()[4].Mass != 2.5 {
		t.Errorf("SetMass: %v, mass %g", err, b.Points()[4].Mass)
	}

	for i := 0; i < 30; i++ {
		b.Step(frameDt)
	}
	if err := b.Pin(4, true); err != nil {
		t.Fatal(err)
	}
	if v := b.Velocities()[4]; v != dynamo.Zero3 {
		t.Errorf("pinned velocity = %+v", v)
	}
	held := b.Positions()[4]
	for i := 0; i < 30; i++ {
		b.Step(frameDt)
	}
	if b.Positions()[4] != held {
		t.Error("point moved after Pin")
	}

	if err := b.SetPosition(0, dynamo.V3(math.NaN(), 0, 0)); !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("NaN position: %v", err)
	}
}

func TestSetParam(t *testing.T) {
	b := newBody(t, newGrid(t, 3, 3, 1, 5), topology.PinNone, DefaultParams(), "euler")

	if err := b.SetParam("ks", 40); err != nil {
		t.Fatal(err)
	}
	for _, s := range b.Springs() {
		if s.Kind != topology.Bend && s.Ks != 40 {
			t.Errorf("%s spring ks = %g after SetParam", s.Kind, s.Ks)
		}
	}
	if got := b.GetParams()["ks"]; got != 40 {
		t.Errorf("GetParams ks = %g", got)
	}

	if err := b.SetParam("mass", -1); !errors.Is(err, dynamo.ErrInvalidParams) {
		t.Errorf("negative mass: %v", err)
	}
	if err := b.SetParam("spin", 1); !errors.Is(err, dynamo.ErrUnknownName) {
		t.Errorf("unknown param: %v", err)
	}
}

func TestSaturationClamp(t *testing.T) {
	prm := DefaultParams()
	prm.MaxDisplacement = 0.01
	g := newGrid(t, 2, 2, 1, 5)
	b := newBody(t, g, topology.PinNone, prm, "euler")

	for i := 0; i < 60; i++ {
		before := b.Positions()
		b.Step(frameDt)
		for j, p := range b.Positions() {
			if d := p.Dist(before[j]); d > 0.01+1e-12 {
				t.Fatalf("step %d: point %d moved %g", i, j, d)
			}
		}
	}
	if b.Saturations() == 0 {
		t.Error("expected the clamp to engage")
	}
}
