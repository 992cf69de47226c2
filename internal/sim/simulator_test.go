package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/topology"
)

// fallingBody is a single point under constant acceleration.
type fallingBody struct {
	step   int
	t      float64
	y, vy  float64
	poison int
}

func (b *fallingBody) Step(dt float64) error {
	if dt < 0 {
		return dynamo.ErrInvalidStep
	}
	b.vy -= 10 * dt
	b.y += b.vy * dt
	b.t += dt
	b.step++
	return nil
}

func (b *fallingBody) Frame() dynamo.Frame {
	y := b.y
	if b.poison > 0 && b.step >= b.poison {
		y = math.NaN()
	}
	return dynamo.Frame{
		Step:       b.step,
		Time:       b.t,
		Positions:  []dynamo.Vec3{dynamo.V3(0, y, 0)},
		Velocities: []dynamo.Vec3{dynamo.V3(0, b.vy, 0)},
	}
}

func TestSimulatorRun(t *testing.T) {
	sim := New(&fallingBody{y: 100})

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Frames) != 11 {
		t.Errorf("expected 11 frames, got %d", len(result.Frames))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if got := result.Final().Time; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("final time = %f, want 1.0", got)
	}
}

func TestSimulatorRecordEvery(t *testing.T) {
	sim := New(&fallingBody{y: 100})

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0, RecordEvery: 4})
	if err != nil {
		t.Fatal(err)
	}

	// initial, steps 4 and 8, and the final step 10
	want := []int{0, 4, 8, 10}
	if len(result.Frames) != len(want) {
		t.Fatalf("recorded %d frames, want %d", len(result.Frames), len(want))
	}
	for i, f := range result.Frames {
		if f.Step != want[i] {
			t.Errorf("frame %d is step %d, want %d", i, f.Step, want[i])
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&fallingBody{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"nan dt", Config{Dt: math.NaN(), Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"negative record interval", Config{Dt: 0.1, Duration: 1, RecordEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidStep) {
				t.Errorf("expected ErrInvalidStep, got %v", err)
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(f dynamo.Frame) {
	m.count++
	m.sum += f.Positions[0].Y
}
func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

type countingObserver struct{ steps []int }

func (o *countingObserver) OnStep(f dynamo.Frame) { o.steps = append(o.steps, f.Step) }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	sim := New(&fallingBody{y: 100})

	metric := &testMetric{count: 99}
	obs := &countingObserver{}
	sim.AddMetric(metric)
	sim.AddObserver(obs)

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatal(err)
	}

	if metric.count != 11 {
		t.Errorf("metric observed %d frames, want 11 (reset before run)", metric.count)
	}
	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric value missing from result")
	}
	if len(obs.steps) != 10 || obs.steps[0] != 1 || obs.steps[9] != 10 {
		t.Errorf("observer saw steps %v", obs.steps)
	}
}

// Metrics see the starting frame, so the drop of the very first step counts.
func TestSimulatorMetricsSeeInitialFrame(t *testing.T) {
	sim := New(&fallingBody{y: 100})
	sag := metrics.NewSag(nil)
	sim.AddMetric(sag)

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 1 {
		t.Fatalf("steps = %d, want 1", result.StepsTaken)
	}
	if got := result.Metrics["sag"]; math.Abs(got-0.1) > 1e-9 {
		t.Errorf("sag after one step = %g, want 0.1", got)
	}
}

func TestSimulatorValidateState(t *testing.T) {
	sim := New(&fallingBody{y: 100, poison: 3})

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0, ValidateState: true})
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	var se dynamo.SimError
	if !errors.As(err, &se) || se.Step != 2 {
		t.Errorf("expected SimError at step 2, got %#v", err)
	}
	if result.StepsTaken != 2 || len(result.Errors) != 1 {
		t.Errorf("steps %d errors %d", result.StepsTaken, len(result.Errors))
	}
}

func TestSimulatorCancel(t *testing.T) {
	sim := New(&fallingBody{y: 100})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected a partial result with no steps, got %+v", result)
	}
}

func TestRunWithCallback(t *testing.T) {
	sim := New(&fallingBody{y: 100})

	var seen []int
	err := sim.RunWithCallback(context.Background(), Config{Dt: 0.1, Duration: 1.0}, func(f dynamo.Frame) bool {
		seen = append(seen, f.Step)
		return f.Step < 5
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 6 || seen[5] != 5 {
		t.Errorf("callback saw %v", seen)
	}

	seen = seen[:0]
	sim = New(&fallingBody{y: 100})
	if err := sim.RunWithCallback(context.Background(), Config{Dt: 0.25, Duration: 1.0}, func(f dynamo.Frame) bool {
		seen = append(seen, f.Step)
		return true
	}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 5 {
		t.Errorf("callback saw %v, want steps 0..4", seen)
	}
}

func buildClothSim(integ string) (*Simulator, error) {
	g, err := topology.Generate(topology.Options{Rows: 5, Cols: 5, Spacing: 0.5, Height: 4, Shear: true, Bend: true})
	if err != nil {
		return nil, err
	}
	in, err := integrators.New(integ)
	if err != nil {
		return nil, err
	}
	b, err := cloth.New(g, g.Pinned(topology.PinTopRow), cloth.DefaultParams(), in)
	if err != nil {
		return nil, err
	}
	return New(b), nil
}

func newClothSim(t testing.TB, integ string) *Simulator {
	t.Helper()
	sim, err := buildClothSim(integ)
	if err != nil {
		t.Fatal(err)
	}
	return sim
}

func TestSimulatorDrivesCloth(t *testing.T) {
	sim := newClothSim(t, "verlet")

	result, err := sim.Run(context.Background(), Config{Dt: 1.0 / 60, Duration: 2, RecordEvery: 10, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 120 {
		t.Errorf("steps = %d, want 120", result.StepsTaken)
	}
	if n := len(result.Final().Positions); n != 25 {
		t.Errorf("final frame has %d points", n)
	}
	if result.EnergyDrift == 0 {
		t.Error("a swinging cloth should report a non-zero energy change")
	}
}

func TestEnsemble(t *testing.T) {
	names := integrators.Names()
	ens := NewEnsemble(func(run int) (*Simulator, error) {
		return buildClothSim(names[run%len(names)])
	}, 4)

	results, err := ens.Run(context.Background(), Config{Dt: 1.0 / 60, Duration: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 30 {
			t.Errorf("run %d took %d steps", i, r.StepsTaken)
		}
	}

	// runs with the same integrator are independent but identical
	a, b := results[0].Final().Positions, results[2].Final().Positions
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between identical runs", i)
		}
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	ens := NewEnsemble(func(run int) (*Simulator, error) {
		if run == 1 {
			return nil, boom
		}
		return New(&fallingBody{}), nil
	}, 3)

	if _, err := ens.Run(context.Background(), Config{Dt: 0.1, Duration: 1}); !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}
