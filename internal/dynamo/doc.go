// Package dynamo provides the core primitives shared by the cloth kernel.
//
// The package defines the small vocabulary every other package speaks:
//
//   - [Vec3]: 3D vector with NaN-safe normalization
//   - [Frame]: a published, fully updated snapshot of point state
//   - [Integrator]: pluggable integration policy (Euler, Verlet)
//   - [Metric] and [Observer]: per-frame consumers used by the run driver
//
// # Example
//
//	grid, _ := topology.Generate(topology.DefaultOptions())
//	body, _ := cloth.New(grid, grid.Pinned(topology.PinTopRow), cloth.DefaultParams(), integrators.NewVerlet())
//	for i := 0; i < 60; i++ {
//	    _ = body.Step(1.0 / 60.0)
//	}
//
// # Thread Safety
//
// A cloth body is NOT safe for concurrent use: exactly one Step may be in
// flight per instance. Independent bodies may be stepped from different
// goroutines.
package dynamo
