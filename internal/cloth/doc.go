// Package cloth implements the mass-spring cloth kernel: springs, point
// masses and the body that steps them.
//
// A [Body] owns a fixed-size arena of points and springs built once from a
// [topology.Grid]. Springs reference their endpoints by index only; every
// force evaluation receives the position and velocity snapshots explicitly.
// Integration is delegated to a [dynamo.Integrator] chosen at construction.
//
// Each call to [Body.Step] runs three passes:
//
//  1. snapshot positions and velocities, then accumulate per-point
//     acceleration from gravity, wind, quadratic air drag and incident springs
//  2. advance every free point and resolve the ground plane and colliders
//  3. publish the new positions to the render buffer
//
// Consumers never observe a partially updated step.
package cloth
