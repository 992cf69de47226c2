// Package analysis post-processes cloth runs.
//
//   - [PointTrace]: one coordinate of one point across recorded frames
//   - [PowerSpectrum], [DominantFrequency]: flapping frequency via FFT
//   - [NewPhasePortrait], [PoincareSection]: position/velocity views of a trace
//   - [LyapunovExponent]: growth rate of a small initial perturbation
//   - [BifurcationDiagram]: settled behaviour across a parameter sweep
//
// A positive exponent means nearby cloths drift apart; damped cloths give a
// negative one:
//
//	rate, err := analysis.LyapunovExponent(build, idx, 1e-6, dt, 600)
package analysis
