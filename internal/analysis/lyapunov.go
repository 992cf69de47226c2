package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// Builder creates a fresh body for each trajectory of an analysis.
type Builder func() (*cloth.Body, error)

// LyapunovExponent estimates the growth rate of a small perturbation.
// Two identical bodies are built, point idx of the second is displaced by
// delta along x, and both are stepped together. The result is the
// least-squares slope of ln(separation) against time, where separation is
// the RMS distance between matching points. If the bodies never separate
// the rate is -Inf.
func LyapunovExponent(build Builder, idx int, delta, dt float64, steps int) (float64, error) {
	if !(delta > 0) || !(dt > 0) || steps < 2 {
		return 0, fmt.Errorf("%w: delta %g, dt %g, steps %d", dynamo.ErrInvalidParams, delta, dt, steps)
	}
	a, err := build()
	if err != nil {
		return 0, err
	}
	b, err := build()
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= b.Len() {
		return 0, fmt.Errorf("%w: point %d", dynamo.ErrInvalidState, idx)
	}
	if err := b.SetPosition(idx, b.Positions()[idx].Add(dynamo.V3(delta, 0, 0))); err != nil {
		return 0, err
	}

	var sx, sy, sxx, sxy float64
	n := 0
	for k := 0; k < steps; k++ {
		if err := a.Step(dt); err != nil {
			return 0, err
		}
		if err := b.Step(dt); err != nil {
			return 0, err
		}
		d := separation(a.Positions(), b.Positions())
		if !(d > 0) || math.IsInf(d, 0) {
			continue
		}
		t, l := a.Time(), math.Log(d)
		sx += t
		sy += l
		sxx += t * t
		sxy += t * l
		n++
	}
	if n < 2 {
		return math.Inf(-1), nil
	}
	fn := float64(n)
	den := fn*sxx - sx*sx
	if den == 0 {
		return 0, nil
	}
	return (fn*sxy - sx*sy) / den, nil
}

func separation(a, b []dynamo.Vec3) float64 {
	var sum float64
	for i := range a {
		sum += a[i].Sub(b[i]).Len2()
	}
	return math.Sqrt(sum / float64(len(a)))
}
