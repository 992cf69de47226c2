package optim

import (
	"context"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/experiment"
)

// GridSearch tries every combination of body parameter values on a base
// configuration and keeps the one that minimizes a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Maximize   bool
}

// Trial is the outcome of one combination.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameters but %d ranges", dynamo.ErrInvalidParams, len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: no values for %q", dynamo.ErrInvalidParams, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs one experiment per combination. Failed trials are reported in
// the returned slice and never win. The error is non-nil only when the
// context ends or no trial succeeds.
func (g *GridSearch) Search(ctx context.Context, reg *experiment.Registry, base *config.Config, metricName string) (map[string]float64, float64, []Trial, error) {
	var trials []Trial
	err := g.searchRecursive(ctx, 0, map[string]float64{}, func(params map[string]float64) {
		v, err := g.trial(ctx, reg, base, metricName, params)
		trials = append(trials, Trial{Params: params, Value: v, Err: err})
	})
	if err != nil {
		return nil, 0, trials, err
	}

	best := math.Inf(1)
	if g.Maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64
	for _, t := range trials {
		if t.Err != nil || math.IsNaN(t.Value) {
			continue
		}
		if (!g.Maximize && t.Value < best) || (g.Maximize && t.Value > best) || bestParams == nil {
			best, bestParams = t.Value, t.Params
		}
	}
	if bestParams == nil {
		return nil, 0, trials, fmt.Errorf("all %d trials failed", len(trials))
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) trial(ctx context.Context, reg *experiment.Registry, base *config.Config, metricName string, params map[string]float64) (float64, error) {
	exp := experiment.New(base.Clone())
	if err := exp.Setup(reg, metricName); err != nil {
		return 0, err
	}
	for name, v := range params {
		if err := exp.Body().SetParam(name, v); err != nil {
			return 0, err
		}
	}
	res, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	return res.Metrics[metricName], nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, run func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		run(maps.Clone(current))
		return nil
	}
	name := g.paramNames[depth]
	for _, v := range g.ranges[depth] {
		current[name] = v
		if err := g.searchRecursive(ctx, depth+1, current, run); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*(hi-lo)/float64(n-1)
	}
	return out
}
