package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/metrics"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	metrics     map[string]func(*cloth.Body) dynamo.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		metrics:     make(map[string]func(*cloth.Body) dynamo.Metric),
	}

	for _, name := range integrators.Names() {
		r.integrators[name] = func() dynamo.Integrator {
			in, _ := integrators.New(name)
			return in
		}
	}

	r.metrics["kinetic_energy"] = func(b *cloth.Body) dynamo.Metric {
		return metrics.NewKineticEnergy(b.Params().Mass)
	}
	r.metrics["energy_drift"] = func(b *cloth.Body) dynamo.Metric {
		return metrics.NewEnergyDrift(b)
	}
	r.metrics["sag"] = func(b *cloth.Body) dynamo.Metric {
		return metrics.NewSag(BottomRow(b))
	}
	r.metrics["stability"] = func(b *cloth.Body) dynamo.Metric {
		return metrics.NewStability(1e3)
	}
	r.metrics["peak_speed"] = func(*cloth.Body) dynamo.Metric {
		return metrics.NewPeakSpeed()
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: integrator %q", dynamo.ErrUnknownName, name)
	}
	return fn(), nil
}

func (r *Registry) GetMetric(name string, b *cloth.Body) (dynamo.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("%w: metric %q", dynamo.ErrUnknownName, name)
	}
	return fn(b), nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListMetrics() []string     { return sortedKeys(r.metrics) }

// DefaultMetrics returns one instance of every registered metric.
func (r *Registry) DefaultMetrics(b *cloth.Body) []dynamo.Metric {
	names := r.ListMetrics()
	out := make([]dynamo.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, r.metrics[name](b))
	}
	return out
}

// BottomRow returns the indices of the last grid row.
func BottomRow(b *cloth.Body) []int {
	g := b.Grid()
	idx := make([]int, g.Cols)
	for j := range idx {
		idx[j] = g.Index(g.Rows-1, j)
	}
	return idx
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
