package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/topology"
)

type Experiment struct {
	cfg       *config.Config
	body      *cloth.Body
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// BuildBody turns a run configuration into a ready cloth body.
func (r *Registry) BuildBody(cfg *config.Config) (*cloth.Body, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	grid, err := topology.Generate(opts)
	if err != nil {
		return nil, err
	}
	policy, err := topology.ParsePinPolicy(cfg.Grid.Pin)
	if err != nil {
		return nil, err
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	integ, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	return cloth.New(grid, grid.Pinned(policy), params, integ)
}

// Setup builds the body and a simulator carrying the named metrics. With
// no names every registered metric is attached.
func (e *Experiment) Setup(reg *Registry, metricNames ...string) error {
	body, err := reg.BuildBody(e.cfg)
	if err != nil {
		return err
	}

	s := sim.New(body)
	if len(metricNames) == 0 {
		for _, m := range reg.DefaultMetrics(body) {
			s.AddMetric(m)
		}
	}
	for _, name := range metricNames {
		m, err := reg.GetMetric(name, body)
		if err != nil {
			return err
		}
		s.AddMetric(m)
	}

	e.body = body
	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	return e.simulator.Run(ctx, e.SimConfig())
}

// SimConfig is the driver configuration derived from the run config.
func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		RecordEvery:   e.cfg.RecordEvery,
		ValidateState: true,
	}
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Body() *cloth.Body { return e.body }

func (e *Experiment) Config() *config.Config { return e.cfg }
