package automation

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"os"
	"runtime"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/experiment"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
)

// Scenario is a scripted sequence of runs loaded from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Zero-valued fields keep the preset's value;
// Params are body parameters applied after the body is built.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	ForceModel string             `yaml:"force_model"`
	Duration   float64            `yaml:"duration"`
	Dt         float64            `yaml:"dt"`
	Rows       int                `yaml:"rows"`
	Cols       int                `yaml:"cols"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: scenario %s has no steps", dynamo.ErrInvalidParams, path)
	}
	return &scenario, nil
}

// Config resolves the step against its preset.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("%w: preset %q", dynamo.ErrUnknownName, s.Preset)
		}
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.ForceModel != "" {
		cfg.ForceModel = s.ForceModel
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Rows > 0 {
		cfg.Grid.Rows = s.Rows
	}
	if s.Cols > 0 {
		cfg.Grid.Cols = s.Cols
	}
	return cfg, cfg.Validate()
}

// StepResult is the outcome of one scenario step. RunID is set when the
// step was saved.
type StepResult struct {
	Step   ScenarioStep
	RunID  string
	Result *sim.Result
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results gathered so far. Steps with SaveAs are written to
// store when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	log := dynamo.Logger().With("scenario", scenario.Name)

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		for _, k := range slices.Sorted(maps.Keys(step.Params)) {
			if err := exp.Body().SetParam(k, step.Params[k]); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		log.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "preset", step.Preset, "integrator", cfg.Integrator)
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if step.SaveAs != "" && store != nil {
			sr.RunID, err = store.Save(storage.RunMetadata{
				Name:       step.SaveAs,
				Integrator: cfg.Integrator,
				ForceModel: cfg.ForceModel,
				Dt:         cfg.Dt,
				Duration:   cfg.Duration,
				Rows:       cfg.Grid.Rows,
				Cols:       cfg.Grid.Cols,
				Spacing:    cfg.Grid.Spacing,
				Height:     cfg.Grid.Height,
				Layout:     cfg.Grid.Layout,
				Pin:        cfg.Grid.Pin,
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig perturbs body parameters of a base configuration. Each
// named parameter is scaled by a factor drawn uniformly from
// [1-Perturbation, 1+Perturbation].
type MonteCarloConfig struct {
	Base         *config.Config
	Params       []string
	Perturbation float64
	NumTrials    int
	Seed         uint64
	Workers      int
}

// MonteCarloResult records one trial. A trial is stable when it ran to
// completion with every coordinate finite and within bounds.
type MonteCarloResult struct {
	Trial   int
	Params  map[string]float64
	Stable  bool
	Sag     float64
	Clamped int
	Err     error
}

const stableBound = 1e3

// RunMonteCarlo runs the trials concurrently, each on its own body. A trial
// that blows up is reported, not returned as an error.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig, reg *experiment.Registry) ([]MonteCarloResult, error) {
	if cfg.Base == nil || cfg.NumTrials < 1 {
		return nil, fmt.Errorf("%w: need a base config and at least one trial", dynamo.ErrInvalidParams)
	}
	if cfg.Perturbation < 0 || cfg.Perturbation >= 1 {
		return nil, fmt.Errorf("%w: perturbation %g outside [0, 1)", dynamo.ErrInvalidParams, cfg.Perturbation)
	}
	probe, err := reg.BuildBody(cfg.Base)
	if err != nil {
		return nil, err
	}
	nominal := probe.GetParams()
	for _, p := range cfg.Params {
		if _, ok := nominal[p]; !ok {
			return nil, fmt.Errorf("%w: param %q", dynamo.ErrUnknownName, p)
		}
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	results := make([]MonteCarloResult, cfg.NumTrials)
	for i := range results {
		params := make(map[string]float64, len(cfg.Params))
		for _, p := range cfg.Params {
			params[p] = nominal[p] * (1 + (rng.Float64()*2-1)*cfg.Perturbation)
		}
		results[i] = MonteCarloResult{Trial: i, Params: params}
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	dynamo.ParallelFor(cfg.NumTrials, workers, 1, func(start, end int) {
		for i := start; i < end; i++ {
			runTrial(ctx, reg, cfg.Base, &results[i])
		}
	})

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func runTrial(ctx context.Context, reg *experiment.Registry, base *config.Config, r *MonteCarloResult) {
	exp := experiment.New(base.Clone())
	if r.Err = exp.Setup(reg, "sag", "stability"); r.Err != nil {
		return
	}
	for _, k := range slices.Sorted(maps.Keys(r.Params)) {
		if r.Err = exp.Body().SetParam(k, r.Params[k]); r.Err != nil {
			return
		}
	}
	res, err := exp.Run(ctx)
	r.Clamped = int(exp.Body().Saturations())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			r.Err = err
		}
		return
	}
	r.Sag = res.Metrics["sag"]
	final := res.Final()
	r.Stable = res.Metrics["stability"] == 1 && final.IsValid() && !math.IsNaN(r.Sag)
	for _, p := range final.Positions {
		if p.Len() > stableBound {
			r.Stable = false
			break
		}
	}
}

// MonteCarloStats counts stable and unstable trials. Trials that failed to
// set up count as neither.
func MonteCarloStats(results []MonteCarloResult) (stable, unstable int) {
	for _, r := range results {
		switch {
		case r.Err != nil:
		case r.Stable:
			stable++
		default:
			unstable++
		}
	}
	return stable, unstable
}
