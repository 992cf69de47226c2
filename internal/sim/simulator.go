package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/clothsim/internal/dynamo"
)

type Simulator struct {
	body      Body
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(body Body) *Simulator {
	return &Simulator{
		body:      body,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Body() Body { return s.body }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := stepCount(cfg)
	every := max(cfg.RecordEvery, 1)
	result := &Result{
		Frames:  make([]dynamo.Frame, 0, steps/every+2),
		Times:   make([]float64, 0, steps/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	frame := s.body.Frame()
	result.record(frame)
	initialEnergy := s.computeEnergy()
	for _, m := range s.metrics {
		m.Observe(frame)
	}

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := s.body.Step(cfg.Dt); err != nil {
			runErr = dynamo.SimError{Time: frame.Time, Step: i, Message: "step failed", Wrapped: err}
			result.Errors = append(result.Errors, runErr)
			break
		}

		frame = s.body.Frame()
		if cfg.ValidateState && !frame.IsValid() {
			runErr = dynamo.SimError{Time: frame.Time, Step: i, Message: "invalid state (NaN/Inf)", Wrapped: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, runErr)
			break
		}
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(frame)
		}
		for _, obs := range s.observers {
			obs.OnStep(frame)
		}

		if (i+1)%every == 0 || i == steps-1 {
			result.record(frame)
		}
	}

	finalEnergy := s.computeEnergy()
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, runErr
}

func (r *Result) record(f dynamo.Frame) {
	r.Frames = append(r.Frames, f)
	r.Times = append(r.Times, f.Time)
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrInvalidStep, cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrInvalidStep, cfg.Duration)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("%w: record interval must be non-negative", dynamo.ErrInvalidStep)
	}
	return nil
}

func stepCount(cfg Config) int {
	return int(math.Round(cfg.Duration / cfg.Dt))
}

func (s *Simulator) computeEnergy() float64 {
	if ec, ok := s.body.(EnergyComputer); ok {
		return ec.Energy()
	}
	return 0
}

// RunWithCallback steps until the duration elapses, the context is done or
// callback returns false. The callback sees every frame, starting with the
// initial one.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(dynamo.Frame) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	steps := stepCount(cfg)
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame := s.body.Frame()
		if cfg.ValidateState && !frame.IsValid() {
			return dynamo.SimError{Time: frame.Time, Step: i, Message: "invalid state (NaN/Inf)", Wrapped: dynamo.ErrInvalidState}
		}
		if !callback(frame) || i == steps {
			return nil
		}

		if err := s.body.Step(cfg.Dt); err != nil {
			return dynamo.SimError{Time: frame.Time, Step: i, Message: "step failed", Wrapped: err}
		}
	}
}
