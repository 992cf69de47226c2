package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/topology"
)

const (
	DefaultDt       = 1.0 / 60.0
	DefaultDuration = 10.0
)

type Config struct {
	Integrator  string         `yaml:"integrator" toml:"integrator"`
	ForceModel  string         `yaml:"force_model" toml:"force_model"`
	Dt          float64        `yaml:"dt" toml:"dt"`
	Duration    float64        `yaml:"duration" toml:"duration"`
	RecordEvery int            `yaml:"record_every" toml:"record_every"`
	Grid        GridConfig     `yaml:"grid" toml:"grid"`
	Physics     PhysicsConfig  `yaml:"physics" toml:"physics"`
	Spheres     []SphereConfig `yaml:"spheres,omitempty" toml:"spheres,omitempty"`
}

type GridConfig struct {
	Rows    int     `yaml:"rows" toml:"rows"`
	Cols    int     `yaml:"cols" toml:"cols"`
	Spacing float64 `yaml:"spacing" toml:"spacing"`
	Height  float64 `yaml:"height" toml:"height"`
	Layout  string  `yaml:"layout" toml:"layout"`
	Pin     string  `yaml:"pin" toml:"pin"`
	Shear   bool    `yaml:"shear" toml:"shear"`
	Bend    bool    `yaml:"bend" toml:"bend"`
}

type PhysicsConfig struct {
	Gravity         [3]float64 `yaml:"gravity" toml:"gravity"`
	Wind            [3]float64 `yaml:"wind" toml:"wind"`
	AirResistance   float64    `yaml:"air_resistance" toml:"air_resistance"`
	Mass            float64    `yaml:"mass" toml:"mass"`
	Stiffness       float64    `yaml:"ks" toml:"ks"`
	Damping         float64    `yaml:"kd" toml:"kd"`
	BendStiffness   float64    `yaml:"ks_bend" toml:"ks_bend"`
	BendDamping     float64    `yaml:"kd_bend" toml:"kd_bend"`
	Substeps        int        `yaml:"substeps" toml:"substeps"`
	MaxDisplacement float64    `yaml:"max_displacement" toml:"max_displacement"`
	Workers         int        `yaml:"workers" toml:"workers"`
}

type SphereConfig struct {
	Center [3]float64 `yaml:"center" toml:"center"`
	Radius float64    `yaml:"radius" toml:"radius"`
}

func DefaultConfig() *Config {
	p := cloth.DefaultParams()
	return &Config{
		Integrator: "verlet",
		ForceModel: p.ForceModel.String(),
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Grid: GridConfig{
			Rows:    topology.DefaultRows,
			Cols:    topology.DefaultCols,
			Spacing: topology.DefaultSpacing,
			Height:  topology.DefaultHeight,
			Layout:  topology.LayoutRestart.String(),
			Pin:     topology.PinTopRow.String(),
			Shear:   true,
			Bend:    true,
		},
		Physics: PhysicsConfig{
			Gravity:         vec(p.Gravity),
			Wind:            vec(p.Wind),
			AirResistance:   p.AirResistance,
			Mass:            p.Mass,
			Stiffness:       p.Stiffness,
			Damping:         p.Damping,
			BendStiffness:   p.BendStiffness,
			BendDamping:     p.BendDamping,
			Substeps:        p.Substeps,
			MaxDisplacement: p.MaxDisplacement,
		},
	}
}

func vec(v dynamo.Vec3) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or, for *.toml paths, TOML config on top of the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Spheres = append([]SphereConfig(nil), c.Spheres...)
	return &cp
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidStep, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrInvalidStep, c.Duration)
	}
	if c.Grid.Rows < 2 || c.Grid.Cols < 2 {
		return fmt.Errorf("%w: grid %dx%d", dynamo.ErrInvalidTopology, c.Grid.Rows, c.Grid.Cols)
	}
	for i, s := range c.Spheres {
		if !(s.Radius > 0) {
			return fmt.Errorf("%w: sphere %d radius %g", dynamo.ErrInvalidParams, i, s.Radius)
		}
	}
	return nil
}

// Options converts the grid section into topology options.
func (c *Config) Options() (topology.Options, error) {
	layout, err := topology.ParseLayout(c.Grid.Layout)
	if err != nil {
		return topology.Options{}, err
	}
	return topology.Options{
		Rows:    c.Grid.Rows,
		Cols:    c.Grid.Cols,
		Spacing: c.Grid.Spacing,
		Height:  c.Grid.Height,
		Layout:  layout,
		Shear:   c.Grid.Shear,
		Bend:    c.Grid.Bend,
	}, nil
}

// Params converts the physics section into body parameters.
func (c *Config) Params() (cloth.Params, error) {
	model, err := cloth.ParseForceModel(c.ForceModel)
	if err != nil {
		return cloth.Params{}, err
	}
	ph := c.Physics
	p := cloth.Params{
		Gravity:         dynamo.V3(ph.Gravity[0], ph.Gravity[1], ph.Gravity[2]),
		Wind:            dynamo.V3(ph.Wind[0], ph.Wind[1], ph.Wind[2]),
		AirResistance:   ph.AirResistance,
		Mass:            ph.Mass,
		Stiffness:       ph.Stiffness,
		Damping:         ph.Damping,
		BendStiffness:   ph.BendStiffness,
		BendDamping:     ph.BendDamping,
		ForceModel:      model,
		Substeps:        ph.Substeps,
		MaxDisplacement: ph.MaxDisplacement,
		Workers:         ph.Workers,
	}
	for _, s := range c.Spheres {
		p.Colliders = append(p.Colliders, cloth.Sphere{
			Center: dynamo.V3(s.Center[0], s.Center[1], s.Center[2]),
			Radius: s.Radius,
		})
	}
	return p, p.Validate()
}
